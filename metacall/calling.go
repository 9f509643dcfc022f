package metacall

import "github.com/gometacall/gometacall/internal/reflect"

// Function resolves name against the call pipeline's host context and
// returns the callable *reflect.Function behind it, without invoking it
// — the façade's `metacall_function(name)`.
func (r *Runtime) Function(name string) (*reflect.Function, error) {
	raw, ok := r.loaders.Lookup(name)
	if !ok {
		return nil, nil
	}
	v, ok := raw.(*reflect.Value)
	if !ok || !v.IsFunction() {
		return nil, nil
	}
	return v.FunctionValue(), nil
}

// Call resolves name and invokes it with args, the boxed-value variant
// (§4.6 metacallv).
func (r *Runtime) Call(name string, args ...*reflect.Value) (*reflect.Value, error) {
	return r.pipeline.Metacallv(name, args)
}

// CallTyped resolves name and invokes it after casting each argument to
// its declared typeIDs (§4.6 metacallt).
func (r *Runtime) CallTyped(name string, typeIDs []reflect.TypeID, args []*reflect.Value) (*reflect.Value, error) {
	return r.pipeline.Metacallt(name, typeIDs, args)
}

// CallFunction invokes an already-resolved function directly, skipping
// by-name lookup (§4.6 metacallfv).
func (r *Runtime) CallFunction(fn *reflect.Function, args []*reflect.Value) (*reflect.Value, error) {
	return r.pipeline.Metacallfv(fn, args)
}

// CallFunctionSerialized invokes fn with arguments bound by name from a
// serialized map document (§4.6 metacallfms).
func (r *Runtime) CallFunctionSerialized(fn *reflect.Function, serialized string) (*reflect.Value, error) {
	return r.pipeline.Metacallfms(fn, serialized)
}

// Await resolves name and invokes it asynchronously, the result always
// settled through onResolve/onReject before returning (§4.6
// metacall_await).
func (r *Runtime) Await(name string, args []*reflect.Value, onResolve reflect.ResolveCallback, onReject reflect.RejectCallback, userData interface{}) (*reflect.Value, error) {
	return r.pipeline.MetacallAwait(name, args, onResolve, onReject, userData)
}

// AwaitFunction is Await for an already-resolved function.
func (r *Runtime) AwaitFunction(fn *reflect.Function, args []*reflect.Value, onResolve reflect.ResolveCallback, onReject reflect.RejectCallback, userData interface{}) (*reflect.Value, error) {
	return r.pipeline.MetacallfAwait(fn, args, onResolve, onReject, userData)
}
