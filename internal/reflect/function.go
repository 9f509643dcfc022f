package reflect

// Invoker is the native callable a loader plugs behind a Function. The
// original reflect_function.h wires this up as a three-pointer vtable
// (function_impl_interface_create/invoke/destroy) dispatching through an
// opaque function_impl; Go already has first-class functions with
// closures, so a single Invoker closing over whatever back-end state it
// needs replaces the vtable+impl pair entirely.
type Invoker func(args []*Value) (*Value, error)

// Function is a first-class, callable reference produced by a loader at
// discovery time, carrying its declared Signature.
type Function struct {
	name    string
	sig     *Signature
	invoke  Invoker
	destroy func()
}

// NewFunction creates a Function backed by invoke.
func NewFunction(name string, sig *Signature, invoke Invoker) *Function {
	return &Function{name: name, sig: sig, invoke: invoke}
}

// WithDestroy attaches a cleanup callback run once by Destroy, for loaders
// that pin back-end resources (an interpreter closure, a dlopen'd symbol)
// for the function's lifetime.
func (f *Function) WithDestroy(destroy func()) *Function {
	f.destroy = destroy
	return f
}

// Name returns the function's declared name.
func (f *Function) Name() string { return f.name }

// Signature returns the function's parameter/return description.
func (f *Function) Signature() *Signature { return f.sig }

// Call invokes the function. Callers are responsible for having already
// cast/promoted args to match the signature; Call itself performs no
// coercion (that belongs to the call pipeline, see internal/call).
func (f *Function) Call(args []*Value) (*Value, error) {
	return f.invoke(args)
}

// Destroy releases any back-end resource the function holds.
func (f *Function) Destroy() {
	if f.destroy != nil {
		f.destroy()
	}
}
