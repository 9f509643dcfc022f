package call

import (
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/gometacall/gometacall/internal/apperr"
	"github.com/gometacall/gometacall/internal/loader"
	"github.com/gometacall/gometacall/internal/logger"
	"github.com/gometacall/gometacall/internal/reflect"
	"github.com/gometacall/gometacall/internal/serial"
)

// Pipeline is the call dispatcher: by-name resolution against a loader
// manager's host context, arity validation, argument coercion, and
// invocation — the concrete realization of §4.6's six metacall*
// variants.
//
// Grounded on the teacher's EmitEvent async dispatch pattern
// (internal/plugins/runtime.go) for the await path's continuation
// handling, and on golang.org/x/sync/singleflight to collapse duplicate
// concurrent by-name lookups against the host context into one resolve.
type Pipeline struct {
	host  *loader.ContextStack
	group singleflight.Group
	codec serial.Codec
}

// NewPipeline creates a call pipeline dispatching function lookups
// against host.
func NewPipeline(host *loader.ContextStack) *Pipeline {
	return &Pipeline{host: host, codec: serial.NewJSONCodec()}
}

// resolve looks up name in the host context, deduplicating concurrent
// identical lookups through singleflight, and asserts the result is
// actually callable.
func (p *Pipeline) resolve(name string) (*reflect.Function, error) {
	v, err, _ := p.group.Do(name, func() (interface{}, error) {
		raw, ok := p.host.Lookup(name)
		if !ok {
			return nil, apperr.NotFound("function", name)
		}
		val, ok := raw.(*reflect.Value)
		if !ok || !val.IsFunction() {
			return nil, apperr.New(apperr.BadArgument, "%q is not callable", name)
		}
		return val.FunctionValue(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*reflect.Function), nil
}

// Metacall is the C-variadic-equivalent convenience entry point:
// interpreted by the callee's declared signature, no explicit coercion
// requested by the caller.
func (p *Pipeline) Metacall(name string, args ...*reflect.Value) (*reflect.Value, error) {
	return p.Metacallv(name, args)
}

// Metacallv is the canonical entry point: pre-boxed values, no coercion.
func (p *Pipeline) Metacallv(name string, args []*reflect.Value) (*reflect.Value, error) {
	fn, err := p.resolve(name)
	if err != nil {
		return nil, err
	}
	return invoke(fn, args)
}

// Metacallt is the type-tagged variant: each argument is cast to its
// declared type id before invocation.
func (p *Pipeline) Metacallt(name string, typeIDs []reflect.TypeID, args []*reflect.Value) (*reflect.Value, error) {
	if len(typeIDs) != len(args) {
		return nil, apperr.Arity(name, len(typeIDs), len(args))
	}
	fn, err := p.resolve(name)
	if err != nil {
		return nil, err
	}
	cast := make([]*reflect.Value, len(args))
	for i, a := range args {
		cv, err := Cast(a, typeIDs[i])
		if err != nil {
			return nil, err
		}
		cast[i] = cv
	}
	return invoke(fn, cast)
}

// Metacallfv calls fn directly, skipping name lookup.
func (p *Pipeline) Metacallfv(fn *reflect.Function, args []*reflect.Value) (*reflect.Value, error) {
	return invoke(fn, args)
}

// Metacallfms calls fn with serialized, a map-shaped document deserialized
// and bound to fn's declared parameters by name. Every parameter the
// document omits is reported as MissingArgument; declared default
// parameter values are not supported (§4.6's metacallfms row).
func (p *Pipeline) Metacallfms(fn *reflect.Function, serialized string) (*reflect.Value, error) {
	doc, err := p.codec.Deserialize([]byte(serialized))
	if err != nil {
		return nil, apperr.Wrap(apperr.BadArgument, "metacallfms: decoding arguments", err)
	}
	if !doc.IsMap() {
		return nil, apperr.New(apperr.BadArgument, "metacallfms: serialized arguments must be map-shaped")
	}

	sig := fn.Signature()
	args := make([]*reflect.Value, sig.Count())
	for i := 0; i < sig.Count(); i++ {
		name := sig.Name(i)
		found := false
		for _, entry := range doc.Map() {
			if entry.Key.IsString() && entry.Key.String() == name {
				v := entry.Value
				if t := sig.ParamType(i); t != nil {
					v, err = Cast(v, t.ID())
					if err != nil {
						return nil, err
					}
				} else {
					v = v.Copy()
				}
				args[i] = v
				found = true
				break
			}
		}
		if !found {
			return nil, apperr.Missing(name)
		}
	}
	return invoke(fn, args)
}

// MetacallAwait is the async variant: the result is guaranteed to be a
// future. A synchronous function's result is wrapped in an
// already-settled future so callers get uniform await semantics whether
// or not the callee itself is asynchronous.
func (p *Pipeline) MetacallAwait(name string, args []*reflect.Value, onResolve reflect.ResolveCallback, onReject reflect.RejectCallback, userData interface{}) (*reflect.Value, error) {
	fn, err := p.resolve(name)
	if err != nil {
		return nil, err
	}
	return p.awaitCall(fn, args, onResolve, onReject, userData)
}

// MetacallfAwait is the async variant skipping name lookup.
func (p *Pipeline) MetacallfAwait(fn *reflect.Function, args []*reflect.Value, onResolve reflect.ResolveCallback, onReject reflect.RejectCallback, userData interface{}) (*reflect.Value, error) {
	return p.awaitCall(fn, args, onResolve, onReject, userData)
}

func (p *Pipeline) awaitCall(fn *reflect.Function, args []*reflect.Value, onResolve reflect.ResolveCallback, onReject reflect.RejectCallback, userData interface{}) (*reflect.Value, error) {
	result, err := invoke(fn, args)
	if err != nil {
		return nil, err
	}

	var future *reflect.Future
	if result.IsFuture() {
		future = result.FutureValue()
	} else {
		// Wrap a synchronous result so the continuation dispatch below is
		// identical for sync and async callees — NewFuture runs settle on
		// its own goroutine and Await below blocks until it settles,
		// mirroring the teacher's EmitEvent per-subscriber
		// goroutine-with-recover dispatch, narrowed to a single
		// resolve/reject race instead of a fan-out.
		result := result
		future = reflect.NewFuture(func(resolve func(*reflect.Value), reject func(*reflect.Value)) {
			if result.IsThrowable() {
				reject(result)
				return
			}
			resolve(result)
		})
	}

	settled := future.Await(onResolve, onReject, userData)
	logger.Call().Debug().Str("function", fn.Name()).Bool("resolved", settled != nil).Msg("await settled")
	return settled, nil
}

// invoke validates arity and calls fn, translating a back-end panic into a
// throwable result the same way the teacher's EmitEvent recovers a
// subscriber's panic rather than crashing the dispatch goroutine.
//
// §4.5(e) requires a back-end invocation failure — a foreign panic or an
// error the callee's own runtime raised — to come back as an in-band
// *reflect.Value carrying type-id Throwable, not as a Go error: a caller
// doing error_from_value(result) needs something to unwrap. Only arity
// validation, checked above before the back end ever runs, stays on the
// plain Go error return.
func invoke(fn *reflect.Function, args []*reflect.Value) (result *reflect.Value, err error) {
	if fn.Signature().Count() != len(args) {
		return nil, apperr.Arity(fn.Name(), fn.Signature().Count(), len(args))
	}
	defer func() {
		if r := recover(); r != nil {
			result = backEndThrowable(fmt.Sprintf("%v", r), apperr.BackEndError)
			err = nil
		}
	}()
	result, err = fn.Call(args)
	if err != nil {
		result, err = backEndThrowable(err.Error(), errKind(err)), nil
	}
	return result, err
}

// errKind recovers the closed error Kind carried by an *apperr.Error so the
// Throwable's Exception.Label stays meaningful (e.g. "ArityMismatch"
// surfaced by a loader's own argument-count check), falling back to
// BackEndError for an error a back end raised in some other shape.
func errKind(err error) apperr.Kind {
	if ae, ok := err.(*apperr.Error); ok {
		return ae.Kind
	}
	return apperr.BackEndError
}

// backEndThrowable wraps a back-end failure's message into the in-band
// Throwable channel: ValueThrowable(ValueException(...)), matching
// Testable Scenario 3's "error_from_value then message/label" contract.
func backEndThrowable(message string, kind apperr.Kind) *reflect.Value {
	return reflect.ValueThrowable(reflect.ValueException(reflect.NewException(
		message, string(kind), 0, "",
	)))
}
