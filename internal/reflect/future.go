package reflect

import "sync"

// ResolveCallback is invoked exactly once when a Future settles
// successfully, mirroring future_resolve_callback.
type ResolveCallback func(result *Value, userData interface{}) *Value

// RejectCallback is invoked exactly once when a Future settles with an
// error, mirroring future_reject_callback.
type RejectCallback func(reason *Value, userData interface{}) *Value

// Settler is how an async back-end reports completion to a Future: it
// receives two functions and must call exactly one of them exactly once.
// This replaces reflect_future.h's create/await/destroy vtable trio — Go's
// goroutines and channels already give first-class async composition, so
// there is no need for a second level of function-pointer indirection.
type Settler func(resolve func(*Value), reject func(*Value))

// Future is the in-band handle for an async call result (§4.9's
// metacall_await). Resolution happens exactly once regardless of how many
// times the underlying back-end (mistakenly or not) tries to settle it
// again — extra settle attempts destroy their value and are dropped.
type Future struct {
	mu       sync.Mutex
	settled  bool
	rejected bool
	value    *Value
	done     chan struct{}
}

// NewFuture starts settle in its own goroutine and returns immediately
// with a handle that can be awaited later.
func NewFuture(settle Settler) *Future {
	f := &Future{done: make(chan struct{})}
	go settle(
		func(v *Value) { f.settle(v, false) },
		func(v *Value) { f.settle(v, true) },
	)
	return f
}

func (f *Future) settle(v *Value, rejected bool) {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		if v != nil {
			v.Destroy()
		}
		return
	}
	f.settled = true
	f.rejected = rejected
	f.value = v
	f.mu.Unlock()
	close(f.done)
}

// Await blocks until the future settles, then invokes the matching
// callback exactly once and returns its result. Either callback may be
// nil, in which case the raw settled value is returned unmodified.
func (f *Future) Await(resolve ResolveCallback, reject RejectCallback, userData interface{}) *Value {
	<-f.done
	f.mu.Lock()
	v, rejected := f.value, f.rejected
	f.mu.Unlock()

	if rejected {
		if reject != nil {
			return reject(v, userData)
		}
		return v
	}
	if resolve != nil {
		return resolve(v, userData)
	}
	return v
}

// Settled reports whether the future has resolved or rejected yet,
// without blocking.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
