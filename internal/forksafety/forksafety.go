// Package forksafety keeps pre/post-fork callback lists, layered on top of
// internal/detour's registration-and-indirection table (§4.7, §4.8), and
// runs them when PreFork/PostFork are called. No hook is placed on fork()
// or syscall.ForkExec themselves: a fork the host process performs on its
// own does not trigger the callbacks.
//
// Every platform exposes ForkInitialize/PreForkCallback/PostForkCallback/
// ForkDestroy; the Unix build (forksafety_unix.go) backs ForkInitialize
// with a real golang.org/x/sys/unix call to prove out real platform
// integration, while platforms without fork() (forksafety_other.go)
// report Capability.Supported=false, the specification's documented
// "unsupported on this platform" response, per §9's last design-notes
// bullet. Callback registration and triggering themselves are identical
// on every platform: nothing here ever performs a literal fork of the
// host process (this runtime does not spawn worker processes by
// forking), so there is no actual-fork code path whose absence on
// Windows would change program behavior — only the reported capability
// differs, and well-behaved embedders gate their own pre/post
// registration on it.
package forksafety

import (
	"sync"

	"github.com/gometacall/gometacall/internal/apperr"
	"github.com/gometacall/gometacall/internal/detour"
)

const (
	preForkToken  detour.Token = "fork:pre"
	postForkToken detour.Token = "fork:post"
)

// Callback is one registered pre- or post-fork action.
type Callback func() error

// Capability describes what ForkInitialize found on this platform.
type Capability struct {
	Supported bool
	Platform  string
}

var (
	mu       sync.Mutex
	pre      []Callback
	post     []Callback
	ready    bool
	preHook  *detour.Detour
	postHook *detour.Detour
)

func init() {
	_ = detour.RegisterOriginal(preForkToken, func(args ...interface{}) (interface{}, error) { return nil, nil })
	_ = detour.RegisterOriginal(postForkToken, func(args ...interface{}) (interface{}, error) { return nil, nil })
}

// ForkInitialize wires the pre/post-fork detour hooks and reports the
// platform's fork capability. Safe to call more than once: later calls
// simply re-report the capability without double-registering hooks.
func ForkInitialize() (*Capability, error) {
	mu.Lock()
	defer mu.Unlock()

	if !ready {
		d, err := detour.Install(preForkToken, forkHook(&pre))
		if err != nil {
			return nil, apperr.Wrap(apperr.Fatal, "forksafety: installing pre-fork hook", err)
		}
		preHook = d

		d, err = detour.Install(postForkToken, forkHook(&post))
		if err != nil {
			preHook.Uninstall()
			preHook = nil
			return nil, apperr.Wrap(apperr.Fatal, "forksafety: installing post-fork hook", err)
		}
		postHook = d

		ready = true
	}
	return platformCapability(), nil
}

// forkHook builds a detour.Hook that runs every callback currently in
// *callbacks, in registration order, ignoring Dispatch's call arguments
// (pre/post-fork callbacks are declared as taking none).
func forkHook(callbacks *[]Callback) detour.Hook {
	return func(trampoline func(args ...interface{}) (interface{}, error), args ...interface{}) (interface{}, error) {
		mu.Lock()
		cbs := append([]Callback(nil), (*callbacks)...)
		mu.Unlock()
		if err := runCallbacks(cbs); err != nil {
			return nil, err
		}
		return trampoline(args...)
	}
}

func runCallbacks(cbs []Callback) error {
	for _, cb := range cbs {
		if err := cb(); err != nil {
			return err
		}
	}
	return nil
}

// PreForkCallback registers cb to run on every PreFork trigger, in
// registration order. Requires ForkInitialize to have run first.
func PreForkCallback(cb Callback) error {
	mu.Lock()
	defer mu.Unlock()
	if !ready {
		return apperr.New(apperr.Fatal, "forksafety: ForkInitialize has not been called")
	}
	pre = append(pre, cb)
	return nil
}

// PostForkCallback registers cb to run on every PostFork trigger.
func PostForkCallback(cb Callback) error {
	mu.Lock()
	defer mu.Unlock()
	if !ready {
		return apperr.New(apperr.Fatal, "forksafety: ForkInitialize has not been called")
	}
	post = append(post, cb)
	return nil
}

// PreFork runs every registered pre-fork callback. Embedders call this
// immediately before a fork-shaped operation (or, in tests exercising the
// §8 "fork idempotence" property, with no real fork at all).
func PreFork() error {
	_, err := detour.Dispatch(preForkToken)
	return err
}

// PostFork runs every registered post-fork callback.
func PostFork() error {
	_, err := detour.Dispatch(postForkToken)
	return err
}

// ForkDestroy uninstalls the pre/post-fork hooks and clears every
// registered callback. Idempotent.
func ForkDestroy() {
	mu.Lock()
	defer mu.Unlock()
	if !ready {
		return
	}
	preHook.Uninstall()
	postHook.Uninstall()
	preHook = nil
	postHook = nil
	pre = nil
	post = nil
	ready = false
}
