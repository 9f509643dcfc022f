// Package detour implements the specification's function-hook
// abstraction as a registration-and-indirection table rather than literal
// machine-code patching. Idiomatic Go has no supported way to rewrite a
// function's prologue at runtime — no mprotect-and-patch primitive is
// exposed safely by the runtime/ABI, and doing so would defeat the
// moving/precise garbage collector. This is the same "map vtable-shaped
// polymorphism to an interface capability set" move the specification's
// own design notes call for, applied to funchook/plthook instead of a
// struct of function pointers.
//
// Grounded on original_source/source/detours/{funchook_detour,
// plthook_detour}: both install a hook keyed by a target symbol and
// expose a trampoline back to the original. Here "target symbol" becomes
// a Token, "hook" becomes a Hook closure, and "trampoline" becomes
// Detour.Trampoline, a closure over whatever was registered (or a no-op)
// at install time.
package detour

import (
	"sync"

	"github.com/gometacall/gometacall/internal/apperr"
)

// Token names one hookable call site; internal/forksafety uses the
// string constants "fork:pre" and "fork:post".
type Token string

// Hook is a registered replacement for whatever Dispatch(token, ...) used
// to call. It receives the original (pre-hook) behavior as trampoline so
// it can choose to call through, short-circuit, or wrap it.
type Hook func(trampoline func(args ...interface{}) (interface{}, error), args ...interface{}) (interface{}, error)

// Detour is a live installation: one Token, one Hook, and the original
// behavior it shadows.
type Detour struct {
	token       Token
	hook        Hook
	original    func(args ...interface{}) (interface{}, error)
	uninstalled bool
}

// Token returns the detour's target.
func (d *Detour) Token() Token { return d.token }

// Trampoline calls straight through to the behavior this detour shadows,
// bypassing the hook — the funchook/plthook "call original" primitive.
func (d *Detour) Trampoline(args ...interface{}) (interface{}, error) {
	return d.original(args...)
}

// Uninstall removes this detour's hook, restoring direct dispatch to the
// original behavior. Idempotent.
func (d *Detour) Uninstall() {
	table.mu.Lock()
	defer table.mu.Unlock()
	if d.uninstalled {
		return
	}
	d.uninstalled = true
	if table.entries[d.token] == d {
		delete(table.entries, d.token)
	}
}

type indirectionTable struct {
	mu       sync.Mutex
	entries  map[Token]*Detour
	fallback map[Token]func(args ...interface{}) (interface{}, error)
}

var table = &indirectionTable{
	entries:  make(map[Token]*Detour),
	fallback: make(map[Token]func(args ...interface{}) (interface{}, error)),
}

// RegisterOriginal declares the un-hooked behavior for token, called by
// Dispatch/Trampoline whenever no Detour is currently installed. Must be
// called once, before any Install for the same token; a second
// registration for the same token is an AlreadyExists error, mirroring
// funchook's "target already hooked" failure mode at the registration
// layer instead of the hook layer.
func RegisterOriginal(token Token, original func(args ...interface{}) (interface{}, error)) error {
	table.mu.Lock()
	defer table.mu.Unlock()
	if _, exists := table.fallback[token]; exists {
		return apperr.New(apperr.AlreadyExists, "detour: original already registered for token %q", string(token))
	}
	table.fallback[token] = original
	return nil
}

// Install records hook as token's live hook, process-wide. Only one hook
// may be installed per token at a time (funchook/plthook's own
// single-hook-per-target constraint); installing a second one before the
// first is Uninstalled reports AlreadyExists.
func Install(target Token, hook Hook) (*Detour, error) {
	table.mu.Lock()
	defer table.mu.Unlock()

	if _, busy := table.entries[target]; busy {
		return nil, apperr.New(apperr.AlreadyExists, "detour: %q is already hooked", string(target))
	}
	original, ok := table.fallback[target]
	if !ok {
		original = func(args ...interface{}) (interface{}, error) { return nil, nil }
	}
	d := &Detour{token: target, hook: hook, original: original}
	table.entries[target] = d
	return d, nil
}

// Dispatch routes a call through token's live hook, or straight to the
// registered original if no hook is installed.
func Dispatch(token Token, args ...interface{}) (interface{}, error) {
	table.mu.Lock()
	d, hooked := table.entries[token]
	original, hasOriginal := table.fallback[token]
	table.mu.Unlock()

	if hooked {
		return d.hook(d.Trampoline, args...)
	}
	if hasOriginal {
		return original(args...)
	}
	return nil, apperr.NotFound("detour token", string(token))
}

// Installed reports whether token currently has a live hook.
func Installed(token Token) bool {
	table.mu.Lock()
	defer table.mu.Unlock()
	_, ok := table.entries[token]
	return ok
}
