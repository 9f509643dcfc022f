// Package dynlink wraps Go's own dynamic-loading primitive
// (plugin.Open/.Lookup) behind the load/symbol/library-path/unload shape a
// loader back-end needs to resolve its native engine library.
//
// Go has no generic dlopen/LoadLibrary that resolves arbitrary C symbols;
// the closest in-process analogue the standard library ships is the
// plugin package, which only works with Go-built .so/.dylib plugins on
// POSIX. That is what this package wraps. No other package in this module
// imports it: goloader interprets Go source through yaegi and
// internal/plugin registers in-process descriptors, so neither opens a
// shared library.
package dynlink

import (
	"plugin"
	"sync"

	"github.com/gometacall/gometacall/internal/apperr"
)

// NameMangler decorates a logical symbol name into whatever form the
// platform's dynamic loader actually exports it under. The default is a
// no-op: Go plugins already export symbols under their literal Go names,
// unlike C compilers which prepend an underscore on some platforms. It is
// a documented hook point for a back-end that needs platform decoration
// (mirroring dynlink_impl_interface.h's per-platform symbol handling).
type NameMangler func(symbol string) string

// IdentityMangler performs no decoration.
func IdentityMangler(symbol string) string { return symbol }

// Library is a dynamically loaded shared object, opened exactly once and
// cached for the process lifetime.
type Library struct {
	path    string
	mangler NameMangler
	mu      sync.Mutex
	handle  *plugin.Plugin
}

// New creates a Library bound to path, not yet opened. mangler may be nil,
// in which case IdentityMangler is used.
func New(path string, mangler NameMangler) *Library {
	if mangler == nil {
		mangler = IdentityMangler
	}
	return &Library{path: path, mangler: mangler}
}

// LibraryPath returns the filesystem path this library was opened from.
func (l *Library) LibraryPath() string { return l.path }

// Load opens the underlying plugin.Plugin if it has not been opened yet.
// Safe to call more than once; subsequent calls are no-ops.
func (l *Library) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle != nil {
		return nil
	}
	h, err := plugin.Open(l.path)
	if err != nil {
		return apperr.Wrap(apperr.LoadFailed, "dynlink: opening "+l.path, err)
	}
	l.handle = h
	return nil
}

// Symbol resolves name (after mangling) to its exported value. The caller
// is responsible for type-asserting the result to the expected function or
// variable type, exactly as plugin.Plugin.Lookup requires.
func (l *Library) Symbol(name string) (plugin.Symbol, error) {
	l.mu.Lock()
	h := l.handle
	l.mu.Unlock()
	if h == nil {
		return nil, apperr.New(apperr.LoaderUnavailable, "dynlink: %s not loaded", l.path)
	}
	sym, err := h.Lookup(l.mangler(name))
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFoundKind, "dynlink: symbol "+name, err)
	}
	return sym, nil
}

// Unload is a documented permanent no-op: the Go runtime supports no
// mechanism to unload a previously opened plugin, full stop. This is
// strictly stronger than the specification's "no-op on platforms that
// cannot safely unload (e.g. under a leak sanitizer)" carve-out, but
// satisfies the same observable contract — a caller can never trigger a
// use-after-unload crash, because nothing is ever actually freed.
func (l *Library) Unload() error {
	return nil
}
