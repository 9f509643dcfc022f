package loader

import (
	"sync"

	"github.com/gometacall/gometacall/internal/reflect"
)

// ContextStack is a named stack of *reflect.Context realizing the
// manager's global host context as the concatenation of every live
// handle's discovered context, most-recently-pushed first for lookup.
//
// This is kept in package loader rather than as a second type named
// Scope in package reflect: reflect.Scope already names the original
// reflect library's per-Context symbol table (reflect_scope.c); a
// "named stack of Contexts supporting push/pop/lookup-with-shadowing" is
// a different, loader-manager-level concept, so it gets its own name here
// to avoid two incompatible meanings sharing one exported identifier (see
// DESIGN.md).
type ContextStack struct {
	mu     sync.RWMutex
	name   string
	frames []*reflect.Context
}

// NewContextStack creates an empty, named stack.
func NewContextStack(name string) *ContextStack {
	return &ContextStack{name: name}
}

// Name returns the stack's name.
func (s *ContextStack) Name() string { return s.name }

// Push adds ctx as the new top frame, shadowing any name it redefines.
func (s *ContextStack) Push(ctx *reflect.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, ctx)
}

// Pop removes ctx from the stack, wherever it sits (not necessarily the
// top, since handles may clear out of load order). Reports whether ctx
// was found.
func (s *ContextStack) Pop(ctx *reflect.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i] == ctx {
			s.frames = append(s.frames[:i], s.frames[i+1:]...)
			return true
		}
	}
	return false
}

// Lookup scans frames from most-recently-pushed to oldest, returning the
// first binding found — the specification's "most-recently-loaded wins
// for anonymous lookup" rule, expressed directly as shadowing over a
// stack of scopes.
func (s *ContextStack) Lookup(name string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].Scope().Get(name); ok {
			return v, true
		}
	}
	return nil, false
}

// Depth returns the number of frames currently on the stack.
func (s *ContextStack) Depth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.frames)
}
