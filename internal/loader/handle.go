package loader

import (
	"sync"

	"github.com/gometacall/gometacall/internal/reflect"
)

// Handle is a loader-local bundle representing one successful load: the
// script identity (a path or in-memory fingerprint), the back-end's
// opaque load state, and the discovered Context. Handles are
// independently clearable (§3: "Handle: created by load_from_*; destroyed
// by explicit clear(handle) or by its loader's destruction").
type Handle struct {
	ID       string
	Tag      string
	Identity string
	Context  *reflect.Context

	mu      sync.Mutex
	cleared bool
	state   interface{}
	loader  *loaderState
	host    *ContextStack
}

// Clear disposes of the handle: delegates to the owning loader's Clear,
// unregisters the handle from its loader, and pops its Context off the
// manager's host context stack. Safe to call more than once; only the
// first call has effect.
func (h *Handle) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cleared {
		return nil
	}
	h.cleared = true

	if h.host != nil {
		h.host.Pop(h.Context)
	}
	h.loader.removeHandle(h.ID)
	return h.loader.impl.Clear(h.state)
}

// Cleared reports whether Clear has already run.
func (h *Handle) Cleared() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cleared
}
