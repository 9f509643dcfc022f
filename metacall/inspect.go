package metacall

import (
	"github.com/gometacall/gometacall/internal/forksafety"
	"github.com/gometacall/gometacall/internal/loader"
)

// LoaderInfo summarizes one tagged loader for Inspect's output.
type LoaderInfo = loader.Info

// Inspect reports every initialized loader and the script identities
// currently loaded under it — the façade's introspection surface (§6
// metacall_inspect), used by the demo daemon's /inspect endpoint.
func (r *Runtime) Inspect() []LoaderInfo {
	return r.loaders.Inspect()
}

// ForkInitialize installs the pre/post-fork hooks (§4.8). Safe to call
// more than once.
func (r *Runtime) ForkInitialize() error {
	cap, err := forksafety.ForkInitialize()
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.forkCap = cap
	r.mu.Unlock()
	return nil
}

// ForkPreCallback registers a callback to run immediately before a fork.
func (r *Runtime) ForkPreCallback(cb forksafety.Callback) error {
	return forksafety.PreForkCallback(cb)
}

// ForkPostCallback registers a callback to run immediately after a fork,
// in both the parent and the child.
func (r *Runtime) ForkPostCallback(cb forksafety.Callback) error {
	return forksafety.PostForkCallback(cb)
}

// ForkDestroy removes the fork hooks installed by ForkInitialize.
func (r *Runtime) ForkDestroy() {
	forksafety.ForkDestroy()
	r.mu.Lock()
	r.forkCap = nil
	r.mu.Unlock()
}
