// Package metacall is the public façade: the single stable surface every
// embedder links against, combining the loader manager, the plugin
// descriptor manager, the call pipeline, fork-safety, and the last-error
// registry behind one runtime context struct — §9's "keep [process
// globals] as a single runtime context struct created by initialize."
package metacall

import (
	"context"
	"sync"

	"github.com/gometacall/gometacall/internal/apperr"
	"github.com/gometacall/gometacall/internal/call"
	"github.com/gometacall/gometacall/internal/forksafety"
	"github.com/gometacall/gometacall/internal/loader"
	"github.com/gometacall/gometacall/internal/loaders/extloader"
	"github.com/gometacall/gometacall/internal/loaders/goloader"
	"github.com/gometacall/gometacall/internal/loaders/mockloader"
	"github.com/gometacall/gometacall/internal/logger"
	"github.com/gometacall/gometacall/internal/plugin"
)

// Runtime is one initialized MetaCall process context. Every public
// function in this package is a method on *Runtime rather than a bare
// process-global, so an embedder can (in principle) run more than one
// independently-destroyable runtime in the same process — something the
// original's true process-globals could never offer.
type Runtime struct {
	mu          sync.Mutex
	initialized bool

	loaders  *loader.Manager
	plugins  *plugin.Manager
	pipeline *call.Pipeline
	errors   *apperr.LastErrorRegistry
	forkCap  *forksafety.Capability
}

// Initialize creates a Runtime with the three reference loader back-ends
// registered under the tags "mock", "go", and "ext" — the built-in set
// every embedder gets for free, mirroring the specification's
// built-in-then-dynamic loader resolution (§4.5 step 1). Equivalent to
// the façade's `initialize()` with no extra configuration.
func Initialize() (*Runtime, error) {
	return InitializeEx(nil)
}

// InitializeEx creates a Runtime and additionally loads every
// configuration.Document in configs via LoadFromConfiguration-equivalent
// resolution, mirroring `initialize_ex(configuration[])`.
func InitializeEx(configs []string) (*Runtime, error) {
	r := &Runtime{
		loaders: loader.NewManager(),
		plugins: plugin.NewManager(),
		errors:  apperr.NewLastErrorRegistry(),
	}
	r.pipeline = call.NewPipeline(r.loaders.Host())

	r.loaders.RegisterFactory("mock", mockloader.New)
	r.loaders.RegisterFactory("go", goloader.New)
	r.loaders.RegisterFactory("ext", extloader.New)

	for _, path := range configs {
		if _, err := r.LoadFromConfigurationFile(path); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.initialized = true
	r.mu.Unlock()
	logger.GetLogger().Info().Msg("metacall runtime initialized")
	return r, nil
}

// IsInitialized reports whether tag's loader has already been brought up.
// With an empty tag it reports whether the runtime itself is usable.
func (r *Runtime) IsInitialized(tag string) bool {
	if tag == "" {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.initialized
	}
	return r.loaders.IsInitialized(tag)
}

// Loaders exposes the underlying loader manager for components (the
// demo HTTP façade's /inspect handler) that need direct access.
func (r *Runtime) Loaders() *loader.Manager { return r.loaders }

// Plugins exposes the underlying plugin descriptor manager.
func (r *Runtime) Plugins() *plugin.Manager { return r.plugins }

// Errors exposes the last-error registry, for call sites that manage
// their own context.Context scopes directly instead of through
// WithScope.
func (r *Runtime) Errors() *apperr.LastErrorRegistry { return r.errors }

// WithScope allocates a fresh last-error call scope over ctx. Every
// public entry point that can fail should be entered through the
// returned context and call EndScope when done, mirroring the
// façade-wide per-call-scope discipline apperr.LastErrorRegistry
// documents.
func (r *Runtime) WithScope(ctx context.Context) context.Context {
	return r.errors.NewScope(ctx)
}

// fail records err as ctx's last error (a no-op if ctx carries no scope)
// and returns it unchanged, so call sites can write
// `return nil, r.fail(ctx, err)`.
func (r *Runtime) fail(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*apperr.Error); ok {
		r.errors.Set(ctx, ae)
	}
	return err
}

// Destroy tears the runtime down: fork-safety hooks, every loader in
// reverse initialization order, then every plugin descriptor in reverse
// dependency order. Idempotent.
func (r *Runtime) Destroy() {
	r.mu.Lock()
	if !r.initialized {
		r.mu.Unlock()
		return
	}
	r.initialized = false
	r.mu.Unlock()

	if r.forkCap != nil {
		forksafety.ForkDestroy()
	}
	r.loaders.Destroy()
	r.plugins.Destroy()
	logger.GetLogger().Info().Msg("metacall runtime destroyed")
}
