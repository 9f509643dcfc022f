package loader

import (
	"sync"

	"github.com/google/uuid"

	"github.com/gometacall/gometacall/internal/apperr"
	"github.com/gometacall/gometacall/internal/envconfig"
	"github.com/gometacall/gometacall/internal/logger"
)

// Factory lazily creates an Implementation for a tag. Registered once per
// tag (by a reference loader's init() or the façade's bootstrap), mirroring
// the teacher's PluginFactory / plugins.Register pattern.
type Factory func() Implementation

type job struct {
	fn     func() (interface{}, error)
	result chan jobResult
}

type jobResult struct {
	v   interface{}
	err error
}

// loaderState is one initialized loader instance: its implementation, its
// monotonic initialization-order id, its live handle set, and — for
// EngineThreadOnly back-ends — the dedicated goroutine and channel every
// call to it is routed through.
type loaderState struct {
	tag       string
	impl      Implementation
	initOrder uint64

	mu        sync.Mutex
	handles   map[string]*Handle
	destroyed bool

	serialMu sync.Mutex
	engineCh chan job
}

func (ls *loaderState) addHandle(h *Handle) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.handles[h.ID] = h
}

func (ls *loaderState) removeHandle(id string) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	delete(ls.handles, id)
}

func (ls *loaderState) runEngineLoop() {
	for j := range ls.engineCh {
		v, err := j.fn()
		j.result <- jobResult{v: v, err: err}
	}
}

// Manager is the loader registry: tag -> loader instance, insertion order
// (destruction runs in strict reverse), and the host ContextStack folding
// every live handle's discovered context together (§4.5, §5).
type Manager struct {
	mu        sync.Mutex
	factories map[string]Factory
	loaders   map[string]*loaderState
	order     []string
	nextOrder uint64

	host        *ContextStack
	searchPaths []string
}

// NewManager creates an empty Manager. Search paths are resolved once,
// from METACALL_LOADER_LIBRARY_PATH, and cached for the manager's
// lifetime (§6.x: "consulted once at loader initialization and cached").
func NewManager() *Manager {
	return &Manager{
		factories:   make(map[string]Factory),
		loaders:     make(map[string]*loaderState),
		host:        NewContextStack("host"),
		searchPaths: envconfig.LoaderLibraryPaths(),
	}
}

// RegisterFactory registers how to construct the Implementation for tag.
// Registering the same tag twice replaces the prior factory; it does not
// affect a loader already constructed under the old factory.
func (m *Manager) RegisterFactory(tag string, factory Factory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factories[tag] = factory
}

// SearchPaths returns the loader library search paths read from the
// environment when the manager was created.
func (m *Manager) SearchPaths() []string {
	out := make([]string, len(m.searchPaths))
	copy(out, m.searchPaths)
	return out
}

// Host returns the manager's global host context stack, used by the call
// pipeline for anonymous by-name lookup.
func (m *Manager) Host() *ContextStack { return m.host }

// IsInitialized reports whether tag's loader has already been created.
func (m *Manager) IsInitialized(tag string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.loaders[tag]
	return ok
}

// resolve implements load-pipeline step 1: resolve the tag to a loader,
// lazily creating and initializing it on first use. Mirrors
// loadPluginHandler's built-in-then-dynamic fallback.
func (m *Manager) resolve(tag string) (*loaderState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ls, ok := m.loaders[tag]; ok {
		return ls, nil
	}
	factory, ok := m.factories[tag]
	if !ok {
		return nil, apperr.New(apperr.LoaderUnavailable, "loader: no implementation registered for tag %q", tag)
	}
	impl := factory()
	if err := impl.Initialize(nil); err != nil {
		return nil, apperr.Wrap(apperr.LoadFailed, "loader: initializing "+tag, err)
	}
	ls := &loaderState{
		tag:       tag,
		impl:      impl,
		initOrder: m.nextOrder,
		handles:   make(map[string]*Handle),
	}
	m.nextOrder++
	if impl.Affinity() == EngineThreadOnly {
		ls.engineCh = make(chan job, envconfig.HostConcurrency())
		go ls.runEngineLoop()
	}
	m.loaders[tag] = ls
	m.order = append(m.order, tag)
	logger.Loader().Info().Str("tag", tag).Uint64("init_order", ls.initOrder).Str("affinity", impl.Affinity().String()).Msg("loader initialized")
	return ls, nil
}

// dispatch routes fn through the affinity-appropriate execution context
// (§5): serialized through a per-loader mutex, engine-thread-only through
// the loader's dedicated goroutine, free-threaded called directly.
func (m *Manager) dispatch(ls *loaderState, fn func() (interface{}, error)) (interface{}, error) {
	switch ls.impl.Affinity() {
	case Serialized:
		ls.serialMu.Lock()
		defer ls.serialMu.Unlock()
		return fn()
	case EngineThreadOnly:
		j := job{fn: fn, result: make(chan jobResult, 1)}
		ls.engineCh <- j
		r := <-j.result
		return r.v, r.err
	default:
		return fn()
	}
}

// ExecutionPath adds path to tag's module search path, lazily creating
// the loader if necessary.
func (m *Manager) ExecutionPath(tag, path string) error {
	ls, err := m.resolve(tag)
	if err != nil {
		return err
	}
	_, err = m.dispatch(ls, func() (interface{}, error) { return nil, ls.impl.ExecutionPath(path) })
	return err
}

// LoadFromFile runs the full load pipeline (§4.5 steps 1-5) against the
// named files.
func (m *Manager) LoadFromFile(tag string, paths []string) (*Handle, error) {
	identity := ""
	if len(paths) > 0 {
		identity = paths[0]
	}
	return m.load(tag, identity, func(impl Implementation) (interface{}, error) {
		return impl.LoadFromFile(paths)
	})
}

// LoadFromMemory runs the load pipeline against an in-memory source.
func (m *Manager) LoadFromMemory(tag, name, buffer string) (*Handle, error) {
	return m.load(tag, name, func(impl Implementation) (interface{}, error) {
		return impl.LoadFromMemory(name, buffer)
	})
}

// LoadFromPackage runs the load pipeline against a pre-built artifact.
func (m *Manager) LoadFromPackage(tag, path string) (*Handle, error) {
	return m.load(tag, path, func(impl Implementation) (interface{}, error) {
		return impl.LoadFromPackage(path)
	})
}

func (m *Manager) load(tag, identity string, op func(Implementation) (interface{}, error)) (*Handle, error) {
	ls, err := m.resolve(tag)
	if err != nil {
		return nil, err
	}

	state, err := m.dispatch(ls, func() (interface{}, error) { return op(ls.impl) })
	if err != nil {
		return nil, apperr.Wrap(apperr.LoadFailed, "loader: load "+tag+" "+identity, err)
	}

	ctx, err := ls.impl.Discover(state)
	if err != nil {
		_ = ls.impl.Clear(state)
		return nil, apperr.Wrap(apperr.DiscoveryFailed, "loader: discover "+tag+" "+identity, err)
	}

	h := &Handle{
		ID:       uuid.NewString(),
		Tag:      tag,
		Identity: identity,
		Context:  ctx,
		state:    state,
		loader:   ls,
		host:     m.host,
	}
	ls.addHandle(h)
	m.host.Push(ctx)
	logger.Loader().Info().Str("tag", tag).Str("identity", identity).Str("handle", h.ID).Msg("handle loaded")
	return h, nil
}

// Handle looks up a live handle of tag by its script identity.
func (m *Manager) Handle(tag, identity string) (*Handle, bool) {
	m.mu.Lock()
	ls, ok := m.loaders[tag]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	for _, h := range ls.handles {
		if h.Identity == identity {
			return h, true
		}
	}
	return nil, false
}

// Lookup resolves name through the host context stack (anonymous by-name
// lookup, most-recently-loaded wins).
func (m *Manager) Lookup(name string) (interface{}, bool) {
	return m.host.Lookup(name)
}

// Info summarizes one initialized loader: its tag and the script
// identities currently loaded under it, for the façade's introspection
// surface.
type Info struct {
	Tag     string
	Handles []string
}

// Inspect reports every initialized loader in initialization order along
// with its live handles' identities.
func (m *Manager) Inspect() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Info, 0, len(m.order))
	for _, tag := range m.order {
		ls := m.loaders[tag]
		ls.mu.Lock()
		ids := make([]string, 0, len(ls.handles))
		for _, h := range ls.handles {
			ids = append(ids, h.Identity)
		}
		ls.mu.Unlock()
		out = append(out, Info{Tag: tag, Handles: ids})
	}
	return out
}

// Destroy tears down every initialized loader in strictly decreasing
// initialization-order id (§4.5's "Initialization order"). Idempotent per
// loader.
func (m *Manager) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.order) - 1; i >= 0; i-- {
		tag := m.order[i]
		ls := m.loaders[tag]
		ls.mu.Lock()
		already := ls.destroyed
		ls.destroyed = true
		ls.mu.Unlock()
		if already {
			continue
		}
		if err := ls.impl.Destroy(); err != nil {
			logger.Loader().Error().Err(err).Str("tag", tag).Msg("loader destroy failed")
		}
		if ls.engineCh != nil {
			close(ls.engineCh)
		}
	}
}
