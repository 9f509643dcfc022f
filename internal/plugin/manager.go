package plugin

import (
	"sync"

	"github.com/gometacall/gometacall/internal/apperr"
	"github.com/gometacall/gometacall/internal/logger"
)

// entry is a loaded descriptor plus its resolved singleton.
type entry struct {
	desc     Descriptor
	instance interface{}
}

// Manager owns the process-wide descriptor list and the interface
// singletons it resolves. Per the specification's shared-resource policy,
// the descriptor list is write-once at initialization (LoadDescriptors is
// meant to be called exactly once); Get is safe for concurrent readers
// after that.
type Manager struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*entry
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{entries: make(map[string]*entry)}
}

// LoadDescriptors resolves descs in dependency order (a descriptor is
// resolved only after everything it names in Dependencies), calling each
// descriptor's Singleton exactly once. A cycle, or a dependency naming a
// descriptor not present in descs, is reported as CyclicConfiguration /
// NotFound respectively and aborts the whole batch.
func (m *Manager) LoadDescriptors(descs []Descriptor) error {
	byName := make(map[string]Descriptor, len(descs))
	for _, d := range descs {
		byName[d.Name] = d
	}

	order, err := topoSort(descs, byName)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range order {
		d := byName[name]
		inst, err := d.Singleton()
		if err != nil {
			return apperr.Wrap(apperr.LoadFailed, "plugin: initializing "+d.Kind.String()+" descriptor "+name, err)
		}
		m.entries[name] = &entry{desc: d, instance: inst}
		m.order = append(m.order, name)
		logger.Plugin().Info().Str("descriptor", name).Str("kind", d.Kind.String()).Msg("plugin descriptor initialized")
	}
	return nil
}

// Get returns the resolved singleton instance for a loaded descriptor.
func (m *Manager) Get(name string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[name]
	if !ok {
		return nil, false
	}
	return e.instance, true
}

// Names returns every loaded descriptor name in initialization order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Destroy tears every loaded descriptor down in the exact reverse of its
// initialization order — which, because initialization order already
// places every descriptor after its dependencies, automatically satisfies
// the cascade rule: a descriptor that depends on another is always
// destroyed first.
func (m *Manager) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.order) - 1; i >= 0; i-- {
		name := m.order[i]
		e := m.entries[name]
		if destroyer, ok := e.instance.(interface{ Destroy() error }); ok {
			if err := destroyer.Destroy(); err != nil {
				logger.Plugin().Error().Err(err).Str("descriptor", name).Msg("plugin descriptor destroy failed")
			}
		}
		delete(m.entries, name)
	}
	m.order = nil
}

// topoSort orders descs so that every descriptor appears after all of its
// declared Dependencies.
func topoSort(descs []Descriptor, byName map[string]Descriptor) ([]string, error) {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int, len(descs))
	order := make([]string, 0, len(descs))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visited:
			return nil
		case visiting:
			return apperr.New(apperr.CyclicConfiguration, "plugin: dependency cycle involving %q", name)
		}
		d, ok := byName[name]
		if !ok {
			return apperr.NotFound("plugin descriptor", name)
		}
		state[name] = visiting
		for _, dep := range d.Dependencies {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = visited
		order = append(order, name)
		return nil
	}

	for _, d := range descs {
		if err := visit(d.Name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
