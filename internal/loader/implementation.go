// Package loader implements the polyglot heart of the runtime: the
// per-language back-end vtable, the manager that tracks one loader
// instance per tag, handle/context bookkeeping, and the load pipeline.
//
// Grounded in the teacher's internal/plugins/runtime.go Runtime type
// (LoadedPlugin -> Handle, PluginHandler -> Implementation,
// Runtime.plugins map[string]*LoadedPlugin -> Manager.loaders
// map[string]*loaderState) and loadPluginHandler's built-in-then-dynamic
// tag resolution, reused as the load pipeline's first step.
package loader

import "github.com/gometacall/gometacall/internal/reflect"

// Affinity is the closed set of threading contracts a loader back-end can
// declare (§5): some engines (NodeJS-style event loops) may only ever be
// entered from the goroutine that initialised them; others (Python-style
// GIL interpreters) may be entered from any goroutine but only one at a
// time; the rest place no constraint at all.
type Affinity int

const (
	FreeThreaded Affinity = iota
	EngineThreadOnly
	Serialized
)

func (a Affinity) String() string {
	switch a {
	case FreeThreaded:
		return "free-threaded"
	case EngineThreadOnly:
		return "engine-thread-only"
	case Serialized:
		return "serialized"
	default:
		return "unknown"
	}
}

// Implementation is the per-language back-end vtable the specification
// names (§4.5): initialize/execution_path/load_from_*/clear/discover/
// destroy. Go's interfaces already give us dynamic dispatch, so this is a
// plain interface rather than a struct of function pointers plus an
// opaque "impl" blob — each method closes over whatever native state a
// concrete back-end needs.
type Implementation interface {
	// Initialize performs one-time per-process engine start. config may be
	// nil; back-ends that need configuration should type-assert it.
	Initialize(config *reflect.Value) error

	// ExecutionPath adds path to the engine's module search path.
	// Idempotent: calling it twice with the same path is a no-op.
	ExecutionPath(path string) error

	// LoadFromFile produces opaque back-end load state from the listed
	// files. The returned state is later discovered via Discover and
	// released via Clear.
	LoadFromFile(paths []string) (state interface{}, err error)

	// LoadFromMemory produces back-end load state from an in-memory
	// source fingerprinted by name.
	LoadFromMemory(name, buffer string) (state interface{}, err error)

	// LoadFromPackage produces back-end load state from a pre-built
	// artifact (archive, compiled plugin, bytecode).
	LoadFromPackage(path string) (state interface{}, err error)

	// Clear disposes of load state produced by one of the LoadFrom*
	// methods.
	Clear(state interface{}) error

	// Discover enumerates the top-level functions, classes, and constants
	// of state and returns a populated Context of reflected entities.
	Discover(state interface{}) (*reflect.Context, error)

	// Destroy tears down the engine. Must be idempotent: the manager
	// guarantees it is called at most once per loader instance, but a
	// well-behaved implementation should still tolerate a second call.
	Destroy() error

	// Affinity declares this back-end's threading contract.
	Affinity() Affinity
}
