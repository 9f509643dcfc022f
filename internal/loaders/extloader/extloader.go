// Package extloader implements the "extension" loader: native Go
// functions registered directly against the runtime, with no interpreter
// or shared-library boundary at all (scenario 6: an in-process extension
// exporting sum(long, long) -> long). This is the loader-manager
// equivalent of the teacher's built-in, compiled-in plugin kind, narrowed
// to a single exported registration surface: Register.
package extloader

import (
	"sync"

	"github.com/gometacall/gometacall/internal/apperr"
	"github.com/gometacall/gometacall/internal/loader"
	"github.com/gometacall/gometacall/internal/reflect"
)

// Export is one native Go function an extension makes callable through
// the reflection/call pipeline.
type Export struct {
	Name      string
	Signature *reflect.Signature
	Invoke    reflect.Invoker
}

var (
	registryMu sync.RWMutex
	registry   = map[string][]Export{}
)

// Register adds a package of exports discoverable under name, into the
// process-wide extension registry. Intended to be called from an
// extension's own init(), mirroring the teacher's global auto-registration
// pattern in internal/plugins/registry.go: an extension announces itself
// at program startup, before any loader manager exists to load it.
func Register(name string, exports ...Export) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = append(registry[name], exports...)
}

// Loader implements loader.Implementation by resolving package names
// against the process-wide extension registry. Affinity is FreeThreaded:
// native Go functions carry no engine-thread or serialization constraint
// of their own (any constraint belongs to whatever they close over, which
// is the extension author's responsibility, exactly like a real MetaCall
// extension written in C).
type Loader struct{}

// New creates an extension loader. There is no per-instance state: every
// Loader resolves against the same process-wide registry populated by
// Register.
func New() loader.Implementation {
	return &Loader{}
}

func (l *Loader) Initialize(config *reflect.Value) error { return nil }

func (l *Loader) ExecutionPath(path string) error { return nil }

func (l *Loader) LoadFromMemory(name, buffer string) (interface{}, error) {
	return l.resolve(name)
}

func (l *Loader) LoadFromFile(paths []string) (interface{}, error) {
	if len(paths) == 0 {
		return nil, apperr.Missing("paths")
	}
	return l.resolve(paths[0])
}

func (l *Loader) LoadFromPackage(path string) (interface{}, error) {
	return l.resolve(path)
}

func (l *Loader) resolve(name string) (interface{}, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	exports, ok := registry[name]
	if !ok {
		return nil, apperr.NotFound("extension package", name)
	}
	return exports, nil
}

func (l *Loader) Clear(state interface{}) error { return nil }

func (l *Loader) Discover(state interface{}) (*reflect.Context, error) {
	exports, ok := state.([]Export)
	if !ok {
		return nil, apperr.New(apperr.BadArgument, "extloader: Discover called with foreign state")
	}
	ctx := reflect.NewContext("extension")
	for _, e := range exports {
		fn := reflect.NewFunction(e.Name, e.Signature, e.Invoke)
		ctx.Scope().Define(e.Name, reflect.ValueFunction(fn))
	}
	return ctx, nil
}

func (l *Loader) Destroy() error { return nil }

func (l *Loader) Affinity() loader.Affinity { return loader.FreeThreaded }

// Sum is the scenario 6 reference export: sum(long, long) -> long.
func Sum() Export {
	sig := reflect.NewSignature(2)
	sig.Set(0, "a", reflect.Primitive(reflect.Long))
	sig.Set(1, "b", reflect.Primitive(reflect.Long))
	sig.SetReturn(reflect.Primitive(reflect.Long))
	return Export{
		Name:      "sum",
		Signature: sig,
		Invoke: func(args []*reflect.Value) (*reflect.Value, error) {
			if len(args) != 2 {
				return nil, apperr.Arity("sum", 2, len(args))
			}
			return reflect.ValueLong(args[0].Long() + args[1].Long()), nil
		},
	}
}
