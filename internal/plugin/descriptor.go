// Package plugin implements the specification's descriptor-driven plugin
// manager: loaders, detours, and serial codecs are all just named
// descriptors pointing at a shared library, a symbol, and a singleton
// getter for that symbol's interface table.
//
// Grounded in the teacher's internal/plugins/registry.go global
// named-factory registry (Register/Get/builtin lookup), generalized from
// a single "plugin handler" kind to the specification's three descriptor
// kinds, and in internal/plugins/discovery.go's built-in-vs-dynamic split.
package plugin

// Kind is the closed set of descriptor kinds the plugin manager tracks.
type Kind int

const (
	LoaderDescriptor Kind = iota
	DetourDescriptor
	SerialDescriptor
)

func (k Kind) String() string {
	switch k {
	case LoaderDescriptor:
		return "loader"
	case DetourDescriptor:
		return "detour"
	case SerialDescriptor:
		return "serial"
	default:
		return "unknown"
	}
}

// Singleton returns the interface table a descriptor's symbol resolves to.
// It is called at most once per descriptor, the first time the manager
// initializes it, exactly mirroring the original's
// "*_impl_interface_singleton" getter pattern (lazy, memoized, one
// instance per process).
type Singleton func() (interface{}, error)

// Descriptor names one pluggable component: which shared library it lives
// in (empty for built-ins registered directly by Go code), which symbol
// names its interface table, the Singleton that resolves it, and which
// other descriptors (by Name) it depends on.
type Descriptor struct {
	Name         string
	Kind         Kind
	LibraryPath  string
	Symbol       string
	Dependencies []string
	Singleton    Singleton
}
