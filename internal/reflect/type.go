// Package reflect implements gometacall's language-neutral reflection and
// value model: the Type/Value/Signature/Function/Class/Object/Exception/
// Future/Context machinery every loader back-end plugs into.
//
// Grounded in metacall/core's reflect component (source/reflect/source/
// {type,reflect_value,signature,function,context,reflect_class_visibility,
// reflect_future,reflect_throwable}.c) but rendered with Go's native
// interfaces and an explicit atomic refcount rather than hand-rolled C
// structs of function pointers (see DESIGN.md: "table-driven polymorphism
// via vtables").
package reflect

import "fmt"

// TypeID is the closed discriminant set a Value's discriminant is drawn
// from, per the specification's data model (§3).
type TypeID int

const (
	Invalid TypeID = iota
	Bool
	Char
	Short
	Int
	Long
	Float
	Double
	String
	Buffer
	Array
	Map
	Pointer
	Future
	Function
	Null
	Class
	Object
	Exception
	Throwable
)

var typeNames = [...]string{
	Invalid:   "invalid",
	Bool:      "bool",
	Char:      "char",
	Short:     "short",
	Int:       "int",
	Long:      "long",
	Float:     "float",
	Double:    "double",
	String:    "string",
	Buffer:    "buffer",
	Array:     "array",
	Map:       "map",
	Pointer:   "pointer",
	Future:    "future",
	Function:  "function",
	Null:      "null",
	Class:     "class",
	Object:    "object",
	Exception: "exception",
	Throwable: "throwable",
}

// String renders the type id using its stringify name, e.g. "long".
func (id TypeID) String() string {
	if id < 0 || int(id) >= len(typeNames) || typeNames[id] == "" {
		return fmt.Sprintf("typeid(%d)", int(id))
	}
	return typeNames[id]
}

// Integer reports whether the id is one of the integer-family primitives
// that participate in numeric promotion/demotion (char < short < int < long).
func (id TypeID) Integer() bool {
	switch id {
	case Char, Short, Int, Long:
		return true
	}
	return false
}

// Decimal reports whether the id is one of the float-family primitives
// that participate in numeric promotion/demotion (float < double).
func (id TypeID) Decimal() bool {
	return id == Float || id == Double
}

// integerWidth and decimalWidth give the byte widths used to decide
// promotion (narrower -> wider, lossless) versus demotion (wider ->
// narrower, range-checked) ordering. They mirror
// original_source/source/reflect/source/reflect_value_type_id_size.c's
// table without needing the C sizeof() indirection.
var integerWidth = map[TypeID]int{Char: 1, Short: 2, Int: 4, Long: 8}
var decimalWidth = map[TypeID]int{Float: 4, Double: 8}

// Type is a named polymorphic descriptor with a discriminant and an
// optional opaque back-end payload carrying the language-specific native
// type reference (§3: "Types are created by loaders at discovery time and
// owned by the context that discovered them.").
type Type struct {
	id   TypeID
	name string
	impl interface{}
}

// NewType creates a Type. impl carries the loader's native type reference
// and may be nil for types with no back-end-specific representation.
func NewType(id TypeID, name string, impl interface{}) *Type {
	return &Type{id: id, name: name, impl: impl}
}

// ID returns the type's discriminant.
func (t *Type) ID() TypeID { return t.id }

// Name returns the type's declared name (may differ from TypeID.String()
// when a loader names a class or alias type, e.g. "MyClass" for a Class
// type whose ID is Class).
func (t *Type) Name() string { return t.name }

// Impl returns the loader-owned opaque back-end payload, or nil.
func (t *Type) Impl() interface{} { return t.impl }

// Primitive returns a newly allocated Type for one of the built-in
// discriminants (everything except Class/Object, which are always
// loader-specific). Mirrors type_primitive() from the original reflect
// library, generalized to the specification's wider discriminant set.
func Primitive(id TypeID) *Type {
	return NewType(id, id.String(), nil)
}
