package reflect

import "fmt"

// Visibility mirrors reflect_class_visibility.h's class_visibility_id:
// the three access levels a loader can attach to a class member.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
)

// String renders the visibility the way class_visibility_string does.
func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return "unknown"
	}
}

// Attribute is a named, typed class member. Get/Set are optional back-end
// accessors; an Attribute with neither is metadata-only (discoverable but
// not readable/writable through the reflection layer).
type Attribute struct {
	name       string
	typ        *Type
	visibility Visibility
	get        func(obj *Object) (*Value, error)
	set        func(obj *Object, v *Value) error
}

// NewAttribute creates an Attribute.
func NewAttribute(name string, t *Type, visibility Visibility) *Attribute {
	return &Attribute{name: name, typ: t, visibility: visibility}
}

// WithAccessors attaches the back-end get/set closures.
func (a *Attribute) WithAccessors(get func(*Object) (*Value, error), set func(*Object, *Value) error) *Attribute {
	a.get, a.set = get, set
	return a
}

func (a *Attribute) Name() string             { return a.name }
func (a *Attribute) Type() *Type               { return a.typ }
func (a *Attribute) Visibility() Visibility    { return a.visibility }

// Get reads the attribute off obj.
func (a *Attribute) Get(obj *Object) (*Value, error) {
	if a.get == nil {
		return nil, fmt.Errorf("reflect: attribute %q is not readable", a.name)
	}
	return a.get(obj)
}

// Set writes the attribute on obj.
func (a *Attribute) Set(obj *Object, v *Value) error {
	if a.set == nil {
		return fmt.Errorf("reflect: attribute %q is not writable", a.name)
	}
	return a.set(obj, v)
}

// Method is a named, callable class member bound to a receiving Object.
type Method struct {
	name       string
	sig        *Signature
	visibility Visibility
	invoke     func(obj *Object, args []*Value) (*Value, error)
}

// NewMethod creates a Method backed by invoke.
func NewMethod(name string, sig *Signature, visibility Visibility, invoke func(*Object, []*Value) (*Value, error)) *Method {
	return &Method{name: name, sig: sig, visibility: visibility, invoke: invoke}
}

func (m *Method) Name() string            { return m.name }
func (m *Method) Signature() *Signature    { return m.sig }
func (m *Method) Visibility() Visibility   { return m.visibility }

// Call invokes the method with obj bound as the receiver.
func (m *Method) Call(obj *Object, args []*Value) (*Value, error) {
	return m.invoke(obj, args)
}

// Constructor builds a new Object instance. Grounded on
// reflect_constructor.h's constructor_create/constructor_compare pair.
type Constructor struct {
	sig        *Signature
	visibility Visibility
	construct  func(args []*Value) (interface{}, error)
}

// NewConstructor creates a Constructor of the given parameter arity.
func NewConstructor(count int, visibility Visibility, construct func(args []*Value) (interface{}, error)) *Constructor {
	return &Constructor{sig: NewSignature(count), visibility: visibility, construct: construct}
}

func (c *Constructor) Signature() *Signature  { return c.sig }
func (c *Constructor) Visibility() Visibility { return c.visibility }

// Compare reports whether ids (the runtime argument types at a call site)
// match this constructor's declared parameter arity and types exactly,
// mirroring constructor_compare's strict arg/type array comparison.
func (c *Constructor) Compare(ids []TypeID) bool {
	if len(ids) != c.sig.Count() {
		return false
	}
	for i, id := range ids {
		if t := c.sig.ParamType(i); t != nil && t.ID() != id {
			return false
		}
	}
	return true
}

// Class is a named collection of attributes, methods and constructors
// discovered by a loader, and the factory for Object instances of it.
type Class struct {
	name        string
	attrs       map[string]*Attribute
	attrOrder   []string
	methods     map[string]*Method
	methodOrder []string
	ctors       []*Constructor
}

// NewClass creates an empty, named class.
func NewClass(name string) *Class {
	return &Class{
		name:    name,
		attrs:   make(map[string]*Attribute),
		methods: make(map[string]*Method),
	}
}

func (c *Class) Name() string { return c.name }

// DefineAttribute registers a. Redefining a name replaces the prior
// attribute rather than erroring, matching loaders that re-discover a
// class after an incremental reload.
func (c *Class) DefineAttribute(a *Attribute) {
	if _, exists := c.attrs[a.name]; !exists {
		c.attrOrder = append(c.attrOrder, a.name)
	}
	c.attrs[a.name] = a
}

// Attribute looks up a defined attribute by name.
func (c *Class) Attribute(name string) (*Attribute, bool) {
	a, ok := c.attrs[name]
	return a, ok
}

// Attributes returns every attribute in definition order.
func (c *Class) Attributes() []*Attribute {
	out := make([]*Attribute, len(c.attrOrder))
	for i, n := range c.attrOrder {
		out[i] = c.attrs[n]
	}
	return out
}

// DefineMethod registers m.
func (c *Class) DefineMethod(m *Method) {
	if _, exists := c.methods[m.name]; !exists {
		c.methodOrder = append(c.methodOrder, m.name)
	}
	c.methods[m.name] = m
}

// Method looks up a defined method by name.
func (c *Class) Method(name string) (*Method, bool) {
	m, ok := c.methods[name]
	return m, ok
}

// Methods returns every method in definition order.
func (c *Class) Methods() []*Method {
	out := make([]*Method, len(c.methodOrder))
	for i, n := range c.methodOrder {
		out[i] = c.methods[n]
	}
	return out
}

// AddConstructor registers an overload of the class's constructor.
func (c *Class) AddConstructor(ctor *Constructor) {
	c.ctors = append(c.ctors, ctor)
}

// ResolveConstructor finds the overload whose declared parameters match
// argIDs exactly, preferring the first declared match (constructor
// overload resolution is declaration-order, not best-fit, in the original
// reflect library).
func (c *Class) ResolveConstructor(argIDs []TypeID) (*Constructor, bool) {
	for _, ctor := range c.ctors {
		if ctor.Compare(argIDs) {
			return ctor, true
		}
	}
	return nil, false
}

// New constructs an Object of this class using the constructor overload
// matching args' runtime types.
func (c *Class) New(args []*Value) (*Object, error) {
	ids := make([]TypeID, len(args))
	for i, a := range args {
		ids[i] = a.ID()
	}
	ctor, ok := c.ResolveConstructor(ids)
	if !ok {
		return nil, fmt.Errorf("reflect: class %q has no constructor matching argument types %v", c.name, ids)
	}
	data, err := ctor.construct(args)
	if err != nil {
		return nil, err
	}
	return NewObject(c, data), nil
}
