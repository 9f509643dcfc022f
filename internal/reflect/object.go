package reflect

// Object is an instance of a Class. It carries a back-reference to its
// Class purely for dispatch (attribute/method lookup); the reference is a
// plain pointer rather than a refcounted one, because — unlike the C
// original, where klass and object both manage their own reference counts
// and a cycle between them has to be broken by hand — Go's garbage
// collector already handles the object/class cycle for free, so there is
// nothing to make "weak" here beyond simply not wrapping it in a Value
// (see DESIGN.md on dropping manual weak-reference bookkeeping).
type Object struct {
	class *Class
	data  interface{}
}

// NewObject creates an Object of class wrapping the loader-owned native
// instance data.
func NewObject(class *Class, data interface{}) *Object {
	return &Object{class: class, data: data}
}

// Class returns the object's class.
func (o *Object) Class() *Class { return o.class }

// Data returns the loader-owned native instance handle.
func (o *Object) Data() interface{} { return o.data }

// Get reads attribute name off the object via its class's accessor.
func (o *Object) Get(name string) (*Value, error) {
	attr, ok := o.class.Attribute(name)
	if !ok {
		return nil, classMemberError(o.class.Name(), "attribute", name)
	}
	return attr.Get(o)
}

// Set writes attribute name on the object via its class's accessor.
func (o *Object) Set(name string, v *Value) error {
	attr, ok := o.class.Attribute(name)
	if !ok {
		return classMemberError(o.class.Name(), "attribute", name)
	}
	return attr.Set(o, v)
}

// Call invokes method name on the object.
func (o *Object) Call(name string, args []*Value) (*Value, error) {
	m, ok := o.class.Method(name)
	if !ok {
		return nil, classMemberError(o.class.Name(), "method", name)
	}
	return m.Call(o, args)
}

func classMemberError(class, kind, name string) error {
	return &memberNotFoundError{class: class, kind: kind, name: name}
}

type memberNotFoundError struct {
	class, kind, name string
}

func (e *memberNotFoundError) Error() string {
	return "reflect: class " + e.class + " has no " + e.kind + " " + e.name
}
