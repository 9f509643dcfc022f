package reflect

import (
	"fmt"
	stdreflect "reflect"
	"strconv"
	"strings"
	"sync/atomic"
)

// MapEntry is one key/value pair inside a Map-typed Value. Order is
// preserved as inserted but carries no semantic meaning, matching the
// specification's "ordering is otherwise unspecified" note on Map values.
type MapEntry struct {
	Key   *Value
	Value *Value
}

// box is the heap-allocated shared storage behind a Value. Two Value
// handles produced by Copy alias the same box, so bumping the refcount is
// genuinely cheap (an atomic add) rather than a structural clone — see
// DESIGN.md for why this interpretation of value_copy was chosen over a
// literal deep-copy-on-every-call reading.
type box struct {
	id       TypeID
	data     interface{}
	refcount atomic.Int64
	// release is invoked exactly once, when refcount transitions to zero,
	// to free any back-end-owned resource the value wraps (e.g. a foreign
	// GC handle pinned by a loader). It is optional.
	release func()
}

// Value is a reference-counted, dynamically-typed unit of data exchanged
// across the polyglot call boundary (§3). It is always obtained through one
// of the Value* constructors and must be released with Destroy once the
// owner no longer needs it.
type Value struct {
	b *box
}

func newValue(id TypeID, data interface{}) *Value {
	b := &box{id: id, data: data}
	b.refcount.Store(1)
	return &Value{b: b}
}

// ValueBool creates a Bool-typed value.
func ValueBool(v bool) *Value { return newValue(Bool, v) }

// ValueChar creates a Char-typed value (a one-byte signed integer, matching
// the narrowest rung of the integer promotion ladder).
func ValueChar(v int8) *Value { return newValue(Char, v) }

// ValueShort creates a Short-typed value.
func ValueShort(v int16) *Value { return newValue(Short, v) }

// ValueInt creates an Int-typed value.
func ValueInt(v int32) *Value { return newValue(Int, v) }

// ValueLong creates a Long-typed value.
func ValueLong(v int64) *Value { return newValue(Long, v) }

// ValueFloat creates a Float-typed value.
func ValueFloat(v float32) *Value { return newValue(Float, v) }

// ValueDouble creates a Double-typed value.
func ValueDouble(v float64) *Value { return newValue(Double, v) }

// ValueString creates a String-typed value.
func ValueString(v string) *Value { return newValue(String, v) }

// ValueBuffer creates a Buffer-typed value. buf is taken by reference, not
// copied; callers that need isolation should copy before constructing.
func ValueBuffer(buf []byte) *Value { return newValue(Buffer, buf) }

// ValueArray creates an Array-typed value owning elems. Ownership of each
// element transfers to the array: destroying the array destroys its
// children (§3 invariant: "decrementing to zero runs a recursive destructor
// that releases any owned children exactly once").
func ValueArray(elems []*Value) *Value { return newValue(Array, elems) }

// ValueMap creates a Map-typed value owning entries.
func ValueMap(entries []MapEntry) *Value { return newValue(Map, entries) }

// ValuePointer creates a Pointer-typed value. gometacall never dereferences
// or owns the pointee; it is an opaque handle round-tripped on the caller's
// behalf (§3: "Pointer values are opaque handles with no owning semantics").
func ValuePointer(p interface{}) *Value { return newValue(Pointer, p) }

// ValueNull creates the singleton-shaped Null value.
func ValueNull() *Value { return newValue(Null, nil) }

// ValueFuture wraps f as a Future-typed value.
func ValueFuture(f *Future) *Value { return newValue(Future, f) }

// ValueFunction wraps fn as a Function-typed value (a first-class
// reference to a callable, as returned by metacall_function).
func ValueFunction(fn *Function) *Value { return newValue(Function, fn) }

// ValueClass wraps c as a Class-typed value.
func ValueClass(c *Class) *Value { return newValue(Class, c) }

// ValueObject wraps o as an Object-typed value.
func ValueObject(o *Object) *Value { return newValue(Object, o) }

// ValueException wraps e as an Exception-typed value.
func ValueException(e *Exception) *Value { return newValue(Exception, e) }

// ValueThrowable wraps inner as a Throwable-typed value: the in-band
// channel a back-end uses to signal "this call raised", per §4.9's
// "exceptions and throwables travel back as ordinary return values". inner
// is typically an Exception value but the specification allows any value
// to be thrown.
//
// Wrapping a value that is already a Throwable flattens it instead of
// nesting: the new Throwable takes ownership of the inner throwable's
// payload directly, so throwables never recurse (§8: "wrapping a throwable
// in a throwable never nests").
func ValueThrowable(inner *Value) *Value {
	if inner == nil {
		return newValue(Throwable, ValueNull())
	}
	if inner.b.id == Throwable {
		payload := inner.b.data.(*Value).Copy()
		inner.Destroy()
		return newValue(Throwable, payload)
	}
	return newValue(Throwable, inner)
}

// ID returns the value's discriminant. Stable for the lifetime of the
// value (§3 invariant: "once created, a value's type-id is stable").
func (v *Value) ID() TypeID { return v.b.id }

// RefCount returns the current reference count, primarily for tests
// asserting the refcount-monotonicity property (§8).
func (v *Value) RefCount() int64 { return v.b.refcount.Load() }

// Copy increments the shared refcount and returns a handle aliasing the
// same underlying storage. Mutating the payload of one alias is visible
// through the other — exactly the shared-ownership semantics the
// specification's refcount invariants describe.
func (v *Value) Copy() *Value {
	v.b.refcount.Add(1)
	return &Value{b: v.b}
}

// Destroy decrements the refcount. At zero it recursively destroys owned
// children (Array elements, Map entries, a wrapped Throwable payload) and
// invokes the release callback, if any, exactly once.
func (v *Value) Destroy() {
	if v.b.refcount.Add(-1) > 0 {
		return
	}
	switch v.b.id {
	case Array:
		for _, child := range v.b.data.([]*Value) {
			child.Destroy()
		}
	case Map:
		for _, entry := range v.b.data.([]MapEntry) {
			entry.Key.Destroy()
			entry.Value.Destroy()
		}
	case Throwable:
		v.b.data.(*Value).Destroy()
	}
	if v.b.release != nil {
		v.b.release()
	}
}

// WithRelease attaches a release callback invoked when the value's refcount
// reaches zero. Used by loaders that pin a foreign GC handle for the
// lifetime of a Value (e.g. a Python PyObject* or a yaegi reflect.Value).
func (v *Value) WithRelease(release func()) *Value {
	v.b.release = release
	return v
}

// --- type-checked accessors ---

// IsBool reports whether the value holds a Bool.
func (v *Value) IsBool() bool { return v.b.id == Bool }

// IsChar reports whether the value holds a Char.
func (v *Value) IsChar() bool { return v.b.id == Char }

// IsShort reports whether the value holds a Short.
func (v *Value) IsShort() bool { return v.b.id == Short }

// IsInt reports whether the value holds an Int.
func (v *Value) IsInt() bool { return v.b.id == Int }

// IsLong reports whether the value holds a Long.
func (v *Value) IsLong() bool { return v.b.id == Long }

// IsFloat reports whether the value holds a Float.
func (v *Value) IsFloat() bool { return v.b.id == Float }

// IsDouble reports whether the value holds a Double.
func (v *Value) IsDouble() bool { return v.b.id == Double }

// IsString reports whether the value holds a String.
func (v *Value) IsString() bool { return v.b.id == String }

// IsBuffer reports whether the value holds a Buffer.
func (v *Value) IsBuffer() bool { return v.b.id == Buffer }

// IsArray reports whether the value holds an Array.
func (v *Value) IsArray() bool { return v.b.id == Array }

// IsMap reports whether the value holds a Map.
func (v *Value) IsMap() bool { return v.b.id == Map }

// IsPointer reports whether the value holds a Pointer.
func (v *Value) IsPointer() bool { return v.b.id == Pointer }

// IsFuture reports whether the value holds a Future.
func (v *Value) IsFuture() bool { return v.b.id == Future }

// IsFunction reports whether the value holds a Function.
func (v *Value) IsFunction() bool { return v.b.id == Function }

// IsNull reports whether the value holds Null.
func (v *Value) IsNull() bool { return v.b.id == Null }

// IsClass reports whether the value holds a Class.
func (v *Value) IsClass() bool { return v.b.id == Class }

// IsObject reports whether the value holds an Object.
func (v *Value) IsObject() bool { return v.b.id == Object }

// IsException reports whether the value holds an Exception.
func (v *Value) IsException() bool { return v.b.id == Exception }

// IsThrowable reports whether the value holds a Throwable.
func (v *Value) IsThrowable() bool { return v.b.id == Throwable }

func (v *Value) mustBe(id TypeID) {
	if v.b.id != id {
		panic(fmt.Sprintf("reflect: value is %s, not %s", v.b.id, id))
	}
}

// Bool returns the boolean payload. Panics if the value is not a Bool —
// callers that cannot guarantee the type should check Is* first, the same
// contract metacall_value_to_bool places on its caller.
func (v *Value) Bool() bool { v.mustBe(Bool); return v.b.data.(bool) }

// Char returns the char payload.
func (v *Value) Char() int8 { v.mustBe(Char); return v.b.data.(int8) }

// Short returns the short payload.
func (v *Value) Short() int16 { v.mustBe(Short); return v.b.data.(int16) }

// Int returns the int payload.
func (v *Value) Int() int32 { v.mustBe(Int); return v.b.data.(int32) }

// Long returns the long payload.
func (v *Value) Long() int64 { v.mustBe(Long); return v.b.data.(int64) }

// Float returns the float payload.
func (v *Value) Float() float32 { v.mustBe(Float); return v.b.data.(float32) }

// Double returns the double payload.
func (v *Value) Double() float64 { v.mustBe(Double); return v.b.data.(float64) }

// String returns the string payload.
func (v *Value) String() string { v.mustBe(String); return v.b.data.(string) }

// Buffer returns the buffer payload.
func (v *Value) Buffer() []byte { v.mustBe(Buffer); return v.b.data.([]byte) }

// Array returns the array's element handles, still owned by v.
func (v *Value) Array() []*Value { v.mustBe(Array); return v.b.data.([]*Value) }

// Map returns the map's entries, still owned by v.
func (v *Value) Map() []MapEntry { v.mustBe(Map); return v.b.data.([]MapEntry) }

// Pointer returns the opaque pointer payload.
func (v *Value) Pointer() interface{} { v.mustBe(Pointer); return v.b.data }

// FutureValue returns the wrapped Future.
func (v *Value) FutureValue() *Future { v.mustBe(Future); return v.b.data.(*Future) }

// FunctionValue returns the wrapped Function.
func (v *Value) FunctionValue() *Function { v.mustBe(Function); return v.b.data.(*Function) }

// ClassValue returns the wrapped Class.
func (v *Value) ClassValue() *Class { v.mustBe(Class); return v.b.data.(*Class) }

// ObjectValue returns the wrapped Object.
func (v *Value) ObjectValue() *Object { v.mustBe(Object); return v.b.data.(*Object) }

// ExceptionValue returns the wrapped Exception.
func (v *Value) ExceptionValue() *Exception { v.mustBe(Exception); return v.b.data.(*Exception) }

// ThrowablePayload returns the value wrapped by a Throwable, still owned by
// v (per §4.9, unwrapping it is how a caller recovers the raised value).
func (v *Value) ThrowablePayload() *Value { v.mustBe(Throwable); return v.b.data.(*Value) }

// Stringify renders the value in the specification's language-neutral
// textual form (§4.2): booleans as true/false, integers in base 10,
// floats %f-equivalent, strings verbatim, pointers as hex, arrays as
// "[e0,e1,...]", maps as "{k0:v0,...}", null as the literal "null". It
// is not a serialization format; see internal/serial for that.
func (v *Value) Stringify() string {
	switch v.b.id {
	case Null:
		return "null"
	case Bool:
		return strconv.FormatBool(v.b.data.(bool))
	case Char:
		return strconv.FormatInt(int64(v.b.data.(int8)), 10)
	case Short:
		return strconv.FormatInt(int64(v.b.data.(int16)), 10)
	case Int:
		return strconv.FormatInt(int64(v.b.data.(int32)), 10)
	case Long:
		return strconv.FormatInt(v.b.data.(int64), 10)
	case Float:
		return strconv.FormatFloat(float64(v.b.data.(float32)), 'f', -1, 32)
	case Double:
		return strconv.FormatFloat(v.b.data.(float64), 'f', -1, 64)
	case String:
		return v.b.data.(string)
	case Buffer:
		return fmt.Sprintf("0x%x", v.b.data.([]byte))
	case Pointer:
		return fmt.Sprintf("%#016x", reflectValuePointer(v.b.data))
	case Array:
		elems := v.b.data.([]*Value)
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = e.Stringify()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case Map:
		entries := v.b.data.([]MapEntry)
		parts := make([]string, len(entries))
		for i, e := range entries {
			parts[i] = e.Key.Stringify() + ":" + e.Value.Stringify()
		}
		return "{" + strings.Join(parts, ",") + "}"
	case Throwable:
		return fmt.Sprintf("throwable(%s)", v.b.data.(*Value).Stringify())
	case Function:
		return fmt.Sprintf("function(%s)", v.b.data.(*Function).Name())
	case Class:
		return fmt.Sprintf("class(%s)", v.b.data.(*Class).Name())
	case Object:
		return fmt.Sprintf("object(%s)", v.b.data.(*Object).Class().Name())
	case Exception:
		return fmt.Sprintf("exception(%s)", v.b.data.(*Exception).Error())
	case Future:
		return "future"
	default:
		return fmt.Sprintf("%v", v.b.data)
	}
}

// reflectValuePointer reduces an opaque Pointer payload to a uintptr for
// hex rendering, matching whatever width the platform's pointers are.
// Payloads that are not themselves pointer-shaped (a loader is free to
// box any Go value as an opaque Pointer) fall back to their boxed
// address instead of panicking.
func reflectValuePointer(data interface{}) uintptr {
	rv := stdreflect.ValueOf(data)
	switch rv.Kind() {
	case stdreflect.Ptr, stdreflect.UnsafePointer, stdreflect.Chan, stdreflect.Map, stdreflect.Func, stdreflect.Slice:
		return rv.Pointer()
	default:
		return stdreflect.ValueOf(&data).Pointer()
	}
}
