package reflect

// Signature is a fixed-arity parameter list plus a return type, owned by
// whichever Function it describes. Grounded on reflect_signature.h's
// signature_create/signature_set/signature_get_* trio, generalized from a
// pre-sized C array to a Go slice.
type Signature struct {
	params []param
	ret    *Type
}

type param struct {
	name string
	typ  *Type
}

// NewSignature creates a signature for a function taking count parameters.
// Each parameter must be named via Set before the signature is usable.
func NewSignature(count int) *Signature {
	return &Signature{params: make([]param, count)}
}

// Count returns the parameter arity.
func (s *Signature) Count() int { return len(s.params) }

// Set names parameter index and assigns its type.
func (s *Signature) Set(index int, name string, t *Type) {
	s.params[index] = param{name: name, typ: t}
}

// SetReturn assigns the signature's return type. A nil return type means
// the function is declared untyped/void at the loader boundary.
func (s *Signature) SetReturn(t *Type) { s.ret = t }

// Name returns the name of parameter index.
func (s *Signature) Name(index int) string { return s.params[index].name }

// ParamType returns the type of parameter index, or nil if the loader
// never declared one (duck-typed back-ends leave this nil and rely on
// runtime value inspection instead).
func (s *Signature) ParamType(index int) *Type { return s.params[index].typ }

// Return returns the declared return type, or nil.
func (s *Signature) Return() *Type { return s.ret }

// IndexOf returns the index of the parameter named name, or -1.
func (s *Signature) IndexOf(name string) int {
	for i, p := range s.params {
		if p.name == name {
			return i
		}
	}
	return -1
}
