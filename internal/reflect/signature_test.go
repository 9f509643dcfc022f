package reflect

import "testing"

func TestSignatureSetAndLookup(t *testing.T) {
	sig := NewSignature(2)
	sig.Set(0, "a", Primitive(Long))
	sig.Set(1, "b", Primitive(String))
	sig.SetReturn(Primitive(Bool))

	if sig.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", sig.Count())
	}
	if sig.Name(0) != "a" || sig.Name(1) != "b" {
		t.Fatalf("unexpected parameter names: %q, %q", sig.Name(0), sig.Name(1))
	}
	if sig.ParamType(0).ID() != Long || sig.ParamType(1).ID() != String {
		t.Fatalf("unexpected parameter types")
	}
	if sig.Return().ID() != Bool {
		t.Fatalf("unexpected return type")
	}
}

func TestSignatureIndexOf(t *testing.T) {
	sig := NewSignature(3)
	sig.Set(0, "x", nil)
	sig.Set(1, "y", nil)
	sig.Set(2, "z", nil)

	if got := sig.IndexOf("y"); got != 1 {
		t.Fatalf("IndexOf(y) = %d, want 1", got)
	}
	if got := sig.IndexOf("missing"); got != -1 {
		t.Fatalf("IndexOf(missing) = %d, want -1", got)
	}
}

func TestSignatureUntypedParamsAndReturn(t *testing.T) {
	sig := NewSignature(1)
	sig.Set(0, "n", nil)

	if sig.ParamType(0) != nil {
		t.Fatalf("expected a nil param type for an undeclared parameter")
	}
	if sig.Return() != nil {
		t.Fatalf("expected a nil return type when SetReturn was never called")
	}
}
