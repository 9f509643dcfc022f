package mockloader

import (
	"testing"

	"github.com/gometacall/gometacall/internal/reflect"
)

func discover(t *testing.T, source string) *reflect.Context {
	t.Helper()
	l := New()
	if err := l.Initialize(nil); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	state, err := l.LoadFromMemory("test", source)
	if err != nil {
		t.Fatalf("LoadFromMemory: %v", err)
	}
	ctx, err := l.Discover(state)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	return ctx
}

func callLong(t *testing.T, ctx *reflect.Context, name string, args ...*reflect.Value) int64 {
	t.Helper()
	raw, ok := ctx.Scope().Get(name)
	if !ok {
		t.Fatalf("function %q not discovered", name)
	}
	fn := raw.(*reflect.Value).FunctionValue()
	result, err := fn.Call(args)
	if err != nil {
		t.Fatalf("calling %q: %v", name, err)
	}
	return result.Long()
}

func TestDiscoversArithmeticFunction(t *testing.T) {
	ctx := discover(t, "mul(left, right) = left * right")
	got := callLong(t, ctx, "mul", reflect.ValueLong(6), reflect.ValueLong(7))
	if got != 42 {
		t.Fatalf("mul(6, 7) = %d, want 42", got)
	}
}

func TestMultipleDeclarationsAndOperators(t *testing.T) {
	ctx := discover(t, "add(a, b) = a + b\nsub(a, b) = a - b\ndiv(a, b) = a / b")
	if got := callLong(t, ctx, "add", reflect.ValueLong(3), reflect.ValueLong(4)); got != 7 {
		t.Errorf("add = %d, want 7", got)
	}
	if got := callLong(t, ctx, "sub", reflect.ValueLong(10), reflect.ValueLong(4)); got != 6 {
		t.Errorf("sub = %d, want 6", got)
	}
	if got := callLong(t, ctx, "div", reflect.ValueLong(20), reflect.ValueLong(5)); got != 4 {
		t.Errorf("div = %d, want 4", got)
	}
}

func TestDivisionByZeroErrors(t *testing.T) {
	ctx := discover(t, "div(a, b) = a / b")
	raw, _ := ctx.Scope().Get("div")
	fn := raw.(*reflect.Value).FunctionValue()
	_, err := fn.Call([]*reflect.Value{reflect.ValueLong(1), reflect.ValueLong(0)})
	if err == nil {
		t.Fatalf("expected a division-by-zero error")
	}
}

func TestMalformedDeclarationFailsToLoad(t *testing.T) {
	l := New()
	if err := l.Initialize(nil); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, err := l.LoadFromMemory("bad", "not a valid declaration"); err == nil {
		t.Fatalf("expected a parse error for a malformed declaration")
	}
}

func TestArityMismatchOnCall(t *testing.T) {
	ctx := discover(t, "id(n) = n")
	raw, _ := ctx.Scope().Get("id")
	fn := raw.(*reflect.Value).FunctionValue()
	_, err := fn.Call(nil)
	if err == nil {
		t.Fatalf("expected an arity error calling id() with no arguments")
	}
}
