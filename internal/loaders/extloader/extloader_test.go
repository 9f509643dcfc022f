package extloader

import (
	"testing"

	"github.com/gometacall/gometacall/internal/reflect"
)

func TestSumExportRegistersAndCalls(t *testing.T) {
	Register("test-arith", Sum())

	l := New()
	state, err := l.LoadFromMemory("test-arith", "")
	if err != nil {
		t.Fatalf("LoadFromMemory: %v", err)
	}

	ctx, err := l.Discover(state)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	raw, ok := ctx.Scope().Get("sum")
	if !ok {
		t.Fatalf("sum not discovered")
	}
	fn := raw.(*reflect.Value).FunctionValue()

	result, err := fn.Call([]*reflect.Value{reflect.ValueLong(2), reflect.ValueLong(3)})
	if err != nil {
		t.Fatalf("calling sum: %v", err)
	}
	if result.Long() != 5 {
		t.Fatalf("sum(2, 3) = %d, want 5", result.Long())
	}
}

func TestResolveUnknownPackageNotFound(t *testing.T) {
	l := New()
	if _, err := l.LoadFromMemory("never-registered", ""); err == nil {
		t.Fatalf("expected an error resolving an unregistered extension package")
	}
}

func TestRegisterAccumulatesAcrossCalls(t *testing.T) {
	Register("test-accum", Sum())
	Register("test-accum", Export{
		Name:      "noop",
		Signature: reflect.NewSignature(0),
		Invoke:    func(args []*reflect.Value) (*reflect.Value, error) { return reflect.ValueNull(), nil },
	})

	l := New()
	state, err := l.LoadFromFile([]string{"test-accum"})
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	ctx, err := l.Discover(state)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if _, ok := ctx.Scope().Get("sum"); !ok {
		t.Errorf("expected sum to still be registered")
	}
	if _, ok := ctx.Scope().Get("noop"); !ok {
		t.Errorf("expected noop to be registered alongside sum")
	}
}
