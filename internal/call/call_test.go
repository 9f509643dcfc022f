package call_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gometacall/gometacall/internal/call"
	"github.com/gometacall/gometacall/internal/loader"
	"github.com/gometacall/gometacall/internal/loaders/goloader"
	"github.com/gometacall/gometacall/internal/loaders/mockloader"
	"github.com/gometacall/gometacall/internal/reflect"
)

func newPipeline(t *testing.T, source string) (*call.Pipeline, *loader.Manager) {
	t.Helper()
	m := loader.NewManager()
	m.RegisterFactory("mock", mockloader.New)
	_, err := m.LoadFromMemory("mock", "arith", source)
	require.NoError(t, err)
	return call.NewPipeline(m.Host()), m
}

func TestMetacallvByName(t *testing.T) {
	p, _ := newPipeline(t, "mul(left, right) = left * right")

	result, err := p.Metacallv("mul", []*reflect.Value{reflect.ValueLong(6), reflect.ValueLong(7)})
	require.NoError(t, err)
	require.True(t, result.IsLong())
	require.Equal(t, int64(42), result.Long())
}

func TestMetacallUnknownFunction(t *testing.T) {
	p, _ := newPipeline(t, "noop(n) = n")
	_, err := p.Metacallv("ghost", nil)
	require.Error(t, err)
}

func TestMetacalltCastsArguments(t *testing.T) {
	p, _ := newPipeline(t, "add(a, b) = a + b")

	result, err := p.Metacallt("add", []reflect.TypeID{reflect.Long, reflect.Long},
		[]*reflect.Value{reflect.ValueInt(3), reflect.ValueChar(4)})
	require.NoError(t, err)
	require.Equal(t, int64(7), result.Long())
}

func TestMetacallArityMismatch(t *testing.T) {
	p, _ := newPipeline(t, "add(a, b) = a + b")
	_, err := p.Metacallv("add", []*reflect.Value{reflect.ValueLong(1)})
	require.Error(t, err)
}

func TestMetacallfmsBindsArgumentsByName(t *testing.T) {
	p, m := newPipeline(t, "sub(a, b) = a - b")
	fn := lookupFunction(t, m, "sub")

	result, err := p.Metacallfms(fn, `{"a": 10, "b": 4}`)
	require.NoError(t, err)
	require.Equal(t, int64(6), result.Long())
}

func TestMetacallfmsMissingArgumentReported(t *testing.T) {
	p, m := newPipeline(t, "sub(a, b) = a - b")
	fn := lookupFunction(t, m, "sub")

	_, err := p.Metacallfms(fn, `{"a": 10}`)
	require.Error(t, err)
}

func lookupFunction(t *testing.T, m *loader.Manager, name string) *reflect.Function {
	t.Helper()
	raw, ok := m.Lookup(name)
	require.True(t, ok)
	v, ok := raw.(*reflect.Value)
	require.True(t, ok)
	return v.FunctionValue()
}

func TestMetacallAwaitWrapsSynchronousResult(t *testing.T) {
	p, _ := newPipeline(t, "double(n) = n * 2")
	result, err := p.MetacallAwait("double", []*reflect.Value{reflect.ValueLong(21)}, nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, int64(42), result.Long())
}

// TestMetacallvBackEndFailureIsThrowable exercises Testable Scenario 3: a
// failure raised by the back end itself (here, mockloader's
// division-by-zero) must come back as an in-band value with type-id
// Throwable wrapping an Exception, not as a Go error.
func TestMetacallvBackEndFailureIsThrowable(t *testing.T) {
	p, _ := newPipeline(t, "divide(a, b) = a / b")

	result, err := p.Metacallv("divide", []*reflect.Value{reflect.ValueLong(1), reflect.ValueLong(0)})
	require.NoError(t, err)
	require.True(t, result.IsThrowable())

	payload := result.ThrowablePayload()
	require.True(t, payload.IsException())
	exc := payload.ExceptionValue()
	require.Contains(t, exc.Message, "division by zero")
}

// TestMetacallAwaitBackEndFailureRejects checks that the same back-end
// failure, reached through the async entry point, settles the future via
// the reject callback rather than resolve.
func TestMetacallAwaitBackEndFailureRejects(t *testing.T) {
	p, _ := newPipeline(t, "divide(a, b) = a / b")

	var rejected bool
	onReject := func(reason *reflect.Value, userData interface{}) *reflect.Value {
		rejected = true
		return reason
	}

	result, err := p.MetacallAwait("divide", []*reflect.Value{reflect.ValueLong(1), reflect.ValueLong(0)}, nil, onReject, nil)
	require.NoError(t, err)
	require.True(t, rejected)
	require.True(t, result.IsThrowable())
}

// TestMetacallvGoBackEndPanicIsThrowable exercises the same contract
// against a real interpreted back end (goloader/yaegi): a Go-level panic
// raised while running the discovered function must reach the caller as
// a Throwable value, not a bare Go error.
func TestMetacallvGoBackEndPanicIsThrowable(t *testing.T) {
	m := loader.NewManager()
	m.RegisterFactory("go", goloader.New)
	_, err := m.LoadFromMemory("go", "arith",
		"package main\n\nfunc Divide(a, b int) int {\n\treturn a / b\n}\n")
	require.NoError(t, err)

	p := call.NewPipeline(m.Host())
	result, err := p.Metacallv("Divide", []*reflect.Value{reflect.ValueLong(1), reflect.ValueLong(0)})
	require.NoError(t, err)
	require.True(t, result.IsThrowable())

	payload := result.ThrowablePayload()
	require.True(t, payload.IsException())
}
