package reflect

import "testing"

func TestFutureResolvesAndAwaitInvokesResolveCallback(t *testing.T) {
	f := NewFuture(func(resolve func(*Value), reject func(*Value)) {
		resolve(ValueLong(42))
	})

	got := f.Await(
		func(result *Value, _ interface{}) *Value { return ValueLong(result.Long() + 1) },
		func(reason *Value, _ interface{}) *Value { t.Fatalf("reject callback must not run on resolve"); return nil },
		nil,
	)
	if got.Long() != 43 {
		t.Fatalf("Await() = %d, want 43", got.Long())
	}
	if !f.Settled() {
		t.Fatalf("expected the future to report Settled() after Await returns")
	}
}

func TestFutureRejectsAndAwaitInvokesRejectCallback(t *testing.T) {
	f := NewFuture(func(resolve func(*Value), reject func(*Value)) {
		reject(ValueString("failed"))
	})

	got := f.Await(
		func(result *Value, _ interface{}) *Value { t.Fatalf("resolve callback must not run on reject"); return nil },
		func(reason *Value, _ interface{}) *Value { return ValueString(reason.String() + "!") },
		nil,
	)
	if got.String() != "failed!" {
		t.Fatalf("Await() = %q, want %q", got.String(), "failed!")
	}
}

func TestFutureAwaitWithNilCallbacksReturnsRawValue(t *testing.T) {
	f := NewFuture(func(resolve func(*Value), reject func(*Value)) {
		resolve(ValueLong(7))
	})
	got := f.Await(nil, nil, nil)
	if got.Long() != 7 {
		t.Fatalf("Await() = %d, want 7", got.Long())
	}
}

func TestFutureSecondSettleAttemptIsDropped(t *testing.T) {
	settled := make(chan struct{})
	f := NewFuture(func(resolve func(*Value), reject func(*Value)) {
		resolve(ValueLong(1))
		close(settled)
		resolve(ValueLong(2))
	})
	<-settled
	got := f.Await(nil, nil, nil)
	if got.Long() != 1 {
		t.Fatalf("Await() = %d, want 1 (first settle must win)", got.Long())
	}
}

func TestFutureSettledIsFalseBeforeCompletion(t *testing.T) {
	block := make(chan struct{})
	f := NewFuture(func(resolve func(*Value), reject func(*Value)) {
		<-block
		resolve(ValueNull())
	})
	if f.Settled() {
		t.Fatalf("expected Settled() to be false before the settler runs resolve")
	}
	close(block)
	f.Await(nil, nil, nil)
}
