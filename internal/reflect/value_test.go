package reflect

import "testing"

func TestValueRefcountMonotonic(t *testing.T) {
	v := ValueLong(42)
	if got := v.RefCount(); got != 1 {
		t.Fatalf("fresh value refcount = %d, want 1", got)
	}

	alias := v.Copy()
	if got := v.RefCount(); got != 2 {
		t.Fatalf("after Copy refcount = %d, want 2", got)
	}
	if alias.ID() != v.ID() || alias.Long() != v.Long() {
		t.Fatalf("copy does not alias the same data")
	}

	alias.Destroy()
	if got := v.RefCount(); got != 1 {
		t.Fatalf("after one Destroy refcount = %d, want 1", got)
	}

	v.Destroy()
}

func TestValueDestroyReleaseCalledOnce(t *testing.T) {
	released := 0
	v := ValueString("hello").WithRelease(func() { released++ })
	alias := v.Copy()

	alias.Destroy()
	if released != 0 {
		t.Fatalf("release called before refcount hit zero")
	}
	v.Destroy()
	if released != 1 {
		t.Fatalf("release called %d times, want 1", released)
	}
}

func TestValueDestroyRecursesIntoContainers(t *testing.T) {
	var childReleased, elemReleased int
	child := ValueLong(1).WithRelease(func() { childReleased++ })
	elem := ValueLong(2).WithRelease(func() { elemReleased++ })

	arr := ValueArray([]*Value{elem})
	m := ValueMap([]MapEntry{{Key: ValueString("k"), Value: child}})

	arr.Destroy()
	m.Destroy()

	if elemReleased != 1 {
		t.Fatalf("array element not released, got %d", elemReleased)
	}
	if childReleased != 1 {
		t.Fatalf("map value not released, got %d", childReleased)
	}
}

func TestValueThrowableNeverNests(t *testing.T) {
	inner := ValueLong(7)
	once := ValueThrowable(inner)
	twice := ValueThrowable(once)

	if !twice.IsThrowable() {
		t.Fatalf("wrapping a throwable must still be a throwable")
	}
	payload := twice.ThrowablePayload()
	if payload.IsThrowable() {
		t.Fatalf("throwable-in-throwable must flatten, got nested throwable")
	}
	if payload.Long() != 7 {
		t.Fatalf("flattened payload = %v, want the original inner value", payload)
	}
	twice.Destroy()
}

func TestTypeIDPredicates(t *testing.T) {
	tests := []struct {
		id      TypeID
		integer bool
		decimal bool
	}{
		{Char, true, false},
		{Short, true, false},
		{Int, true, false},
		{Long, true, false},
		{Float, false, true},
		{Double, false, true},
		{String, false, false},
		{Bool, false, false},
	}
	for _, tt := range tests {
		if got := tt.id.Integer(); got != tt.integer {
			t.Errorf("%s.Integer() = %v, want %v", tt.id, got, tt.integer)
		}
		if got := tt.id.Decimal(); got != tt.decimal {
			t.Errorf("%s.Decimal() = %v, want %v", tt.id, got, tt.decimal)
		}
	}
}
