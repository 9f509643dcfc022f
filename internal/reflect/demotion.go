package reflect

import "math"

// Demote narrows a numeric value down its ladder (long -> int -> short ->
// char, double -> float). Unlike Promote this is range-checked: when the
// source value does not fit in the target width the specification calls
// for a Null result rather than silent truncation (§4.3: "narrowing casts
// that would lose information produce Null instead of wrapping").
func Demote(v *Value, target TypeID) *Value {
	if v.b.id == target {
		return v.Copy()
	}
	switch {
	case v.b.id.Integer() && target.Integer():
		return demoteInteger(v, target)
	case v.b.id.Decimal() && target.Decimal():
		return demoteDecimal(v, target)
	default:
		return v.Copy()
	}
}

func demoteInteger(v *Value, target TypeID) *Value {
	if integerWidth[target] > integerWidth[v.b.id] {
		return v.Copy()
	}
	n := asInt64(v)
	switch target {
	case Char:
		if n < math.MinInt8 || n > math.MaxInt8 {
			return ValueNull()
		}
		return ValueChar(int8(n))
	case Short:
		if n < math.MinInt16 || n > math.MaxInt16 {
			return ValueNull()
		}
		return ValueShort(int16(n))
	case Int:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return ValueNull()
		}
		return ValueInt(int32(n))
	}
	return v.Copy()
}

func demoteDecimal(v *Value, target TypeID) *Value {
	if decimalWidth[target] > decimalWidth[v.b.id] {
		return v.Copy()
	}
	f := asFloat64(v)
	if target == Float {
		if f != 0 && (math.Abs(f) > math.MaxFloat32 || math.Abs(f) < math.SmallestNonzeroFloat32) {
			return ValueNull()
		}
		return ValueFloat(float32(f))
	}
	return v.Copy()
}
