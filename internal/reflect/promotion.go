package reflect

// Promote widens a numeric value up its ladder directly to target
// (char -> short -> int -> long, float -> double), always lossless. It is
// the counterpart the cast pipeline reaches for when a loader's signature
// declares a wider parameter type than the argument actually carries
// (§4.3's "implicit widening is always safe and never rejected").
//
// Promoting a value that is already at or above the target width, or is
// not numeric at all, returns v.Copy() unchanged.
func Promote(v *Value, target TypeID) *Value {
	if v.b.id == target {
		return v.Copy()
	}
	switch {
	case v.b.id.Integer() && target.Integer():
		return promoteInteger(v, target)
	case v.b.id.Decimal() && target.Decimal():
		return promoteDecimal(v, target)
	default:
		return v.Copy()
	}
}

func promoteInteger(v *Value, target TypeID) *Value {
	if integerWidth[target] < integerWidth[v.b.id] {
		return v.Copy()
	}
	n := asInt64(v)
	switch target {
	case Char:
		return ValueChar(int8(n))
	case Short:
		return ValueShort(int16(n))
	case Int:
		return ValueInt(int32(n))
	case Long:
		return ValueLong(n)
	}
	return v.Copy()
}

func promoteDecimal(v *Value, target TypeID) *Value {
	if decimalWidth[target] < decimalWidth[v.b.id] {
		return v.Copy()
	}
	f := asFloat64(v)
	if target == Double {
		return ValueDouble(f)
	}
	return ValueFloat(float32(f))
}

func asInt64(v *Value) int64 {
	switch v.b.id {
	case Char:
		return int64(v.b.data.(int8))
	case Short:
		return int64(v.b.data.(int16))
	case Int:
		return int64(v.b.data.(int32))
	case Long:
		return v.b.data.(int64)
	}
	return 0
}

func asFloat64(v *Value) float64 {
	switch v.b.id {
	case Float:
		return float64(v.b.data.(float32))
	case Double:
		return v.b.data.(float64)
	}
	return 0
}
