// Package call implements the public metacall/metacallv/metacallt/
// metacallfv/metacallfms/metacall_await pipeline (§4.6): name or pointer
// dispatch, arity validation, argument coercion, and invocation through
// the owning loader's affinity-respecting dispatch.
package call

import (
	"strconv"

	"github.com/gometacall/gometacall/internal/apperr"
	"github.com/gometacall/gometacall/internal/reflect"
)

// Cast converts v to target, widening/narrowing numerics via
// reflect.Promote/Demote when both sides are numeric, and otherwise
// applying the small set of cross-kind conversions the metacallt
// type-tagged variant needs (anything->string via Stringify,
// string->number, anything->bool). Kinds with no sensible conversion
// (e.g. Map -> Long, Bool -> Long) report TypeMismatch.
func Cast(v *reflect.Value, target reflect.TypeID) (*reflect.Value, error) {
	if v.ID() == target {
		return v.Copy(), nil
	}

	switch {
	case v.ID().Integer() && target.Integer():
		return castNumericLadder(v, target), nil
	case v.ID().Decimal() && target.Decimal():
		return castNumericLadder(v, target), nil
	case v.ID().Integer() && target.Decimal():
		return decimalFromInt(v, target), nil
	case v.ID().Decimal() && target.Integer():
		return intFromDecimal(v, target), nil
	}

	switch target {
	case reflect.String:
		return reflect.ValueString(v.Stringify()), nil
	case reflect.Bool:
		return reflect.ValueBool(truthy(v)), nil
	}

	if v.ID() == reflect.String {
		return castFromString(v, target)
	}

	return nil, apperr.New(apperr.TypeMismatch, "cannot cast %s to %s", v.ID(), target)
}

func castNumericLadder(v *reflect.Value, target reflect.TypeID) *reflect.Value {
	wider := (v.ID().Integer() && integerWidthOf(target) >= integerWidthOf(v.ID())) ||
		(v.ID().Decimal() && decimalWidthOf(target) >= decimalWidthOf(v.ID()))
	if wider {
		return reflect.Promote(v, target)
	}
	return reflect.Demote(v, target)
}

func integerWidthOf(id reflect.TypeID) int {
	switch id {
	case reflect.Char:
		return 1
	case reflect.Short:
		return 2
	case reflect.Int:
		return 4
	case reflect.Long:
		return 8
	default:
		return 0
	}
}

func decimalWidthOf(id reflect.TypeID) int {
	switch id {
	case reflect.Float:
		return 4
	case reflect.Double:
		return 8
	default:
		return 0
	}
}

func decimalFromInt(v *reflect.Value, target reflect.TypeID) *reflect.Value {
	n := float64(asInt64(v))
	if target == reflect.Double {
		return reflect.ValueDouble(n)
	}
	return reflect.ValueFloat(float32(n))
}

func intFromDecimal(v *reflect.Value, target reflect.TypeID) *reflect.Value {
	n := int64(asFloat64(v))
	switch target {
	case reflect.Char:
		return reflect.ValueChar(int8(n))
	case reflect.Short:
		return reflect.ValueShort(int16(n))
	case reflect.Int:
		return reflect.ValueInt(int32(n))
	default:
		return reflect.ValueLong(n)
	}
}

func castFromString(v *reflect.Value, target reflect.TypeID) (*reflect.Value, error) {
	s := v.String()
	switch {
	case target.Integer():
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, apperr.Wrap(apperr.TypeMismatch, "cannot cast string %q to "+target.String(), err)
		}
		return castNumericLadder(reflect.ValueLong(n), target), nil
	case target.Decimal():
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, apperr.Wrap(apperr.TypeMismatch, "cannot cast string %q to "+target.String(), err)
		}
		if target == reflect.Double {
			return reflect.ValueDouble(f), nil
		}
		return reflect.ValueFloat(float32(f)), nil
	default:
		return nil, apperr.New(apperr.TypeMismatch, "cannot cast string to %s", target)
	}
}

func truthy(v *reflect.Value) bool {
	switch v.ID() {
	case reflect.Bool:
		return v.Bool()
	case reflect.Null:
		return false
	case reflect.String:
		return v.String() != ""
	default:
		if v.ID().Integer() {
			return asInt64(v) != 0
		}
		if v.ID().Decimal() {
			return asFloat64(v) != 0
		}
		return true
	}
}

func asInt64(v *reflect.Value) int64 {
	switch v.ID() {
	case reflect.Char:
		return int64(v.Char())
	case reflect.Short:
		return int64(v.Short())
	case reflect.Int:
		return int64(v.Int())
	case reflect.Long:
		return v.Long()
	default:
		return 0
	}
}

func asFloat64(v *reflect.Value) float64 {
	switch v.ID() {
	case reflect.Float:
		return float64(v.Float())
	case reflect.Double:
		return v.Double()
	default:
		return 0
	}
}
