package metacall

import (
	"context"

	"github.com/gometacall/gometacall/internal/apperr"
	"github.com/gometacall/gometacall/internal/reflect"
)

// ErrorLast returns ctx's last recorded error, or nil if the scope is
// clean — §4.9's metacall_error_last.
func (r *Runtime) ErrorLast(ctx context.Context) *apperr.Error {
	return r.errors.Last(ctx)
}

// ErrorClear clears ctx's last-error slot — metacall_error_clear.
func (r *Runtime) ErrorClear(ctx context.Context) {
	r.errors.Clear(ctx)
}

// ErrorFromValue flattens a Throwable- or Exception-shaped Value into an
// *apperr.Error, the bridge between a back-end's in-band thrown value
// and the runtime's out-of-band last-error slot (§4.9: "a thrown value
// can be promoted to the last-error state"). Returns nil for a value
// that carries no exception.
func ErrorFromValue(v *reflect.Value) *apperr.Error {
	if v == nil {
		return nil
	}
	if v.IsThrowable() {
		v = v.ThrowablePayload()
	}
	if !v.IsException() {
		return nil
	}
	exc := v.ExceptionValue()
	return apperr.Wrap(apperr.BackEndError, "function raised "+exc.Label, exc)
}

// ErrorFromValueInto flattens v's exception (if any) directly into ctx's
// last-error slot, for call sites that received a Throwable result from
// Call and want it to surface exactly like a returned error would.
func (r *Runtime) ErrorFromValueInto(ctx context.Context, v *reflect.Value) *apperr.Error {
	ae := ErrorFromValue(v)
	if ae != nil {
		r.errors.Set(ctx, ae)
	}
	return ae
}
