package reflect

// Exception carries a back-end error's identity across the call boundary:
// message, label (the back-end's exception class/type name), a numeric
// code, and a stack trace string. Grounded on reflect_exception.h's
// exception_create(message, label, code, stacktrace) — the refcounting
// exception_increment_reference/decrement_reference pair is subsumed here
// by wrapping the Exception in a Value (ValueException), which already
// carries a refcount.
type Exception struct {
	Message    string
	Label      string
	Code       int64
	Stacktrace string
}

// NewException creates an Exception with the given fields.
func NewException(message, label string, code int64, stacktrace string) *Exception {
	return &Exception{Message: message, Label: label, Code: code, Stacktrace: stacktrace}
}

// Error implements the error interface so an Exception can be propagated
// through ordinary Go error returns when a loader surfaces it outside the
// in-band Throwable channel (e.g. from Discover).
func (e *Exception) Error() string {
	if e.Label != "" {
		return e.Label + ": " + e.Message
	}
	return e.Message
}
