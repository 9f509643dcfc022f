// Package apperr provides standardized error handling for gometacall.
//
// This mirrors the shape of a typical control-plane error package (one
// machine-readable Kind, a human Message, optional Details, one wrapped
// cause) but trades the HTTP status-code mapping for the closed error-kind
// enum the polyglot call pipeline needs: a failed load, a bad argument, a
// missing function, a back-end exception wrapped verbatim, and so on.
//
// Usage patterns:
//
//	return apperr.NotFound("function", name)
//
//	return apperr.Wrap(apperr.BackEndError, "python raise", err)
//
//	if err := library.Load(); err != nil {
//	    return apperr.New(apperr.LoadFailed, "could not load %s", path)
//	}
package apperr

import "fmt"

// Kind is the closed set of error kinds named in the specification.
type Kind string

const (
	BadArgument         Kind = "BadArgument"
	NotFoundKind        Kind = "NotFound"
	AlreadyExists       Kind = "AlreadyExists"
	LoaderUnavailable   Kind = "LoaderUnavailable"
	LoadFailed          Kind = "LoadFailed"
	DiscoveryFailed     Kind = "DiscoveryFailed"
	ArityMismatch       Kind = "ArityMismatch"
	TypeMismatch        Kind = "TypeMismatch"
	MissingArgument     Kind = "MissingArgument"
	BackEndError        Kind = "BackEndError"
	BufferTooSmall      Kind = "BufferTooSmall"
	CyclicConfiguration Kind = "CyclicConfiguration"
	OutOfMemory         Kind = "OutOfMemory"
	Fatal               Kind = "Fatal"
)

// Error is a standardized application error carrying a closed Kind.
//
// It is the Go rendition of the specification's "return-value errors"
// channel (§4.9): any API that can fail returns one of these (or, for
// in-band exceptions, a *reflect.Value wrapping one — see
// internal/reflect.Throwable).
type Error struct {
	Kind    Kind
	Message string
	Details string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause so errors.Is/errors.As work across the
// loader boundary, which the propagation policy in §7 requires ("the
// original message, label, and stack trace are preserved verbatim inside
// BackEndError").
func (e *Error) Unwrap() error {
	return e.cause
}

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error as the cause of a new Error, preserving its
// message as Details the way the spec's propagation policy requires for
// BackEndError.
func Wrap(kind Kind, message string, cause error) *Error {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &Error{Kind: kind, Message: message, Details: details, cause: cause}
}

// Is reports whether err is an *Error of the given kind, unwrapping through
// any number of wrapping layers.
func Is(err error, kind Kind) bool {
	for err != nil {
		if ae, ok := err.(*Error); ok {
			if ae.Kind == kind {
				return true
			}
			err = ae.cause
			continue
		}
		break
	}
	return false
}

func NotFound(resource, name string) *Error {
	return New(NotFoundKind, "%s %q not found", resource, name)
}

func AlreadyLoaded(tag, name string) *Error {
	return New(AlreadyExists, "%s %q is already loaded under tag %q", "handle", name, tag)
}

func Arity(name string, want, got int) *Error {
	return New(ArityMismatch, "function %q expects %d argument(s), got %d", name, want, got)
}

func Missing(name string) *Error {
	return New(MissingArgument, "missing required argument %q", name)
}

func TooSmall(need, have int) *Error {
	return New(BufferTooSmall, "buffer too small: need %d bytes, have %d", need, have)
}
