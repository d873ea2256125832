package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of business error categories. Transport codes are
// derived from the kind at the handler boundary, never stored on rows.
type Kind int8

const (
	KindValidation Kind = iota
	KindScopeDenied
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindScopeDenied:
		return "scope_denied"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

// Error is a business-rule failure with a stable kind and a caller-facing
// message. Wrapped causes stay available through errors.Unwrap.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the kind to the HTTP status the transport layer should use.
func (e *Error) Status() int {
	switch e.Kind {
	case KindScopeDenied:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func ScopeDenied(format string, args ...any) *Error {
	return &Error{Kind: KindScopeDenied, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a tenant-scoped row that does not exist. Every entity uses
// this uniformly; there is no 400-for-missing-row variant.
func NotFound(entity string, id fmt.Stringer) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// As unwraps err into an *Error if one is in the chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
