// Package apperr defines the error taxonomy shared by every bounded context.
//
// Errors carry a Kind that adapters map to transport status codes. Comparison
// with errors.Is matches on Kind, so sentinel values declared in domain
// packages can be wrapped freely with fmt.Errorf("...: %w").
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for propagation and transport mapping.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindDuplicate      Kind = "duplicate_invitation"
	KindAuthentication Kind = "authentication"
	KindGateway        Kind = "gateway"
	KindStorage        Kind = "storage"
	KindConflict       Kind = "conflict"
	KindInternal       Kind = "internal"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same kind and message. A target with an
// empty message matches any error of its kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Kind sentinels for errors.Is checks against a whole category.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrDuplicate      = &Error{Kind: KindDuplicate}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrGateway        = &Error{Kind: KindGateway}
	ErrStorage        = &Error{Kind: KindStorage}
	ErrConflict       = &Error{Kind: KindConflict}
)

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around a cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Validation(message string) *Error     { return New(KindValidation, message) }
func NotFound(message string) *Error       { return New(KindNotFound, message) }
func Duplicate(message string) *Error      { return New(KindDuplicate, message) }
func Authentication(message string) *Error { return New(KindAuthentication, message) }
func Conflict(message string) *Error       { return New(KindConflict, message) }

// Gateway wraps a payment provider failure.
func Gateway(message string, cause error) *Error {
	return Wrap(KindGateway, message, cause)
}

// Storage wraps a persistence failure.
func Storage(message string, cause error) *Error {
	return Wrap(KindStorage, message, cause)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns a message safe to show to callers.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindStorage && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "internal server error"
}

// HTTPStatus maps a kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicate, KindConflict:
		return http.StatusConflict
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
