package vaulterr

import (
	"fmt"
	"net/http"
)

// Kind is the internal discriminant for a vault error. Every
// error that crosses a component boundary in this module is, or wraps,
// a *RelayError carrying one of these kinds.
type Kind string

const (
	KindInvalidInput    Kind = "INVALID_INPUT"
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindNotFound        Kind = "NOT_FOUND"
	KindAlreadyExists   Kind = "ALREADY_EXISTS"
	KindRateLimited     Kind = "RATE_LIMITED"
	KindUpstreamFail    Kind = "UPSTREAM_FAIL"
	KindIntegrityFail   Kind = "INTEGRITY_FAIL"
	KindBackendFail     Kind = "BACKEND_FAIL"
)

// httpStatus is the fixed Kind → HTTP status mapping.
var httpStatus = map[Kind]int{
	KindInvalidInput:    http.StatusBadRequest,
	KindUnauthenticated: http.StatusUnauthorized,
	KindNotFound:        http.StatusNotFound,
	KindAlreadyExists:   http.StatusConflict,
	KindRateLimited:     http.StatusTooManyRequests,
	KindUpstreamFail:    http.StatusBadGateway,
	KindIntegrityFail:   http.StatusInternalServerError,
	KindBackendFail:     http.StatusInternalServerError,
}

// RelayError is the sum-typed error result used at every component
// boundary. Message is the caller-visible string; it MUST
// NOT contain secret material. Internal carries additional detail for
// logging only and is never serialized to a response.
type RelayError struct {
	Kind     Kind
	Message  string
	Internal error
}

func (e *RelayError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RelayError) Unwrap() error {
	return e.Internal
}

// HTTPStatus returns the HTTP status code this error's kind maps to.
func (e *RelayError) HTTPStatus() int {
	if status, ok := httpStatus[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// New builds a RelayError with no wrapped internal error.
func New(kind Kind, message string) *RelayError {
	return &RelayError{Kind: kind, Message: message}
}

// Wrap builds a RelayError carrying an internal error for out-of-band
// logging. The internal error's text MUST NOT be sent to the caller.
func Wrap(kind Kind, message string, internal error) *RelayError {
	return &RelayError{Kind: kind, Message: message, Internal: internal}
}

// As reports whether err is, or wraps, a *RelayError and returns it.
func As(err error) (*RelayError, bool) {
	re, ok := err.(*RelayError)
	if ok {
		return re, true
	}
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		return As(u.Unwrap())
	}
	return nil, false
}
