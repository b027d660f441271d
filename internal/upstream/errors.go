package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnavailable matches every failure to reach or use a remote service.
var ErrUnavailable = errors.New("upstream unavailable")

// Error is a non-2xx response from a remote service.
type Error struct {
	Service    string
	Operation  string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: status %d: %s", e.Service, e.Operation, e.StatusCode, e.Message)
}

// Is makes errors.Is(err, ErrUnavailable) hold for every *Error.
func (e *Error) Is(target error) bool {
	return target == ErrUnavailable
}

// HasStatusCode reports whether err is an *Error with the given status.
func HasStatusCode(err error, code int) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == code
}

// IsNotFound reports whether err is a 404 from a remote service.
func IsNotFound(err error) bool {
	return HasStatusCode(err, http.StatusNotFound)
}

// IsUnauthorized reports whether the remote service rejected the credentials.
func IsUnauthorized(err error) bool {
	return HasStatusCode(err, http.StatusUnauthorized) || HasStatusCode(err, http.StatusForbidden)
}

type transportError struct {
	op  string
	err error
}

func (e *transportError) Error() string { return e.op + ": " + e.err.Error() }
func (e *transportError) Unwrap() []error {
	return []error{e.err, ErrUnavailable}
}
