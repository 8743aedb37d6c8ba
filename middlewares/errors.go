package middlewares

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/husca/internal/slot"
)

// Sentinel errors for middleware configuration.
var (
	// ErrEmptySecret is the panic value of JWT when no signing secret is given.
	ErrEmptySecret = errors.New("middlewares: empty JWT secret")

	// ErrNilFS is the panic value of Static when no file system is given.
	ErrNilFS = errors.New("middlewares: nil file system")
)

// PanicError represents a recovered panic.
// Panics are turned into this error by the slot composer.
type PanicError = slot.PanicError

// TimeoutError represents a request timeout.
type TimeoutError struct {
	Duration time.Duration // The timeout that was exceeded
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

// IsPanicError returns true if the error is a PanicError.
func IsPanicError(err error) bool {
	_, ok := slot.AsPanicError(err)
	return ok
}

// IsTimeoutError returns true if the error is a TimeoutError.
func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	return slot.AsPanicError(err)
}

// AsTimeoutError extracts the TimeoutError from an error if present.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
