package slot

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNextCalledMultipleTimes is returned when a body calls its continuation more than once.
	ErrNextCalledMultipleTimes = errors.New("slot: continuation invoked multiple times")

	// ErrTargetMismatch is returned when a slot is loaded into a set of an incompatible target.
	ErrTargetMismatch = errors.New("slot: target mismatch")

	// ErrUnsupportedCondition is returned when a path, extension or method
	// condition is installed on a non-web slot.
	ErrUnsupportedCondition = errors.New("slot: condition is only supported by web slots")

	// ErrNilBody is returned when a slot is created without a body.
	ErrNilBody = errors.New("slot: nil body")

	// ErrInvalidTarget is returned for a target value outside the known set.
	ErrInvalidTarget = errors.New("slot: invalid target")
)

// PanicError is the error a dispatch fails with when a body panics.
type PanicError struct {
	Value any    // The panic value
	Stack []byte // Stack trace of the panicking goroutine
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
