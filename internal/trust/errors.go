package trust

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an action is illegal from the
	// entity's current state.  Handlers translate it into HTTP 409.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrValidation is returned for missing or malformed input such as an
	// empty reason or an expiry in the past.  Handlers translate it into 400.
	ErrValidation = errors.New("validation failed")
)

// TransitionError names the operation and the precondition it failed.
// It unwraps to ErrInvalidTransition or ErrValidation.
type TransitionError struct {
	Op           string
	Precondition string
	kind         error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Op, e.kind, e.Precondition)
}

func (e *TransitionError) Unwrap() error { return e.kind }

func invalid(op, format string, args ...any) error {
	return &TransitionError{Op: op, Precondition: fmt.Sprintf(format, args...), kind: ErrInvalidTransition}
}

func validation(op, format string, args ...any) error {
	return &TransitionError{Op: op, Precondition: fmt.Sprintf(format, args...), kind: ErrValidation}
}
