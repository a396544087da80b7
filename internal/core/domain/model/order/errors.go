package order

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalTransition matches TransitionError values of kind TransitionIllegal.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrGuardFailed matches TransitionError values of kind TransitionGuardFailed.
	ErrGuardFailed = errors.New("transition guard failed")
)

// TransitionErrorKind separates table violations from failed business guards.
type TransitionErrorKind string

const (
	TransitionIllegal     TransitionErrorKind = "illegal_transition"
	TransitionGuardFailed TransitionErrorKind = "guard_failed"
)

// TransitionError is returned when a status change is rejected. It is safe to
// show Message to API callers.
type TransitionError struct {
	Kind    TransitionErrorKind
	From    Status
	To      Status
	Message string
}

// NewIllegalTransitionError reports a target outside the allowed set of from.
func NewIllegalTransitionError(from, to Status) *TransitionError {
	return &TransitionError{
		Kind:    TransitionIllegal,
		From:    from,
		To:      to,
		Message: fmt.Sprintf("cannot transition order from %s to %s", from, to),
	}
}

// NewGuardFailedError reports a business invariant that does not hold.
func NewGuardFailedError(from, to Status, message string) *TransitionError {
	return &TransitionError{
		Kind:    TransitionGuardFailed,
		From:    from,
		To:      to,
		Message: message,
	}
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s", e.sentinel(), e.Message)
}

func (e *TransitionError) Unwrap() error {
	return e.sentinel()
}

func (e *TransitionError) sentinel() error {
	if e.Kind == TransitionGuardFailed {
		return ErrGuardFailed
	}
	return ErrIllegalTransition
}
