// Package engine holds the lifecycle rules for recurring household
// obligations: completing and rotating tasks, and activating, settling and
// paying bills.
//
// Functions here are pure. They mutate the entities they are handed and return
// any derived records; loading, persisting and transaction boundaries belong to
// the caller.
package engine

import (
	"errors"
	"fmt"

	"github.com/mmynk/roommates/internal/frequency"
)

var (
	// ErrInvalidFrequency is returned for malformed recurrence codes.
	ErrInvalidFrequency = frequency.ErrInvalidFrequency

	// ErrNoParticipants is returned when activating a bill nobody shares.
	ErrNoParticipants = errors.New("bill has no participants")

	// ErrCycleNotFound is returned when paying a share that does not exist in
	// the bill's open period.
	ErrCycleNotFound = errors.New("bill cycle not found")

	// ErrValidationFailed is returned when an entity violates a field invariant.
	ErrValidationFailed = errors.New("validation failed")

	// ErrInvalidTransition is returned when an operation is not allowed in the
	// entity's current state.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// ValidationError names the offending field of a failed validation.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s %s", ErrValidationFailed.Error(), e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

func invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
