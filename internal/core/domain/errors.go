package domain

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden = errors.New("access forbidden")
	ErrNotFound  = errors.New("not found")

	ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)
	ErrTeacherNotFound = fmt.Errorf("teacher %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)

	ErrAlreadyParticipating = errors.New("user already participates in session")
	ErrNotParticipating     = errors.New("user does not participate in session")

	ErrValidation = errors.New("validation failed")

	// ErrSessionBusy reports that a per-session or per-user lock could not be
	// acquired within the configured wait budget.
	ErrSessionBusy = errors.New("session is busy")
)

// ValidationError reports a single malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets callers match any ValidationError with errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
