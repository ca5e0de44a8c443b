package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity or input fails validation.
	// This is usually wrapped by a ValidationError naming the offending field.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPassword is returned when a password doesn't meet requirements.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrEmptyTitle is returned when a memory or reminder title is blank.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrInvalidTriggerDate is returned when a reminder trigger date cannot be parsed.
	ErrInvalidTriggerDate = errors.New("invalid trigger date format")

	// ErrInvalidText is returned when a text field contains a NUL character,
	// which PostgreSQL cannot store.
	ErrInvalidText = errors.New("text contains NUL character")
)

// validateText rejects values PostgreSQL text columns cannot hold.
func validateText(field string, values ...string) error {
	for _, v := range values {
		if strings.ContainsRune(v, 0) {
			return NewValidationError(field, "Text cannot contain NUL characters", ErrInvalidText)
		}
	}
	return nil
}

// ValidationError describes a single failed field check. It matches
// ErrValidation with errors.Is regardless of the wrapped cause.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports ErrValidation for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for field with a message that
// is safe to show to API clients.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
