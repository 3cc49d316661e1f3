package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrInvalidRecipient indicates a delivery record was requested without a
	// notification or recipient identifier. This is a programming error in
	// the caller, not a delivery failure.
	ErrInvalidRecipient = errors.New("missing notification or recipient identifier")

	// ErrInvalidChannel indicates an unknown delivery channel was requested.
	ErrInvalidChannel = errors.New("invalid delivery channel")

	// ErrInvalidEvent indicates a notification event failed validation.
	ErrInvalidEvent = errors.New("invalid notification event")
)

// ValidationError reports which field of an input failed validation and why.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
