package booking

import (
	"errors"
	"fmt"
)

// ErrorType classifies engine errors.
type ErrorType string

const (
	ErrNotFound     ErrorType = "not_found"
	ErrInvalidInput ErrorType = "invalid_input"
)

// Error is the value-level error returned across component boundaries.
// Validation errors carry the offending field so API layers can translate
// them into field-level messages.
type Error struct {
	Type    ErrorType
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %s: %v", e.Type, e.Field, e.Message, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Field, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError reports malformed input on a named field.
func NewValidationError(field, message string) *Error {
	return &Error{Type: ErrInvalidInput, Field: field, Message: message}
}

// NewNotFoundError reports referenced data the caller failed to supply.
func NewNotFoundError(message string) *Error {
	return &Error{Type: ErrNotFound, Message: message}
}

// IsValidation reports whether err is an invalid-input error.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == ErrInvalidInput
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == ErrNotFound
}
