// Package descriptor contains pure functions for decoding and projecting
// deployment descriptors. This is part of the Functional Core - no I/O.
package descriptor

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Input errors
	ErrEmptyInput        = errors.New("descriptor is empty")
	ErrInvalidSyntax     = errors.New("invalid descriptor syntax")
	ErrNotAMapping       = errors.New("descriptor must be a mapping")
	ErrUnsupportedFormat = errors.New("unsupported descriptor format")

	// Field shape errors
	ErrMalformedField = errors.New("malformed descriptor field")
)

// ParseError wraps decoding errors with the format being decoded.
type ParseError struct {
	Format  Format
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("%s: %s", e.Format, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(format Format, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		Message: message,
		Err:     err,
	}
}

// FieldError reports a descriptor field whose shape cannot be projected.
type FieldError struct {
	Field   string // e.g., "environment", "args[2]"
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return ErrMalformedField
}

// NewFieldError creates a new FieldError.
func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}
