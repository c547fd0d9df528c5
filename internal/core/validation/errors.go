package validation

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

// Kind identifies which validation rule rejected a descriptor.
type Kind string

const (
	KindMissingField       Kind = "missing_field"
	KindUntrustedSource    Kind = "untrusted_source"
	KindInvalidName        Kind = "invalid_name"
	KindDisallowedArgument Kind = "disallowed_argument"
)

var (
	ErrMissingField       = errors.New("missing required field")
	ErrUntrustedSource    = errors.New("untrusted image source")
	ErrInvalidName        = errors.New("invalid workload name")
	ErrDisallowedArgument = errors.New("disallowed argument")
)

// sentinel maps a Kind to its sentinel error.
func (k Kind) sentinel() error {
	switch k {
	case KindMissingField:
		return ErrMissingField
	case KindUntrustedSource:
		return ErrUntrustedSource
	case KindInvalidName:
		return ErrInvalidName
	case KindDisallowedArgument:
		return ErrDisallowedArgument
	default:
		return nil
	}
}

// Error is a caller-correctable validation failure.
type Error struct {
	Kind   Kind
	Field  string // e.g., "image", "args[2]"
	Reason string // caller-facing message
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

// NewError creates a new validation Error.
func NewError(kind Kind, field, reason string) *Error {
	return &Error{Kind: kind, Field: field, Reason: reason}
}

// MissingField reports an absent or empty required field.
func MissingField(field string) *Error {
	return NewError(KindMissingField, field, "Missing required field: "+field)
}

// UntrustedSource reports an image outside the trusted registry.
func UntrustedSource() *Error {
	return NewError(KindUntrustedSource, "image", "Image must be from trusted registry")
}

// InvalidName reports a workload name outside [A-Za-z0-9_-].
func InvalidName() *Error {
	return NewError(KindInvalidName, "name", "Invalid container name format")
}

// DisallowedArgument reports an args token rejected by the policy.
func DisallowedArgument(field, reason string) *Error {
	return NewError(KindDisallowedArgument, field, reason)
}
