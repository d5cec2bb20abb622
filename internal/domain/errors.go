// Package domain holds the quote slot machine's entities, selection rules
// and error kinds. Nothing here knows about HTTP; adapters map the kinds
// below onto status codes.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every typed error below unwraps to exactly one of them.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict") // e.g. a spin while one is running
	ErrValidation  = errors.New("validation failed")
	ErrUnavailable = errors.New("unavailable") // e.g. the quote catalog failed to load
)

// NotFoundError names a missing entity and, when known, its key.
type NotFoundError struct {
	Entity string
	Key    string
}

// NewNotFoundError returns a NotFoundError.
func NewNotFoundError(entity, key string) error { return &NotFoundError{Entity: entity, Key: key} }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return e.Entity + " not found"
	}

	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// ConflictError reports an operation refused because of current state.
type ConflictError struct {
	Entity string
	Reason string
}

// NewConflictError returns a ConflictError.
func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

func (e *ConflictError) Error() string { return e.Entity + " conflict: " + e.Reason }

// ValidationError carries a message fit to show a user, optionally tied to
// the offending field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError returns a ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}

	return "validation failed for " + e.Field + ": " + e.Message
}

// UnavailableError reports a dependency that cannot serve, such as the quote
// configuration source. Reason is shown to users as is.
type UnavailableError struct {
	Service string
	Reason  string
}

// NewUnavailableError returns an UnavailableError.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("service %q unavailable", e.Service)
	}

	return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
}

// IsNotFound reports whether err is of the not found kind.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err is of the conflict kind.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsValidation reports whether err is of the validation kind.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsUnavailable reports whether err is of the unavailable kind.
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }

// UserMessage returns the text to show a user for err: the message of a
// validation error, the reason of an unavailable error, or err.Error().
func UserMessage(err error) string {
	var (
		v *ValidationError
		u *UnavailableError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &v):
		return v.Message
	case errors.As(err, &u) && u.Reason != "":
		return u.Reason
	default:
		return err.Error()
	}
}
