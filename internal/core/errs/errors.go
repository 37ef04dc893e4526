// Package errs defines the typed errors shared by the account, location and
// activity services.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError represents invalid caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a validation error (including wrapped errors)
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// ConflictError represents a unique constraint or duplicate resource error
type ConflictError struct {
	Field   string
	Message string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Field, e.Message)
}

func NewConflictError(field, message string) ConflictError {
	return ConflictError{Field: field, Message: message}
}

func IsConflictError(err error) bool {
	var ce ConflictError
	return errors.As(err, &ce)
}

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Field   string
	Message string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("not found %s: %s", e.Field, e.Message)
}

func NewNotFoundError(field, message string) NotFoundError {
	return NotFoundError{Field: field, Message: message}
}

func IsNotFoundError(err error) bool {
	var ne NotFoundError
	return errors.As(err, &ne)
}

// ForbiddenError is returned when the caller may not act on a resource it does not own.
type ForbiddenError struct {
	Message string
}

func (e ForbiddenError) Error() string { return "forbidden: " + e.Message }

func NewForbiddenError(message string) ForbiddenError { return ForbiddenError{Message: message} }

func IsForbiddenError(err error) bool {
	var fe ForbiddenError
	return errors.As(err, &fe)
}

// UnauthenticatedError is returned when a caller identity is required but missing or wrong.
type UnauthenticatedError struct {
	Message string
}

func (e UnauthenticatedError) Error() string { return "unauthenticated: " + e.Message }

func NewUnauthenticatedError(message string) UnauthenticatedError {
	return UnauthenticatedError{Message: message}
}

func IsUnauthenticatedError(err error) bool {
	var ue UnauthenticatedError
	return errors.As(err, &ue)
}
