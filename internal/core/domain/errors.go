package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthenticated    = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("access forbidden")
	ErrRequestNotFound    = errors.New("request not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrProfileNotFound    = errors.New("profile not filled in yet")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// ValidationError describes one rejected input field. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// TransitionError explains why a status change was refused. It matches ErrInvalidTransition.
type TransitionError struct {
	From   RequestStatus
	To     RequestStatus
	Reason string
}

func (e *TransitionError) Error() string {
	return e.Reason
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
