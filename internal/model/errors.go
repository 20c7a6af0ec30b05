package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("username not found")
	ErrAlreadyExists         = errors.New("username already exists")
	ErrWrongPassword         = errors.New("incorrect password")
	ErrNotAuthenticated      = errors.New("not authenticated")
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	ErrStorage               = errors.New("storage failure")
)

// ValidationError reports invalid user input rejected before reaching the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
