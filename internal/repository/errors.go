package repository

import (
	"errors"
	"fmt"
	"strings"

	"exercises/internal/validator"
)

var (
	// ErrNotFound is returned by FindByID when no exercise has the requested ID.
	ErrNotFound = errors.New("exercise not found")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// FieldIssue is a single invalid input.
type FieldIssue = validator.FieldError

// ValidationError reports input rejected at the repository boundary.
type ValidationError struct {
	Issues []FieldIssue
}

// NewValidationError builds a ValidationError from issues.
func NewValidationError(issues ...FieldIssue) *ValidationError {
	return &ValidationError{Issues: issues}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		msgs = append(msgs, is.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(msgs, "; "))
}

// Is reports ErrValidation as a match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StoreError wraps a failure reported by the underlying store driver.
type StoreError struct {
	Op  string
	Err error
}

// NewStoreError wraps err for operation op. It returns nil if err is nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err is, or wraps, a *StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
