// Package domain holds the error taxonomy shared by handlers and storage.
package domain

import (
	"errors"
	"fmt"
)

// ErrAccessDenied indicates a non-privileged identity attempted an admin action.
var ErrAccessDenied = errors.New("access denied")

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports user input rejected before any mutation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s", e.Reason)
}

// Code identifies the error class for structured logging.
func (e *ValidationError) Code() string { return "VALIDATION" }

// NewValidationError builds a ValidationError with the given reason.
func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

// StorageFault wraps an infrastructure failure from the persistence layer.
// Faults are retryable from the caller's point of view; the failed operation
// left no partial state behind.
type StorageFault struct {
	Op  string
	Err error
}

func (e *StorageFault) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageFault) Unwrap() error { return e.Err }

// Code identifies the error class for structured logging.
func (e *StorageFault) Code() string { return "STORAGE_FAULT" }

// Retryable marks the fault as a transient infrastructure error.
func (e *StorageFault) Retryable() bool { return true }

// NewStorageFault wraps err with the failing operation name.
func NewStorageFault(op string, err error) error {
	return &StorageFault{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStorageFault reports whether err is a StorageFault.
func IsStorageFault(err error) bool {
	var sf *StorageFault
	return errors.As(err, &sf)
}
