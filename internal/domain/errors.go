package domain

import (
	"errors"
	"fmt"
)

// ValidationError means a required field is missing or mistyped. The request
// is rejected before any signature verification happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// SignatureError means the supplied signature did not match the expected
// one, or the timestamp fell outside the freshness window. The protocol
// response body is suppressed; the ledger is never touched.
type SignatureError struct {
	Reason string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("signature verification failed: %s", e.Reason)
}

// TransientStorageError means the idempotency ledger was unreachable or
// timed out. The delivery is neither first-seen nor duplicate; the caller
// must surface a failure so the processor retries.
type TransientStorageError struct {
	Op  string
	Err error
}

func (e *TransientStorageError) Error() string {
	return fmt.Sprintf("transient storage error in %s: %v", e.Op, e.Err)
}

func (e *TransientStorageError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is (or wraps) a TransientStorageError.
func IsTransient(err error) bool {
	var tse *TransientStorageError
	return errors.As(err, &tse)
}
