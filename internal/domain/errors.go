package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code and message.
// This lets wrapped copies of the sentinel errors below match with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithCause returns a copy of e carrying err as its cause.
func (e *DomainError) WithCause(err error) *DomainError {
	return NewDomainErrorWithCause(e.Code, e.Message, err)
}

// IsCode reports whether err, or any error it wraps, is a DomainError with code.
func IsCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Common domain error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeAlreadyExists     = "ALREADY_EXISTS"
	ErrCodeConnectivity      = "CONNECTIVITY_ERROR"
	ErrCodeCapabilityMissing = "CAPABILITY_MISSING"
	ErrCodeQuery             = "QUERY_ERROR"
)

// Validation errors
var (
	ErrInvalidObjectID      = NewDomainError(ErrCodeValidation, "invalid object id")
	ErrInvalidDataStoreType = NewDomainError(ErrCodeValidation, "invalid data store type")
	ErrEmptyVector          = NewDomainError(ErrCodeValidation, "embedding vector is empty")
	ErrInvalidVectorValue   = NewDomainError(ErrCodeValidation, "embedding vector contains NaN or infinite values")
	ErrVectorTooLarge       = NewDomainError(ErrCodeValidation, "embedding vector exceeds the maximum dimensions")
	ErrDimensionMismatch    = NewDomainError(ErrCodeValidation, "embedding vector dimensions do not match")
	ErrZeroVector           = NewDomainError(ErrCodeValidation, "vector has zero magnitude")
	ErrInvalidLimit         = NewDomainError(ErrCodeValidation, "result limit must be at least 1")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Store errors
var (
	ErrEmbeddingNotFound      = NewDomainError(ErrCodeNotFound, "embedding not found")
	ErrEmbeddingAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "embedding for chunk already exists")
	ErrStoreUnavailable       = NewDomainError(ErrCodeConnectivity, "embedding store unreachable")
	ErrVectorCapability       = NewDomainError(ErrCodeCapabilityMissing, "vector capability is not available")
	ErrQueryFailed            = NewDomainError(ErrCodeQuery, "embedding store rejected the query")
)
