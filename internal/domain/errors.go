package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies engine failures for transport mapping.
type ErrorCode string

const (
	CodeValidation          ErrorCode = "VALIDATION_ERROR"
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	CodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// Error is the coded error type used across the pipeline. Validation and
// not-found errors are terminal; upstream errors are absorbed by fallback
// paths before they reach a caller.
type Error struct {
	Code    ErrorCode
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError reports malformed, missing, or out-of-range input.
func NewValidationError(field, message string) *Error {
	return &Error{Code: CodeValidation, Field: field, Message: message}
}

// NewNotFoundError reports an absent referenced entity.
func NewNotFoundError(kind, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %q not found", kind, id)}
}

// NewUpstreamError reports a failed call to an external collaborator.
func NewUpstreamError(message string, err error) *Error {
	return &Error{Code: CodeUpstreamUnavailable, Message: message, Err: err}
}

// NewInternalError wraps an unexpected failure with a generic message.
func NewInternalError(message string, err error) *Error {
	return &Error{Code: CodeInternal, Message: message, Err: err}
}

// CodeOf extracts the error code from err, defaulting to CodeInternal.
func CodeOf(err error) ErrorCode {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return CodeOf(err) == CodeValidation
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}
