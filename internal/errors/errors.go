package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode classifies an AppError.
type ErrorCode string

const (
	ErrUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE" // 503
	ErrValidation          ErrorCode = "VALIDATION_FAILED"    // 400
	ErrNotFound            ErrorCode = "NOT_FOUND"            // 404
	ErrInternal            ErrorCode = "INTERNAL"             // 500
)

// AppError is an error with an HTTP status and a client-facing body.
// Message is rendered as "error" and Details as "details".
type AppError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details any
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewUpstreamUnavailable creates a 503 naming the upstreams that could not be fetched.
func NewUpstreamUnavailable(sources ...string) *AppError {
	details := "Could not fetch data from external APIs"
	if len(sources) > 0 {
		details = "Could not fetch data from " + strings.Join(sources, " and ")
	}
	return &AppError{
		Code:    ErrUpstreamUnavailable,
		Status:  503,
		Message: "External data source unavailable",
		Details: details,
	}
}

// NewValidation creates a 400 with field-level details.
func NewValidation(fields map[string]string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Status:  400,
		Message: "Validation failed",
		Details: fields,
	}
}

// NewNotFound creates a 404 for a missing resource, e.g. "Country".
func NewNotFound(resource string) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Status:  404,
		Message: resource + " not found",
	}
}

// NewInternal wraps an unexpected error. The cause is never sent to clients.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Status:  500,
		Message: "Internal server error",
		Err:     err,
	}
}

// Is reports whether err is, or wraps, an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// As extracts the AppError carried by err, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}
