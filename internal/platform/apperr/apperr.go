// Copyright (c) 2026 Trailforge. All rights reserved.

/*
Package apperr defines the centralized error handling framework for Trailforge.

It provides the operational-error type that bridges the gap between low-level
domain/storage failures and high-level HTTP responses.

Architecture:

  - AppError: an anticipated, user-facing failure carrying an HTTP status and
    a client-safe message. Its Status tag follows the API convention:
    "fail" for 4xx responses, "error" for 5xx.
  - Mapping: explicit constructors for every taxonomy entry (validation,
    authentication, authorization, not-found, conflict, internal).

Every error that leaves the service layer should be wrapped as an [AppError].
Anything else is treated as an unexpected programmer error: logged in full
server-side and reduced to a generic 500 in production.
*/
package apperr

import (
	"errors"
	"net/http"
)

// AppError is the canonical operational error type for the Trailforge API.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to
// clients in production, to avoid leaking internal implementation details.
type AppError struct {
	// Status is the envelope tag: "fail" for client errors, "error" for server errors.
	Status string `json:"status"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"msg"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for 400 responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// New creates an operational error with an explicit message and HTTP status.
// The envelope status tag is derived from the code class.
func New(message string, httpStatus int) *AppError {
	return &AppError{
		Status:     statusTag(httpStatus),
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] with the given message.
func NotFound(message string) *AppError {
	return New(message, http.StatusNotFound)
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(message string) *AppError {
	return New(message, http.StatusUnauthorized)
}

// Forbidden creates a 403 [AppError].
func Forbidden(message string) *AppError {
	return New(message, http.StatusForbidden)
}

// BadRequest creates a 400 [AppError].
//
// Duplicate-key conflicts are reported through this constructor as well:
// the API surfaces uniqueness violations as 400, not 409.
func BadRequest(message string) *AppError {
	return New(message, http.StatusBadRequest)
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(message string, details ...FieldError) *AppError {
	appError := New(message, http.StatusBadRequest)
	appError.Details = details
	return appError
}

// TooManyRequests creates a 429 [AppError].
func TooManyRequests(message string) *AppError {
	return New(message, http.StatusTooManyRequests)
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client in production.
func Internal(cause error) *AppError {
	appError := New("Something went wrong !", http.StatusInternalServerError)
	appError.Cause = cause
	return appError
}

// InternalMessage creates a 500 [AppError] with an explicit client-facing
// message (used when the failure itself is operational, e.g. the outbound
// email transport being down).
func InternalMessage(message string, cause error) *AppError {
	appError := New(message, http.StatusInternalServerError)
	appError.Cause = cause
	return appError
}

// # Helpers

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// statusTag maps an HTTP status code to the envelope status word.
func statusTag(httpStatus int) string {
	if httpStatus >= 400 && httpStatus < 500 {
		return "fail"
	}
	return "error"
}
