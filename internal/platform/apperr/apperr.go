// Copyright (c) 2026 Murof. All rights reserved.

/*
Package apperr defines the centralized error handling framework for the Murof API.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Security: Distinct internal causes are deliberately collapsed into generic
    external errors on the authentication paths (login, registration, reset),
    preventing enumeration and oracle attacks.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type for the Murof API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries, token
// parsing failures).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "INVALID_TOKEN").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
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

// # Generic Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("User") // Returns "User not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// Unprocessable creates a 422 [AppError] for semantically invalid input.
func Unprocessable(msg string) *AppError {
	return &AppError{
		Code:       "UNPROCESSABLE",
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// # Authentication Errors

// InvalidCredentials creates the single generic 401 returned for ANY failed
// login attempt.
//
// # Security
//
// "No such identity" and "wrong password" must be indistinguishable to the
// caller. Always construct this error through this function so the response
// body stays byte-identical across both branches.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Incorrect identifier or password",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// EmailNotVerified creates a 401 [AppError] for logins on accounts that have
// not completed email verification.
func EmailNotVerified() *AppError {
	return &AppError{
		Code:       "EMAIL_NOT_VERIFIED",
		Message:    "Email not verified",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidToken creates the uniform 401 for any token failure.
//
// Expired, tampered, and wrong-kind tokens all map here so the response gives
// no oracle to an attacker. The distinguishing cause is retained for
// server-side logs only.
func InvalidToken(cause error) *AppError {
	return &AppError{
		Code:       "INVALID_TOKEN",
		Message:    "Invalid or expired token",
		HTTPStatus: http.StatusUnauthorized,
		Cause:      cause,
	}
}

// UsernameTaken creates a 409 [AppError] for registration with an
// already-claimed username.
func UsernameTaken() *AppError {
	return &AppError{
		Code:       "USERNAME_TAKEN",
		Message:    "Username already taken",
		HTTPStatus: http.StatusConflict,
	}
}

// SamePassword creates a 422 [AppError] for password resets that submit the
// current password again.
func SamePassword() *AppError {
	return &AppError{
		Code:       "SAME_PASSWORD",
		Message:    "New password must differ from the current password",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// Unauthenticated creates a 401 [AppError] for requests that require a valid
// access token but did not present one resolving to a live identity.
func Unauthenticated() *AppError {
	return &AppError{
		Code:       "UNAUTHENTICATED",
		Message:    "Authentication required",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NotificationFailed creates a 502 [AppError] for email delivery failures.
//
// Registration surfaces it (without rolling back the identity record it
// already wrote); endpoints whose responses must stay uniform across branches
// log it instead.
func NotificationFailed(cause error) *AppError {
	return &AppError{
		Code:       "NOTIFICATION_FAILED",
		Message:    "Notification could not be delivered",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError] for maintenance mode.
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
