// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the error kinds a Briefly caller can observe.

Services return [*AppError] values; the respond package renders them. The
kinds map onto HTTP statuses as follows:

  - NotAuthenticated: 401 UNAUTHORIZED, or LOGIN_REQUIRED for premium content
  - NotAuthorized: 403 FORBIDDEN, or 402 SUBSCRIPTION_REQUIRED
  - NotFound: 404 NOT_FOUND
  - ValidationError: 400 VALIDATION_ERROR with per-field details
  - Conflict: 409 CONFLICT
  - UpstreamUnavailable: 503 when a store or provider fails a required step

Anything else becomes a 500 INTERNAL_ERROR whose cause is logged, never sent.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Codes

const (
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeNotFound             = "NOT_FOUND"
	CodeConflict             = "CONFLICT"
	CodeValidation           = "VALIDATION_ERROR"
	CodeRateLimited          = "RATE_LIMITED"
	CodeInternal             = "INTERNAL_ERROR"
	CodeUpstreamUnavailable  = "UPSTREAM_UNAVAILABLE"
	CodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
	CodeLoginRequired        = "LOGIN_REQUIRED"
	CodeSubscriptionRequired = "SUBSCRIPTION_REQUIRED"
	CodeCategoryLinkFailed   = "CATEGORY_LINK_FAILED"
)

// AppError is a client-safe failure. Cause is kept for server logs only and
// may hold SQL text or provider payloads.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError is one failed validation rule, keyed by JSON field name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func newError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// Error returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause returns a copy of the error carrying cause for server-side logging.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// # Client Errors

// NotFound names the missing resource: NotFound("Summary") reads
// "Summary not found".
func NotFound(resource string) *AppError {
	return newError(http.StatusNotFound, CodeNotFound, resource+" not found")
}

// Unauthorized is the NotAuthenticated kind.
func Unauthorized(message string) *AppError {
	return newError(http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden is the NotAuthorized kind: the caller is known but lacks the role
// or ownership.
func Forbidden(message string) *AppError {
	return newError(http.StatusForbidden, CodeForbidden, message)
}

func Conflict(message string) *AppError {
	return newError(http.StatusConflict, CodeConflict, message)
}

func ValidationError(message string, details ...FieldError) *AppError {
	appError := newError(http.StatusBadRequest, CodeValidation, message)
	appError.Details = details
	return appError
}

func RateLimited(retryAfterSeconds int) *AppError {
	return newError(http.StatusTooManyRequests, CodeRateLimited,
		fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds))
}

// CategoryLinkFailed reports that a book's category links could not be
// written. The book insert is rolled back with it.
func CategoryLinkFailed(cause error) *AppError {
	appError := newError(http.StatusUnprocessableEntity, CodeCategoryLinkFailed, "The book could not be linked to its categories")
	appError.Cause = cause
	return appError
}

// # Entitlement Denials

// LoginRequired answers an anonymous request for premium content.
func LoginRequired() *AppError {
	return newError(http.StatusUnauthorized, CodeLoginRequired, "Sign in to read this summary")
}

// SubscriptionRequired answers a member without an active subscription.
func SubscriptionRequired() *AppError {
	return newError(http.StatusPaymentRequired, CodeSubscriptionRequired,
		"An active subscription is required to read this summary")
}

// # Server Errors

// Internal hides cause behind a generic message.
func Internal(cause error) *AppError {
	appError := newError(http.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
	appError.Cause = cause
	return appError
}

// UpstreamUnavailable reports a failing collaborator (store, object storage,
// payment or AI provider) during a step the operation cannot skip.
func UpstreamUnavailable(service string, cause error) *AppError {
	appError := newError(http.StatusServiceUnavailable, CodeUpstreamUnavailable,
		fmt.Sprintf("The %s service is temporarily unavailable", service))
	appError.Cause = cause
	return appError
}

// ServiceUnavailable is used by fakes and maintenance switches that have no
// underlying cause to report.
func ServiceUnavailable(message string) *AppError {
	return newError(http.StatusServiceUnavailable, CodeServiceUnavailable, message)
}

// # Helpers

// IsAppError reports whether err's chain holds an [*AppError].
func IsAppError(err error) bool {
	return As(err) != nil
}

// As extracts the [*AppError] from err's chain, or nil.
func As(err error) *AppError {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	appError := As(err)
	return appError != nil && appError.Code == code
}
