// Package apperror provides structured error handling following RFC 7807 Problem Details.
// Errors raised at the edges of the list core (bad query input, unknown screens,
// unreadable datasets) use AppError so every surface renders them the same way.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Infrastructure errors (5xx)
	CodeInternal          = "INTERNAL_ERROR"
	CodeSourceUnavailable = "SOURCE_UNAVAILABLE"

	// Validation errors (400)
	CodeValidation        = "VALIDATION_ERROR"
	CodeInvalidFilter     = "INVALID_FILTER"
	CodeInvalidExpression = "INVALID_EXPRESSION"
	CodeInvalidSchema     = "INVALID_SCHEMA"

	// Paging (416 is the closest HTTP analogue for a page past the end)
	CodePageOutOfRange = "PAGE_OUT_OF_RANGE"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Too many requests (429)
	CodeRateLimited = "RATE_LIMITED"
)

// AppError is a classified failure. The HTTP layer renders it as JSON and
// the CLI maps its code to an exit status.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field names, page bounds, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidFilter reports a malformed filter condition (400).
func NewInvalidFilter(field, reason string) *AppError {
	return &AppError{
		Code:       CodeInvalidFilter,
		Message:    fmt.Sprintf("invalid filter on %q: %s", field, reason),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"field": field},
	}
}

// NewInvalidExpression reports an expression filter that does not compile (400).
func NewInvalidExpression(expr string, cause error) *AppError {
	return &AppError{
		Code:       CodeInvalidExpression,
		Message:    "expression filter does not compile",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"expression": expr},
		Err:        cause,
	}
}

// NewInvalidSchema reports an inconsistent screen schema (500, a programming error).
func NewInvalidSchema(schema, reason string) *AppError {
	return &AppError{
		Code:       CodeInvalidSchema,
		Message:    fmt.Sprintf("schema %s: %s", schema, reason),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"schema": schema},
	}
}

// NewPageOutOfRange is returned by strict paging when the requested page
// lies outside [1, totalPages].
func NewPageOutOfRange(page, totalPages int) *AppError {
	return &AppError{
		Code:       CodePageOutOfRange,
		Message:    fmt.Sprintf("page %d is out of range [1, %d]", page, totalPages),
		HTTPStatus: http.StatusRequestedRangeNotSatisfiable,
		Details:    map[string]any{"page": page, "totalPages": totalPages},
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewSourceUnavailable wraps a failure to load records from a data source (503).
func NewSourceUnavailable(screen string, cause error) *AppError {
	return &AppError{
		Code:       CodeSourceUnavailable,
		Message:    "records could not be loaded",
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    map[string]any{"screen": screen},
		Err:        cause,
	}
}

// NewRateLimited reports a client over its request quota (429).
func NewRateLimited() *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    "too many requests",
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// --- Helper functions ---

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsPageOutOfRange checks if error is CodePageOutOfRange
func IsPageOutOfRange(err error) bool {
	return HasCode(err, CodePageOutOfRange)
}
