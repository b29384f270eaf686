// Package apperr defines the classified error that HTTP handlers turn into
// the failure envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried in the failure envelope.
const (
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeDuplicateSKU    = "DUPLICATE_SKU"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeMethod          = "METHOD_NOT_ALLOWED"
	CodeUnavailable     = "SERVICE_UNAVAILABLE"
	CodeInternal        = "INTERNAL_ERROR"
)

// Error is an error with an HTTP status and a machine-readable code.
type Error struct {
	Status  int
	Code    string
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func Unauthorized(details string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: "Authentication required", Details: details}
}

func Forbidden(details string) *Error {
	return &Error{
		Status:  http.StatusForbidden,
		Code:    CodeForbidden,
		Message: "You do not have permission to perform this action",
		Details: details,
	}
}

// Validation wraps field-level failures. details is normally validate.Errors.
func Validation(details any) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: "Validation failed", Details: details}
}

// BadRequest is a validation failure that is not tied to a struct field,
// such as malformed JSON.
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

func DuplicateSKU(err error) *Error {
	return &Error{
		Status:  http.StatusConflict,
		Code:    CodeDuplicateSKU,
		Message: "Product with this SKU already exists",
		Err:     err,
	}
}

func TooManyRequests() *Error {
	return &Error{
		Status:  http.StatusTooManyRequests,
		Code:    CodeTooManyRequests,
		Message: "Too many requests, please try again later",
	}
}

func MethodNotAllowed() *Error {
	return &Error{Status: http.StatusMethodNotAllowed, Code: CodeMethod, Message: "Method not allowed"}
}

// Unavailable reports a failed dependency check. details names what is down.
func Unavailable(details any) *Error {
	return &Error{
		Status:  http.StatusServiceUnavailable,
		Code:    CodeUnavailable,
		Message: "Service unavailable",
		Details: details,
	}
}

func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "Internal server error", Err: err}
}
