// Package apperr defines the error taxonomy returned by the HTTP layer.
// Handlers return *Error values; the central fiber error handler maps them
// to a status plus JSON body.
package apperr

import "github.com/gofiber/fiber/v2"

// FieldError describes a single validation violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries an HTTP status, a stable name and an optional list of
// field-level violations.
type Error struct {
	Status  int          `json:"-"`
	Name    string       `json:"name"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Validation reports one or more schema violations. All violations are
// collected, never just the first.
func Validation(errs []FieldError) *Error {
	return &Error{
		Status:  fiber.StatusBadRequest,
		Name:    "ValidationError",
		Message: "Validation error",
		Errors:  errs,
	}
}

// BadRequest covers malformed bodies and order-transaction failures
// (invalid references, insufficient stock).
func BadRequest(message string) *Error {
	return &Error{Status: fiber.StatusBadRequest, Name: "BadRequest", Message: message}
}

// Unauthorized covers missing, invalid or expired credentials.
func Unauthorized(message string) *Error {
	return &Error{Status: fiber.StatusUnauthorized, Name: "Unauthorized", Message: message}
}

// Forbidden covers role and ownership denials.
func Forbidden(message string) *Error {
	return &Error{Status: fiber.StatusForbidden, Name: "Forbidden", Message: message}
}

// NotFound covers missing resources.
func NotFound(message string) *Error {
	return &Error{Status: fiber.StatusNotFound, Name: "NotFound", Message: message}
}

// Conflict covers uniqueness clashes and restricted deletes.
func Conflict(message string) *Error {
	return &Error{Status: fiber.StatusConflict, Name: "Conflict", Message: message}
}

// Internal covers unexpected failures.
func Internal(message string) *Error {
	return &Error{Status: fiber.StatusInternalServerError, Name: "InternalError", Message: message}
}
