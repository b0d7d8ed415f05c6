package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeDuplicateUsername  = "DUPLICATE_USERNAME"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeStore              = "STORE_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError is a coded failure. Message is safe to show to the user; Err is
// the underlying cause, if any.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// internal reports whether the cause may leak storage details.
func (e *AppError) internal() bool {
	return e.Code == CodeStore || e.Code == CodeInternal
}

func newAppError(code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Err: cause}
}

func NewValidationError(message string) *AppError {
	return newAppError(CodeValidation, message, nil)
}

func NewDuplicateUsernameError(username string) *AppError {
	return newAppError(CodeDuplicateUsername, fmt.Sprintf("Username %q is already taken", username), nil)
}

// NewInvalidCredentialsError is returned for both unknown users and wrong passwords.
func NewInvalidCredentialsError() *AppError {
	return newAppError(CodeInvalidCredentials, "Invalid username or password", nil)
}

// NewStoreError wraps a persistence or filesystem failure during op.
func NewStoreError(op string, err error) *AppError {
	return newAppError(CodeStore, "failed to "+op, err)
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return newAppError(CodeNotFound, fmt.Sprintf("%s %v not found", resource, id), nil)
}

func NewUnauthorizedError(message string) *AppError {
	return newAppError(CodeUnauthorized, message, nil)
}

func NewInternalError(err error) *AppError {
	return newAppError(CodeInternal, "Internal server error", err)
}

// IsCode reports whether err wraps an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// RespondWithError writes err as an ErrorResponse. Causes of store and
// internal errors stay server-side.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
	}

	body := ErrorResponse{Error: appErr.Message, Code: appErr.Code}
	if appErr.Err != nil && !appErr.internal() {
		body.Details = appErr.Err.Error()
	}
	return c.Status(status).JSON(body)
}
