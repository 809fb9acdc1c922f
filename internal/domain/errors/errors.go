package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound                  = errors.New("resource not found")
	ErrInvalidStateTransition    = errors.New("invalid state transition")
	ErrApplicationAlreadyExists  = errors.New("application already exists")
	ErrSubscriptionAlreadyExists = errors.New("subscription already exists")
	ErrClientSecretsLimit        = errors.New("client secrets limit exceeded")
	ErrLastClientSecret          = errors.New("cannot delete the last client secret")
	ErrApplicationNeedsAdmin     = errors.New("application needs at least one administrator")
	ErrUserAlreadyExists         = errors.New("user already exists")
	ErrInvalidVerificationCode   = errors.New("invalid uplift verification code")
	ErrInvalidIpAllowlist        = errors.New("invalid ip allowlist entry")
	ErrConcurrentModification    = errors.New("application was modified concurrently")
	ErrApplicationBlocked        = errors.New("application is blocked")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrInvalidInput              = errors.New("invalid input")
	ErrUnauthorized              = errors.New("unauthorized")
	ErrForbidden                 = errors.New("forbidden")
)

// AppError represents an application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, "NOT_FOUND", message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "BAD_REQUEST", message, ErrInvalidInput)
}

func Conflict(code, message string, err error) *AppError {
	return NewAppError(http.StatusConflict, code, message, err)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, "FORBIDDEN", message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", err)
}
