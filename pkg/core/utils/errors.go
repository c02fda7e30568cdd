package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors returned by repositories and services.
var (
	ErrNotFound        = errors.New("not_found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidProgress = errors.New("invalid_progress")
	ErrUnitAlreadySold = errors.New("unit_already_sold")
	ErrUnknownAction   = errors.New("unknown_action")
	ErrUnitNotFound    = errors.New("unit_not_found")

	// For external service failures (LLM providers, central-bank API)
	ErrExternalServiceFailure = errors.New("external_service_failure")
)

// Error codes carried in JSON error bodies.
const (
	ErrCodeInvalidPayload         = "invalid_payload"
	ErrCodeValidation             = "validation_error"
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeInternal               = "internal_server_error"
	ErrCodeNotFound               = "not_found"
	ErrCodeConflict               = "conflict"
	ErrCodeExternalServiceFailure = "external_service_failure"
)

// AppError carries an HTTP status and public code from services to handlers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError builds an AppError.
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{StatusCode: status, Code: code, Message: message, Err: err}
}

// AsAppError maps sentinel errors to their HTTP shape; anything else becomes a 500.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden):
		// Foreign projects look like missing ones.
		return NewAppError(http.StatusNotFound, ErrCodeNotFound, "Resource not found", err)
	case errors.Is(err, ErrUnitNotFound):
		return NewAppError(http.StatusNotFound, ErrCodeNotFound, "Unit not found", err)
	case errors.Is(err, ErrInvalidProgress):
		return NewAppError(http.StatusBadRequest, ErrCodeValidation, "Progress must be 0-100 in steps of 10", err)
	case errors.Is(err, ErrUnitAlreadySold):
		return NewAppError(http.StatusConflict, ErrCodeConflict, "Unit is already sold", err)
	case errors.Is(err, ErrUnknownAction):
		return NewAppError(http.StatusUnprocessableEntity, ErrCodeValidation, "Command not understood", err)
	case errors.Is(err, ErrExternalServiceFailure):
		return NewAppError(http.StatusBadGateway, ErrCodeExternalServiceFailure, "Upstream service failed", err)
	}
	return NewAppError(http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", err)
}
