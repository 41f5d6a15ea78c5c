package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeNoActiveSession = "NO_ACTIVE_SESSION"
	ErrCodeSessionActive   = "SESSION_ACTIVE"
	ErrCodeWrongPhase      = "WRONG_PHASE"
	ErrCodeEmptyDeck       = "EMPTY_DECK"
	ErrCodeInvalidRating   = "INVALID_RATING"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "NO_ACTIVE_SESSION")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// HasCode reports whether err is, or wraps, an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// AsAppError returns err as an AppError, wrapping anything else as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewNoActiveSessionError is returned when a learner acts without a running session.
func NewNoActiveSessionError(userID int64) *AppError {
	return &AppError{
		Code:    ErrCodeNoActiveSession,
		Message: fmt.Sprintf("user %d is not in a learning session", userID),
		Status:  http.StatusConflict,
	}
}

// NewSessionActiveError is returned when a session is started over a running one.
func NewSessionActiveError(userID int64) *AppError {
	return &AppError{
		Code:    ErrCodeSessionActive,
		Message: fmt.Sprintf("user %d already has a learning session in progress", userID),
		Status:  http.StatusConflict,
	}
}

// NewWrongPhaseError is returned when an operation does not belong to the current phase.
func NewWrongPhaseError(operation, phase string) *AppError {
	return &AppError{
		Code:    ErrCodeWrongPhase,
		Message: fmt.Sprintf("%s is not allowed during the %s phase", operation, phase),
		Status:  http.StatusConflict,
	}
}

// NewEmptyDeckError creates a new EMPTY_DECK error
func NewEmptyDeckError(deckID int64) *AppError {
	return &AppError{
		Code:    ErrCodeEmptyDeck,
		Message: fmt.Sprintf("deck %d has no cards to learn", deckID),
		Status:  http.StatusUnprocessableEntity,
	}
}

// NewInvalidRatingError creates a new INVALID_RATING error
func NewInvalidRatingError(value string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidRating,
		Message: fmt.Sprintf("invalid rating %q, expected EASY, HARD or HARDEST", value),
		Status:  http.StatusBadRequest,
	}
}
