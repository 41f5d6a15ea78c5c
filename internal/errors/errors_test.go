package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/flashqueue/internal/errors"
)

func TestHasCode(t *testing.T) {
	err := errors.NewNoActiveSessionError(5)
	wrapped := fmt.Errorf("rate card: %w", err)

	assert.True(t, errors.HasCode(err, errors.ErrCodeNoActiveSession))
	assert.True(t, errors.HasCode(wrapped, errors.ErrCodeNoActiveSession))
	assert.False(t, errors.HasCode(wrapped, errors.ErrCodeNotFound))
	assert.False(t, errors.HasCode(stderrors.New("plain"), errors.ErrCodeInternal))
	assert.False(t, errors.HasCode(nil, errors.ErrCodeInternal))
}

func TestAsAppError(t *testing.T) {
	appErr := errors.NewEmptyDeckError(3)
	assert.Same(t, appErr, errors.AsAppError(appErr))

	cause := stderrors.New("disk on fire")
	internal := errors.AsAppError(cause)
	assert.Equal(t, errors.ErrCodeInternal, internal.Code)
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.ErrorIs(t, internal, cause)
}

func TestStatuses(t *testing.T) {
	tests := []struct {
		err    *errors.AppError
		code   string
		status int
	}{
		{errors.NewNotFoundError("deck", 1), errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.NewNoActiveSessionError(1), errors.ErrCodeNoActiveSession, http.StatusConflict},
		{errors.NewSessionActiveError(1), errors.ErrCodeSessionActive, http.StatusConflict},
		{errors.NewWrongPhaseError("rate", "REPETITION"), errors.ErrCodeWrongPhase, http.StatusConflict},
		{errors.NewEmptyDeckError(1), errors.ErrCodeEmptyDeck, http.StatusUnprocessableEntity},
		{errors.NewInvalidRatingError("MEH"), errors.ErrCodeInvalidRating, http.StatusBadRequest},
		{errors.NewValidationError("title", "cannot be empty"), errors.ErrCodeValidation, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Contains(t, tt.err.Error(), tt.code)
		})
	}
}
