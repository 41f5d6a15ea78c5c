package api

import (
	"net/http"

	"github.com/vytor/flashqueue/internal/errors"
	"github.com/vytor/flashqueue/internal/logger"
	"github.com/vytor/flashqueue/internal/models"
)

type startSessionRequest struct {
	DeckID int64 `json:"deck_id"`
}

// rateCardRequest accepts either a named rating or one of the percentage
// buttons (0, 25, 50, 75, 100).
type rateCardRequest struct {
	Rating  string `json:"rating"`
	Percent *int   `json:"percent"`
}

func (req rateCardRequest) resolve() (models.Rating, error) {
	if req.Percent != nil {
		rating, ok := models.RatingFromPercent(*req.Percent)
		if !ok {
			return "", errors.NewValidationError("percent", "must be one of 0, 25, 50, 75, 100")
		}
		return rating, nil
	}
	rating, ok := models.ParseRating(req.Rating)
	if !ok {
		return "", errors.NewInvalidRatingError(req.Rating)
	}
	return rating, nil
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.DeckID <= 0 {
		handleError(w, r, errors.NewValidationError("deck_id", "must be a positive integer"))
		return
	}

	view, err := s.Sessions.StartSession(r.Context(), userFromContext(r.Context()), req.DeckID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.Sessions.Status(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleRevealAnswer(w http.ResponseWriter, r *http.Request) {
	view, err := s.Sessions.RevealAnswer(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRateCard(w http.ResponseWriter, r *http.Request) {
	var req rateCardRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	rating, err := req.resolve()
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Debug("rating current card: %s", rating)

	step, err := s.Sessions.RateCard(r.Context(), userFromContext(r.Context()), rating)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, step)
}

func (s *Server) handleAdvanceRepetition(w http.ResponseWriter, r *http.Request) {
	step, err := s.Sessions.AdvanceRepetition(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, step)
}

func (s *Server) handleStopSession(w http.ResponseWriter, r *http.Request) {
	result, err := s.Sessions.StopSession(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
