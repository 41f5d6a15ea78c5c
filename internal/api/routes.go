package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/flashqueue/internal/services"
)

// Pinger reports storage readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Sessions services.SessionService
	Decks    services.DeckService
	DB       Pinger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/decks", func(r chi.Router) {
		r.Get("/", s.handleListDecks)
		r.Get("/{deckID}", s.handleGetDeck)
	})

	r.Route("/users/{userID}/session", func(r chi.Router) {
		r.Use(userMiddleware)
		r.Post("/", s.handleStartSession)
		r.Get("/", s.handleSessionStatus)
		r.Delete("/", s.handleStopSession)
		r.Post("/answer", s.handleRevealAnswer)
		r.Post("/rating", s.handleRateCard)
		r.Post("/next", s.handleAdvanceRepetition)
	})

	return r
}
