package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vytor/flashqueue/internal/errors"
	"github.com/vytor/flashqueue/internal/logger"
	"github.com/vytor/flashqueue/internal/models"
	"github.com/vytor/flashqueue/internal/repository"
)

// DeckService handles deck browsing and import
type DeckService interface {
	ListDecks(ctx context.Context) ([]models.Deck, error)
	GetDeck(ctx context.Context, id int64) (*models.Deck, error)
	ImportDeck(ctx context.Context, title, description string, cards []models.Card) (*models.Deck, error)
}

type deckService struct {
	repo repository.DeckRepository
}

// NewDeckService creates a new DeckService
func NewDeckService(repo repository.DeckRepository) DeckService {
	return &deckService{repo: repo}
}

func (s *deckService) ListDecks(ctx context.Context) ([]models.Deck, error) {
	decks, err := s.repo.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list decks: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return decks, nil
}

func (s *deckService) GetDeck(ctx context.Context, id int64) (*models.Deck, error) {
	deck, err := s.repo.Get(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get deck %d: %v", id, err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", id)
	}
	return deck, nil
}

func (s *deckService) ImportDeck(ctx context.Context, title, description string, cards []models.Card) (*models.Deck, error) {
	log := logger.FromContext(ctx)

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.NewValidationError("title", "must not be empty")
	}
	if len(cards) == 0 {
		return nil, errors.NewValidationError("cards", "deck has no cards")
	}
	for i, c := range cards {
		if strings.TrimSpace(c.Question) == "" || strings.TrimSpace(c.Answer) == "" {
			return nil, errors.NewValidationError(fmt.Sprintf("cards[%d]", i), "question and answer are required")
		}
	}

	log.Info("importing deck: title=%s, cards=%d", title, len(cards))
	id, err := s.repo.Insert(ctx, models.Deck{Title: title, Description: description})
	if err != nil {
		log.Error("failed to insert deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if err := s.repo.InsertCards(ctx, id, cards); err != nil {
		log.Error("failed to insert cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.GetDeck(ctx, id)
}
