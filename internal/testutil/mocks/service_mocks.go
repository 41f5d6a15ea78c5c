package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashqueue/internal/models"
)

// MockSessionService is a mock implementation of services.SessionService
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) StartSession(ctx context.Context, userID, deckID int64) (*models.CardView, error) {
	args := m.Called(ctx, userID, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CardView), args.Error(1)
}

func (m *MockSessionService) RevealAnswer(ctx context.Context, userID int64) (*models.CardView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CardView), args.Error(1)
}

func (m *MockSessionService) RateCard(ctx context.Context, userID int64, rating models.Rating) (*models.Step, error) {
	args := m.Called(ctx, userID, rating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Step), args.Error(1)
}

func (m *MockSessionService) AdvanceRepetition(ctx context.Context, userID int64) (*models.Step, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Step), args.Error(1)
}

func (m *MockSessionService) StopSession(ctx context.Context, userID int64) (*models.StopResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StopResult), args.Error(1)
}

func (m *MockSessionService) Status(ctx context.Context, userID int64) (*models.SessionStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionStatus), args.Error(1)
}

func (m *MockSessionService) ExpireIdle(ctx context.Context, before time.Time) (int, error) {
	args := m.Called(ctx, before)
	return args.Int(0), args.Error(1)
}

// MockDeckService is a mock implementation of services.DeckService
type MockDeckService struct {
	mock.Mock
}

func (m *MockDeckService) ListDecks(ctx context.Context) ([]models.Deck, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Deck), args.Error(1)
}

func (m *MockDeckService) GetDeck(ctx context.Context, id int64) (*models.Deck, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deck), args.Error(1)
}

func (m *MockDeckService) ImportDeck(ctx context.Context, title, description string, cards []models.Card) (*models.Deck, error) {
	args := m.Called(ctx, title, description, cards)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deck), args.Error(1)
}
