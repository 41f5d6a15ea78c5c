package services_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashqueue/internal/errors"
	"github.com/vytor/flashqueue/internal/models"
	"github.com/vytor/flashqueue/internal/services"
	"github.com/vytor/flashqueue/internal/testutil/mocks"
)

func TestDeckService_GetDeck(t *testing.T) {
	repo := new(mocks.MockDeckRepository)
	repo.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1, Title: "Verbs", CardCount: 3}, nil)
	repo.On("Get", mock.Anything, int64(2)).Return(nil, nil)
	repo.On("Get", mock.Anything, int64(3)).Return(nil, stderrors.New("boom"))

	svc := services.NewDeckService(repo)

	deck, err := svc.GetDeck(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Verbs", deck.Title)

	_, err = svc.GetDeck(context.Background(), 2)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))

	_, err = svc.GetDeck(context.Background(), 3)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInternal))

	repo.AssertExpectations(t)
}

func TestDeckService_ImportDeck(t *testing.T) {
	cards := []models.Card{{Question: "hola", Answer: "hello"}, {Question: "adiós", Answer: "goodbye"}}

	repo := new(mocks.MockDeckRepository)
	repo.On("Insert", mock.Anything, models.Deck{Title: "Spanish", Description: "basics"}).Return(int64(5), nil)
	repo.On("InsertCards", mock.Anything, int64(5), cards).Return(nil)
	repo.On("Get", mock.Anything, int64(5)).Return(&models.Deck{ID: 5, Title: "Spanish", CardCount: 2}, nil)

	svc := services.NewDeckService(repo)
	deck, err := svc.ImportDeck(context.Background(), "  Spanish ", "basics", cards)
	require.NoError(t, err)
	assert.Equal(t, int64(5), deck.ID)
	assert.Equal(t, 2, deck.CardCount)
	repo.AssertExpectations(t)
}

func TestDeckService_ImportDeckValidation(t *testing.T) {
	svc := services.NewDeckService(new(mocks.MockDeckRepository))
	ctx := context.Background()

	_, err := svc.ImportDeck(ctx, "", "", []models.Card{{Question: "q", Answer: "a"}})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))

	_, err = svc.ImportDeck(ctx, "Empty", "", nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))

	_, err = svc.ImportDeck(ctx, "Blank", "", []models.Card{{Question: "q", Answer: " "}})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}
