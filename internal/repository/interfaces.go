package repository

import (
	"context"
	"time"

	"github.com/vytor/flashqueue/internal/models"
)

// DeckRepository is the card store: the catalog of decks and their cards.
// Lookups of a single row return nil, nil when the row is absent.
type DeckRepository interface {
	List(ctx context.Context) ([]models.Deck, error)
	Get(ctx context.Context, id int64) (*models.Deck, error)
	Cards(ctx context.Context, deckID int64) ([]models.Card, error)
	Card(ctx context.Context, id int64) (*models.Card, error)
	Insert(ctx context.Context, deck models.Deck) (int64, error)
	InsertCards(ctx context.Context, deckID int64, cards []models.Card) error
}

// SessionRepository handles the per-user session record
type SessionRepository interface {
	Get(ctx context.Context, userID int64) (*models.UserSession, error)
	Save(ctx context.Context, session models.UserSession) error
	ListIdle(ctx context.Context, before time.Time) ([]models.UserSession, error)
}

// LearningQueueRepository stores the dense 1..N learning queue of a user.
type LearningQueueRepository interface {
	Replace(ctx context.Context, userID int64, cardIDs []int64) error
	Get(ctx context.Context, userID int64, position int) (*models.QueueEntry, error)
	Length(ctx context.Context, userID int64) (int, error)
	InsertAt(ctx context.Context, userID int64, position int, cardID int64) error
	List(ctx context.Context, userID int64) ([]models.QueueEntry, error)
	Clear(ctx context.Context, userID int64) error
}

// RepetitionQueueRepository stores the cards rated easy, once each.
type RepetitionQueueRepository interface {
	Contains(ctx context.Context, userID, cardID int64) (bool, error)
	Append(ctx context.Context, userID, cardID int64) (int, error)
	Get(ctx context.Context, userID int64, position int) (*models.QueueEntry, error)
	Length(ctx context.Context, userID int64) (int, error)
	List(ctx context.Context, userID int64) ([]models.QueueEntry, error)
	Clear(ctx context.Context, userID int64) error
}

// DuplicateRepository tracks owed re-appearances per (user, card).
type DuplicateRepository interface {
	Get(ctx context.Context, userID, cardID int64) (*models.DuplicateStatus, error)
	Save(ctx context.Context, status models.DuplicateStatus) error
	Clear(ctx context.Context, userID int64) error
}

// SessionStore is the session state store. InTx runs fn against a store
// bound to a single transaction; nested calls reuse the outer transaction.
type SessionStore interface {
	Sessions() SessionRepository
	LearningQueue() LearningQueueRepository
	RepetitionQueue() RepetitionQueueRepository
	Duplicates() DuplicateRepository
	InTx(ctx context.Context, fn func(SessionStore) error) error
}
