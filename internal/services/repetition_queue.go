package services

import (
	"context"

	"github.com/vytor/flashqueue/internal/errors"
	"github.com/vytor/flashqueue/internal/logger"
	"github.com/vytor/flashqueue/internal/repository"
)

// RepetitionQueue holds the cards rated easy, reviewed once the learning
// queue is exhausted.
type RepetitionQueue struct {
	store repository.SessionStore
}

func NewRepetitionQueue(store repository.SessionStore) *RepetitionQueue {
	return &RepetitionQueue{store: store}
}

// EnqueueIfAbsent appends cardID unless it is already queued for the user.
// It reports whether the card was added.
func (q *RepetitionQueue) EnqueueIfAbsent(ctx context.Context, userID, cardID int64) (bool, error) {
	log := logger.FromContext(ctx).WithUser(userID)

	present, err := q.store.RepetitionQueue().Contains(ctx, userID, cardID)
	if err != nil {
		return false, errors.NewInternalError(err)
	}
	if present {
		log.Debug("card %d already queued for repetition", cardID)
		return false, nil
	}
	if _, err := q.store.RepetitionQueue().Append(ctx, userID, cardID); err != nil {
		log.Error("failed to enqueue card %d for repetition: %v", cardID, err)
		return false, errors.NewInternalError(err)
	}
	return true, nil
}

func (q *RepetitionQueue) Get(ctx context.Context, userID int64, position int) (int64, error) {
	entry, err := q.store.RepetitionQueue().Get(ctx, userID, position)
	if err != nil {
		return 0, errors.NewInternalError(err)
	}
	if entry == nil {
		return 0, errors.NewNotFoundError("repetition queue position", position)
	}
	return entry.CardID, nil
}

func (q *RepetitionQueue) Length(ctx context.Context, userID int64) (int, error) {
	n, err := q.store.RepetitionQueue().Length(ctx, userID)
	if err != nil {
		return 0, errors.NewInternalError(err)
	}
	return n, nil
}
