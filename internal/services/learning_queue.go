package services

import (
	"context"

	"github.com/vytor/flashqueue/internal/education"
	"github.com/vytor/flashqueue/internal/errors"
	"github.com/vytor/flashqueue/internal/logger"
	"github.com/vytor/flashqueue/internal/repository"
)

// LearningQueue is the ordered, 1-indexed deck of the current session.
type LearningQueue struct {
	store   repository.SessionStore
	shuffle func([]int64)
}

// NewLearningQueue binds the queue to a store. A nil shuffle uses a uniform
// random permutation.
func NewLearningQueue(store repository.SessionStore, shuffle func([]int64)) *LearningQueue {
	if shuffle == nil {
		shuffle = education.Shuffle
	}
	return &LearningQueue{store: store, shuffle: shuffle}
}

// Initialize replaces the user's queue with a shuffled copy of cardIDs at
// positions 1..len(cardIDs).
func (q *LearningQueue) Initialize(ctx context.Context, userID int64, cardIDs []int64) error {
	log := logger.FromContext(ctx).WithUser(userID)
	ids := append([]int64(nil), cardIDs...)
	q.shuffle(ids)
	log.Debug("initializing learning queue with %d cards", len(ids))

	if err := q.store.LearningQueue().Replace(ctx, userID, ids); err != nil {
		log.Error("failed to initialize learning queue: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

// Get returns the card id at position.
func (q *LearningQueue) Get(ctx context.Context, userID int64, position int) (int64, error) {
	entry, err := q.store.LearningQueue().Get(ctx, userID, position)
	if err != nil {
		return 0, errors.NewInternalError(err)
	}
	if entry == nil {
		return 0, errors.NewNotFoundError("learning queue position", position)
	}
	return entry.CardID, nil
}

func (q *LearningQueue) Length(ctx context.Context, userID int64) (int, error) {
	n, err := q.store.LearningQueue().Length(ctx, userID)
	if err != nil {
		return 0, errors.NewInternalError(err)
	}
	return n, nil
}

// InsertDuplicate schedules copies re-appearances of the card at source,
// spread over the rest of the queue. It must run inside a transaction so a
// failed shift leaves the queue untouched.
func (q *LearningQueue) InsertDuplicate(ctx context.Context, userID int64, source, copies int) error {
	log := logger.FromContext(ctx).WithUser(userID)
	if copies <= 0 {
		return nil
	}

	cardID, err := q.Get(ctx, userID, source)
	if err != nil {
		return err
	}
	length, err := q.Length(ctx, userID)
	if err != nil {
		return err
	}

	for _, p := range education.Spread(source, length, copies) {
		log.Debug("duplicating card %d from position %d to %d (append=%t)", cardID, source, p.Position, p.Append)
		if err := q.store.LearningQueue().InsertAt(ctx, userID, p.Position, cardID); err != nil {
			log.Error("failed to insert duplicate: %v", err)
			return errors.NewInternalError(err)
		}
	}
	return nil
}
