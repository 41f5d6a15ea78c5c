package services

import (
	"context"

	"github.com/vytor/flashqueue/internal/education"
	"github.com/vytor/flashqueue/internal/errors"
	"github.com/vytor/flashqueue/internal/logger"
	"github.com/vytor/flashqueue/internal/models"
	"github.com/vytor/flashqueue/internal/repository"
)

// DuplicateTracker remembers how many re-appearances of a card are still
// owed so repeated poor ratings do not pile up copies.
type DuplicateTracker struct {
	store repository.SessionStore
}

func NewDuplicateTracker(store repository.SessionStore) *DuplicateTracker {
	return &DuplicateTracker{store: store}
}

// Reconcile turns a request for requested copies into the number of new
// copies to insert. first is true when the card had never been duplicated
// in this session.
func (t *DuplicateTracker) Reconcile(ctx context.Context, userID, cardID int64, requested int) (net int, first bool, err error) {
	log := logger.FromContext(ctx).WithUser(userID)

	status, err := t.store.Duplicates().Get(ctx, userID, cardID)
	if err != nil {
		return 0, false, errors.NewInternalError(err)
	}

	if status == nil {
		status = &models.DuplicateStatus{UserID: userID, CardID: cardID, Pending: requested}
		net, first = requested, true
	} else {
		status.Pending, net = education.Reconcile(status.Pending, requested)
	}
	log.Debug("reconciled card %d: requested=%d, net=%d, pending=%d", cardID, requested, net, status.Pending)

	if err := t.store.Duplicates().Save(ctx, *status); err != nil {
		log.Error("failed to save duplicate status: %v", err)
		return 0, false, errors.NewInternalError(err)
	}
	return net, first, nil
}

// DecrementIfExists resolves one owed appearance of a previously duplicated
// card without scheduling anything.
func (t *DuplicateTracker) DecrementIfExists(ctx context.Context, userID, cardID int64) error {
	status, err := t.store.Duplicates().Get(ctx, userID, cardID)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if status == nil {
		return nil
	}
	status.Pending = education.Decrement(status.Pending)
	if err := t.store.Duplicates().Save(ctx, *status); err != nil {
		return errors.NewInternalError(err)
	}
	return nil
}
