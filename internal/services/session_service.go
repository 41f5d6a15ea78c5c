package services

import (
	"context"
	"time"

	"github.com/vytor/flashqueue/internal/errors"
	"github.com/vytor/flashqueue/internal/logger"
	"github.com/vytor/flashqueue/internal/models"
	"github.com/vytor/flashqueue/internal/repository"
)

// SessionService drives a learner through a deck: learning pass, repetition
// pass, then completion.
type SessionService interface {
	StartSession(ctx context.Context, userID, deckID int64) (*models.CardView, error)
	RevealAnswer(ctx context.Context, userID int64) (*models.CardView, error)
	RateCard(ctx context.Context, userID int64, rating models.Rating) (*models.Step, error)
	AdvanceRepetition(ctx context.Context, userID int64) (*models.Step, error)
	StopSession(ctx context.Context, userID int64) (*models.StopResult, error)
	Status(ctx context.Context, userID int64) (*models.SessionStatus, error)
	ExpireIdle(ctx context.Context, before time.Time) (int, error)
}

// SessionOption configures a SessionService
type SessionOption func(*sessionService)

// WithClock overrides the time source used for session timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *sessionService) { s.now = now }
}

// WithShuffle overrides how a deck is ordered at session start.
func WithShuffle(shuffle func([]int64)) SessionOption {
	return func(s *sessionService) { s.shuffle = shuffle }
}

type sessionService struct {
	store   repository.SessionStore
	decks   repository.DeckRepository
	now     func() time.Time
	shuffle func([]int64)
	locks   *userLocks
}

// NewSessionService creates a new SessionService
func NewSessionService(store repository.SessionStore, decks repository.DeckRepository, opts ...SessionOption) SessionService {
	s := &sessionService{
		store: store,
		decks: decks,
		now:   func() time.Time { return time.Now().UTC() },
		locks: newUserLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// cursorTarget is the card a session points at once a transaction commits.
// Card contents are loaded afterwards so the card store is never read while
// the session transaction holds the connection.
type cursorTarget struct {
	userID   int64
	deckID   int64
	phase    models.Phase
	position int
	total    int
	cardID   int64
}

// wrapInternal keeps application errors as they are and reports anything
// else as internal.
func wrapInternal(err error) error {
	if err == nil {
		return nil
	}
	return errors.AsAppError(err)
}

func (s *sessionService) StartSession(ctx context.Context, userID, deckID int64) (*models.CardView, error) {
	log := logger.FromContext(ctx).WithUser(userID)
	log.Debug("starting session: deck_id=%d", deckID)
	defer s.locks.lock(userID)()

	current, err := s.store.Sessions().Get(ctx, userID)
	if err != nil {
		log.Error("failed to load session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if current.Active() {
		return nil, errors.NewSessionActiveError(userID)
	}

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		log.Error("failed to load deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}
	cards, err := s.decks.Cards(ctx, deckID)
	if err != nil {
		log.Error("failed to load deck cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(cards) == 0 {
		return nil, errors.NewEmptyDeckError(deckID)
	}

	var target *cursorTarget
	err = s.store.InTx(ctx, func(tx repository.SessionStore) error {
		if err := tx.RepetitionQueue().Clear(ctx, userID); err != nil {
			return err
		}
		if err := tx.Duplicates().Clear(ctx, userID); err != nil {
			return err
		}
		learning := NewLearningQueue(tx, s.shuffle)
		if err := learning.Initialize(ctx, userID, models.CardIDs(cards)); err != nil {
			return err
		}

		now := s.now()
		cursor := 1
		if err := tx.Sessions().Save(ctx, models.UserSession{
			UserID:    userID,
			DeckID:    deckID,
			Cursor:    &cursor,
			StartedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return err
		}

		cardID, err := learning.Get(ctx, userID, cursor)
		if err != nil {
			return err
		}
		target = &cursorTarget{userID: userID, deckID: deckID, phase: models.PhaseLearning, position: cursor, total: len(cards), cardID: cardID}
		return nil
	})
	if err != nil {
		log.Error("failed to start session: %v", err)
		return nil, wrapInternal(err)
	}

	log.Info("session started: deck_id=%d, cards=%d", deckID, len(cards))
	return s.view(ctx, target, false)
}

func (s *sessionService) RevealAnswer(ctx context.Context, userID int64) (*models.CardView, error) {
	defer s.locks.lock(userID)()

	session, err := s.store.Sessions().Get(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if !session.Active() {
		return nil, errors.NewNoActiveSessionError(userID)
	}
	target, err := s.locate(ctx, s.store, session)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if target == nil {
		return nil, errors.NewNotFoundError("session card", *session.Cursor)
	}
	return s.view(ctx, target, true)
}

func (s *sessionService) RateCard(ctx context.Context, userID int64, rating models.Rating) (*models.Step, error) {
	log := logger.FromContext(ctx).WithUser(userID)
	if !rating.Valid() {
		return nil, errors.NewInvalidRatingError(string(rating))
	}
	defer s.locks.lock(userID)()

	var (
		target  *cursorTarget
		summary *models.Summary
	)
	err := s.store.InTx(ctx, func(tx repository.SessionStore) error {
		session, err := tx.Sessions().Get(ctx, userID)
		if err != nil {
			return err
		}
		if !session.Active() {
			return errors.NewNoActiveSessionError(userID)
		}

		learning := NewLearningQueue(tx, s.shuffle)
		length, err := learning.Length(ctx, userID)
		if err != nil {
			return err
		}
		phase, position := session.Phase(length)
		if phase != models.PhaseLearning {
			return errors.NewWrongPhaseError("rate card", string(phase))
		}
		cardID, err := learning.Get(ctx, userID, position)
		if err != nil {
			return err
		}
		log.Debug("rating card %d at position %d as %s", cardID, position, rating)

		tracker := NewDuplicateTracker(tx)
		if rating == models.RatingEasy {
			if err := tracker.DecrementIfExists(ctx, userID, cardID); err != nil {
				return err
			}
			if _, err := NewRepetitionQueue(tx).EnqueueIfAbsent(ctx, userID, cardID); err != nil {
				return err
			}
		} else {
			net, first, err := tracker.Reconcile(ctx, userID, cardID, rating.Duplicates())
			if err != nil {
				return err
			}
			if first {
				if rating == models.RatingHardest {
					session.HardestCount++
				} else {
					session.HardCount++
				}
			}
			if err := learning.InsertDuplicate(ctx, userID, position, net); err != nil {
				return err
			}
		}

		target, summary, err = s.advance(ctx, tx, session)
		return err
	})
	if err != nil {
		return nil, wrapInternal(err)
	}
	return s.step(ctx, target, summary)
}

func (s *sessionService) AdvanceRepetition(ctx context.Context, userID int64) (*models.Step, error) {
	defer s.locks.lock(userID)()

	var (
		target  *cursorTarget
		summary *models.Summary
	)
	err := s.store.InTx(ctx, func(tx repository.SessionStore) error {
		session, err := tx.Sessions().Get(ctx, userID)
		if err != nil {
			return err
		}
		if !session.Active() {
			return errors.NewNoActiveSessionError(userID)
		}
		length, err := NewLearningQueue(tx, s.shuffle).Length(ctx, userID)
		if err != nil {
			return err
		}
		if phase, _ := session.Phase(length); phase != models.PhaseRepetition {
			return errors.NewWrongPhaseError("advance repetition", string(phase))
		}
		target, summary, err = s.advance(ctx, tx, session)
		return err
	})
	if err != nil {
		return nil, wrapInternal(err)
	}
	return s.step(ctx, target, summary)
}

func (s *sessionService) StopSession(ctx context.Context, userID int64) (*models.StopResult, error) {
	log := logger.FromContext(ctx).WithUser(userID)
	defer s.locks.lock(userID)()

	result := &models.StopResult{UserID: userID}
	err := s.store.InTx(ctx, func(tx repository.SessionStore) error {
		session, err := tx.Sessions().Get(ctx, userID)
		if err != nil {
			return err
		}
		if !session.Active() {
			log.Debug("stop requested without an active session")
			return nil
		}
		result.Stopped = true
		return s.teardown(ctx, tx, session, s.now())
	})
	if err != nil {
		log.Error("failed to stop session: %v", err)
		return nil, wrapInternal(err)
	}
	if result.Stopped {
		log.Info("session stopped")
	}
	return result, nil
}

func (s *sessionService) Status(ctx context.Context, userID int64) (*models.SessionStatus, error) {
	defer s.locks.lock(userID)()

	session, err := s.store.Sessions().Get(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	status := &models.SessionStatus{UserID: userID, Phase: models.PhaseIdle}
	if session == nil {
		return status, nil
	}
	status.HardCount = session.HardCount
	status.HardestCount = session.HardestCount
	if !session.Active() {
		return status, nil
	}

	learningLen, err := s.store.LearningQueue().Length(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	repetitionLen, err := s.store.RepetitionQueue().Length(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	status.Phase, status.Position = session.Phase(learningLen)
	status.DeckID = session.DeckID
	status.LearningTotal = learningLen
	status.RepetitionTotal = repetitionLen
	status.StartedAt = session.StartedAt
	return status, nil
}

// ExpireIdle stops every active session untouched since before and returns
// how many were stopped.
func (s *sessionService) ExpireIdle(ctx context.Context, before time.Time) (int, error) {
	log := logger.FromContext(ctx)

	idle, err := s.store.Sessions().ListIdle(ctx, before)
	if err != nil {
		log.Error("failed to list idle sessions: %v", err)
		return 0, errors.NewInternalError(err)
	}

	expired := 0
	for _, candidate := range idle {
		stopped, err := s.expire(ctx, candidate.UserID, before)
		if err != nil {
			return expired, err
		}
		if stopped {
			expired++
		}
	}
	if expired > 0 {
		log.Info("expired %d idle sessions", expired)
	}
	return expired, nil
}

func (s *sessionService) expire(ctx context.Context, userID int64, before time.Time) (bool, error) {
	defer s.locks.lock(userID)()

	stopped := false
	err := s.store.InTx(ctx, func(tx repository.SessionStore) error {
		session, err := tx.Sessions().Get(ctx, userID)
		if err != nil {
			return err
		}
		// the learner may have acted since the idle list was read
		if !session.Active() || !session.UpdatedAt.Before(before) {
			return nil
		}
		stopped = true
		return s.teardown(ctx, tx, session, s.now())
	})
	return stopped, wrapInternal(err)
}

// advance moves the cursor one step. Past the learning queue it walks the
// repetition queue; past that the session completes.
func (s *sessionService) advance(ctx context.Context, tx repository.SessionStore, session *models.UserSession) (*cursorTarget, *models.Summary, error) {
	next := *session.Cursor + 1
	session.Cursor = &next

	target, err := s.locate(ctx, tx, session)
	if err != nil {
		return nil, nil, err
	}
	if target == nil {
		summary, err := s.complete(ctx, tx, session)
		return nil, summary, err
	}

	session.UpdatedAt = s.now()
	if err := tx.Sessions().Save(ctx, *session); err != nil {
		return nil, nil, err
	}
	return target, nil, nil
}

// locate resolves the session cursor to a card. It returns nil when the
// cursor is past both queues.
func (s *sessionService) locate(ctx context.Context, store repository.SessionStore, session *models.UserSession) (*cursorTarget, error) {
	learning := NewLearningQueue(store, s.shuffle)
	learningLen, err := learning.Length(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	target := &cursorTarget{userID: session.UserID, deckID: session.DeckID}
	target.phase, target.position = session.Phase(learningLen)

	if target.phase == models.PhaseLearning {
		target.total = learningLen
		target.cardID, err = learning.Get(ctx, session.UserID, target.position)
		return target, err
	}

	repetition := NewRepetitionQueue(store)
	target.total, err = repetition.Length(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if target.position > target.total {
		return nil, nil
	}
	target.cardID, err = repetition.Get(ctx, session.UserID, target.position)
	return target, err
}

func (s *sessionService) complete(ctx context.Context, tx repository.SessionStore, session *models.UserSession) (*models.Summary, error) {
	ended := s.now()
	summary := &models.Summary{
		UserID:       session.UserID,
		DeckID:       session.DeckID,
		StartedAt:    session.StartedAt,
		EndedAt:      ended,
		Elapsed:      ended.Sub(session.StartedAt).Truncate(time.Second),
		HardCount:    session.HardCount,
		HardestCount: session.HardestCount,
	}
	if err := s.teardown(ctx, tx, session, ended); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).WithUser(session.UserID).Info("session completed: deck_id=%d, elapsed=%s", session.DeckID, summary.Elapsed)
	return summary, nil
}

// teardown drops all per-session queue state and marks the session idle.
// Counters stay on the record as history.
func (s *sessionService) teardown(ctx context.Context, tx repository.SessionStore, session *models.UserSession, ended time.Time) error {
	userID := session.UserID
	if err := tx.LearningQueue().Clear(ctx, userID); err != nil {
		return err
	}
	if err := tx.RepetitionQueue().Clear(ctx, userID); err != nil {
		return err
	}
	if err := tx.Duplicates().Clear(ctx, userID); err != nil {
		return err
	}
	session.Cursor = nil
	session.EndedAt = &ended
	session.UpdatedAt = ended
	return tx.Sessions().Save(ctx, *session)
}

func (s *sessionService) step(ctx context.Context, target *cursorTarget, summary *models.Summary) (*models.Step, error) {
	if summary != nil {
		return &models.Step{Summary: summary}, nil
	}
	view, err := s.view(ctx, target, false)
	if err != nil {
		return nil, err
	}
	return &models.Step{Card: view}, nil
}

func (s *sessionService) view(ctx context.Context, target *cursorTarget, revealed bool) (*models.CardView, error) {
	card, err := s.decks.Card(ctx, target.cardID)
	if err != nil {
		logger.FromContext(ctx).WithUser(target.userID).Error("failed to load card %d: %v", target.cardID, err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("card", target.cardID)
	}

	view := &models.CardView{
		UserID:   target.userID,
		DeckID:   target.deckID,
		Phase:    target.phase,
		Position: target.position,
		Total:    target.total,
		CardID:   card.ID,
		Question: card.Question,
		Revealed: revealed,
	}
	if revealed {
		view.Answer = card.Answer
		view.ExpectsRating = target.phase == models.PhaseLearning
	}
	return view, nil
}
