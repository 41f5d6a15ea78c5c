package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/flashqueue/internal/models"
	"github.com/vytor/flashqueue/internal/repository"
	"github.com/vytor/flashqueue/internal/repository/sqlite"
	"github.com/vytor/flashqueue/internal/testutil"
)

type SessionStoreSuite struct {
	suite.Suite
	db     *sql.DB
	store  repository.SessionStore
	deckID int64
	cards  []int64
}

func (s *SessionStoreSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.store = sqlite.NewSessionStore(s.db)
	s.deckID, s.cards = testutil.SeedDeck(s.T(), s.db, "Spanish", 5)
}

func (s *SessionStoreSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *SessionStoreSuite) cardIDs(entries []models.QueueEntry) []int64 {
	ids := make([]int64, len(entries))
	for i, e := range entries {
		s.Equal(i+1, e.Position)
		ids[i] = e.CardID
	}
	return ids
}

func (s *SessionStoreSuite) TestSessionSaveAndGet() {
	ctx := context.Background()

	missing, err := s.store.Sessions().Get(ctx, 42)
	s.Require().NoError(err)
	s.Nil(missing)

	cursor := 1
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	err = s.store.Sessions().Save(ctx, models.UserSession{
		UserID:    42,
		DeckID:    s.deckID,
		Cursor:    &cursor,
		StartedAt: started,
		UpdatedAt: started,
	})
	s.Require().NoError(err)

	got, err := s.store.Sessions().Get(ctx, 42)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.True(got.Active())
	s.Equal(1, *got.Cursor)
	s.Equal(s.deckID, got.DeckID)
	s.True(started.Equal(got.StartedAt))
	s.Nil(got.EndedAt)

	ended := started.Add(time.Minute)
	got.Cursor = nil
	got.EndedAt = &ended
	got.HardCount = 2
	got.HardestCount = 1
	s.Require().NoError(s.store.Sessions().Save(ctx, *got))

	again, err := s.store.Sessions().Get(ctx, 42)
	s.Require().NoError(err)
	s.False(again.Active())
	s.Require().NotNil(again.EndedAt)
	s.True(ended.Equal(*again.EndedAt))
	s.Equal(2, again.HardCount)
	s.Equal(1, again.HardestCount)
}

func (s *SessionStoreSuite) TestListIdle() {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	one := 1

	s.Require().NoError(s.store.Sessions().Save(ctx, models.UserSession{UserID: 1, DeckID: s.deckID, Cursor: &one, UpdatedAt: now.Add(-2 * time.Hour)}))
	s.Require().NoError(s.store.Sessions().Save(ctx, models.UserSession{UserID: 2, DeckID: s.deckID, Cursor: &one, UpdatedAt: now}))
	s.Require().NoError(s.store.Sessions().Save(ctx, models.UserSession{UserID: 3, DeckID: s.deckID, UpdatedAt: now.Add(-3 * time.Hour)}))

	idle, err := s.store.Sessions().ListIdle(ctx, now.Add(-time.Hour))
	s.Require().NoError(err)
	s.Require().Len(idle, 1)
	s.Equal(int64(1), idle[0].UserID)
}

func (s *SessionStoreSuite) TestLearningQueueReplaceAndGet() {
	ctx := context.Background()
	q := s.store.LearningQueue()

	s.Require().NoError(q.Replace(ctx, 7, s.cards))
	n, err := q.Length(ctx, 7)
	s.Require().NoError(err)
	s.Equal(5, n)

	e, err := q.Get(ctx, 7, 3)
	s.Require().NoError(err)
	s.Require().NotNil(e)
	s.Equal(s.cards[2], e.CardID)

	missing, err := q.Get(ctx, 7, 6)
	s.Require().NoError(err)
	s.Nil(missing)

	s.Require().NoError(q.Replace(ctx, 7, s.cards[:2]))
	n, err = q.Length(ctx, 7)
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *SessionStoreSuite) TestLearningQueueInsertAtShiftsTail() {
	ctx := context.Background()
	q := s.store.LearningQueue()
	s.Require().NoError(q.Replace(ctx, 7, s.cards))

	s.Require().NoError(q.InsertAt(ctx, 7, 2, s.cards[4]))
	entries, err := q.List(ctx, 7)
	s.Require().NoError(err)
	s.Equal([]int64{s.cards[0], s.cards[4], s.cards[1], s.cards[2], s.cards[3], s.cards[4]}, s.cardIDs(entries))

	s.Require().NoError(q.InsertAt(ctx, 7, 7, s.cards[0]))
	entries, err = q.List(ctx, 7)
	s.Require().NoError(err)
	s.Len(entries, 7)
	s.Equal(s.cards[0], entries[6].CardID)
}

func (s *SessionStoreSuite) TestLearningQueueInsertAtRejectsGaps() {
	ctx := context.Background()
	q := s.store.LearningQueue()
	s.Require().NoError(q.Replace(ctx, 7, s.cards))

	s.Error(q.InsertAt(ctx, 7, 0, s.cards[0]))
	s.Error(q.InsertAt(ctx, 7, 7, s.cards[0]))
}

func (s *SessionStoreSuite) TestQueuesAreScopedPerUser() {
	ctx := context.Background()
	s.Require().NoError(s.store.LearningQueue().Replace(ctx, 1, s.cards))
	s.Require().NoError(s.store.LearningQueue().Replace(ctx, 2, s.cards[:1]))
	s.Require().NoError(s.store.LearningQueue().InsertAt(ctx, 2, 1, s.cards[3]))

	n, err := s.store.LearningQueue().Length(ctx, 1)
	s.Require().NoError(err)
	s.Equal(5, n)

	s.Require().NoError(s.store.LearningQueue().Clear(ctx, 2))
	n, err = s.store.LearningQueue().Length(ctx, 2)
	s.Require().NoError(err)
	s.Equal(0, n)
	n, err = s.store.LearningQueue().Length(ctx, 1)
	s.Require().NoError(err)
	s.Equal(5, n)
}

func (s *SessionStoreSuite) TestRepetitionQueue() {
	ctx := context.Background()
	q := s.store.RepetitionQueue()

	ok, err := q.Contains(ctx, 7, s.cards[1])
	s.Require().NoError(err)
	s.False(ok)

	pos, err := q.Append(ctx, 7, s.cards[1])
	s.Require().NoError(err)
	s.Equal(1, pos)
	pos, err = q.Append(ctx, 7, s.cards[0])
	s.Require().NoError(err)
	s.Equal(2, pos)

	ok, err = q.Contains(ctx, 7, s.cards[1])
	s.Require().NoError(err)
	s.True(ok)

	_, err = q.Append(ctx, 7, s.cards[1])
	s.Error(err, "a card is stored at most once per user")

	e, err := q.Get(ctx, 7, 2)
	s.Require().NoError(err)
	s.Equal(s.cards[0], e.CardID)

	s.Require().NoError(q.Clear(ctx, 7))
	n, err := q.Length(ctx, 7)
	s.Require().NoError(err)
	s.Equal(0, n)
}

func (s *SessionStoreSuite) TestDuplicates() {
	ctx := context.Background()
	d := s.store.Duplicates()

	missing, err := d.Get(ctx, 7, s.cards[0])
	s.Require().NoError(err)
	s.Nil(missing)

	s.Require().NoError(d.Save(ctx, models.DuplicateStatus{UserID: 7, CardID: s.cards[0], Pending: 2}))
	s.Require().NoError(d.Save(ctx, models.DuplicateStatus{UserID: 7, CardID: s.cards[0], Pending: 1}))

	got, err := d.Get(ctx, 7, s.cards[0])
	s.Require().NoError(err)
	s.Equal(1, got.Pending)

	s.Error(d.Save(ctx, models.DuplicateStatus{UserID: 7, CardID: s.cards[0], Pending: -1}))

	s.Require().NoError(d.Clear(ctx, 7))
	got, err = d.Get(ctx, 7, s.cards[0])
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *SessionStoreSuite) TestInTxRollsBackOnError() {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.store.InTx(ctx, func(tx repository.SessionStore) error {
		if err := tx.LearningQueue().Replace(ctx, 7, s.cards); err != nil {
			return err
		}
		return tx.InTx(ctx, func(inner repository.SessionStore) error {
			if _, err := inner.RepetitionQueue().Append(ctx, 7, s.cards[0]); err != nil {
				return err
			}
			return boom
		})
	})
	s.ErrorIs(err, boom)

	n, err := s.store.LearningQueue().Length(ctx, 7)
	s.Require().NoError(err)
	s.Equal(0, n)
	n, err = s.store.RepetitionQueue().Length(ctx, 7)
	s.Require().NoError(err)
	s.Equal(0, n)
}

func TestSessionStoreSuite(t *testing.T) {
	suite.Run(t, new(SessionStoreSuite))
}
