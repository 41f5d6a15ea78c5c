package services_test

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashqueue/internal/errors"
	"github.com/vytor/flashqueue/internal/repository/sqlite"
	"github.com/vytor/flashqueue/internal/services"
	"github.com/vytor/flashqueue/internal/testutil"
)

func TestLearningQueue_InsertDuplicateKeepsDensityAndCards(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	ctx := context.Background()
	_, cards := testutil.SeedDeck(t, db, "Twenty", 20)

	store := sqlite.NewSessionStore(db)
	queue := services.NewLearningQueue(store, nil)
	require.NoError(t, queue.Initialize(ctx, userID, cards))

	shuffled := make([]int64, 0, len(cards))
	for pos := 1; pos <= len(cards); pos++ {
		id, err := queue.Get(ctx, userID, pos)
		require.NoError(t, err)
		shuffled = append(shuffled, id)
	}
	sort.Slice(shuffled, func(i, j int) bool { return shuffled[i] < shuffled[j] })
	assert.Equal(t, cards, shuffled, "initialize must be a permutation of the deck")

	expected := len(cards)
	for _, step := range []struct{ source, copies int }{{1, 2}, {3, 1}, {10, 2}, {22, 1}, {25, 2}} {
		before, err := store.LearningQueue().List(ctx, userID)
		require.NoError(t, err)

		require.NoError(t, queue.InsertDuplicate(ctx, userID, step.source, step.copies))
		expected += step.copies

		after, err := store.LearningQueue().List(ctx, userID)
		require.NoError(t, err)
		require.Len(t, after, expected)
		for i, e := range after {
			assert.Equal(t, i+1, e.Position)
		}

		counts := map[int64]int{}
		for _, e := range after {
			counts[e.CardID]++
		}
		for _, e := range before {
			counts[e.CardID]--
		}
		duplicated := before[step.source-1].CardID
		for id, diff := range counts {
			if id == duplicated {
				assert.Equal(t, step.copies, diff)
			} else {
				assert.Zero(t, diff, "card %d changed count", id)
			}
		}
	}

	_, err := queue.Get(ctx, userID, expected+1)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestRepetitionQueue_EnqueueIfAbsent(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	ctx := context.Background()
	_, cards := testutil.SeedDeck(t, db, "Two", 2)

	queue := services.NewRepetitionQueue(sqlite.NewSessionStore(db))

	added, err := queue.EnqueueIfAbsent(ctx, userID, cards[1])
	require.NoError(t, err)
	assert.True(t, added)

	added, err = queue.EnqueueIfAbsent(ctx, userID, cards[1])
	require.NoError(t, err)
	assert.False(t, added)

	added, err = queue.EnqueueIfAbsent(ctx, userID, cards[0])
	require.NoError(t, err)
	assert.True(t, added)

	n, err := queue.Length(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	id, err := queue.Get(ctx, userID, 1)
	require.NoError(t, err)
	assert.Equal(t, cards[1], id)
}

func TestDuplicateTracker(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	ctx := context.Background()
	_, cards := testutil.SeedDeck(t, db, "One", 1)
	card := cards[0]

	store := sqlite.NewSessionStore(db)
	tracker := services.NewDuplicateTracker(store)

	require.NoError(t, tracker.DecrementIfExists(ctx, userID, card))
	status, err := store.Duplicates().Get(ctx, userID, card)
	require.NoError(t, err)
	assert.Nil(t, status, "easy on a fresh card leaves no record")

	net, first, err := tracker.Reconcile(ctx, userID, card, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, net)
	assert.True(t, first)

	net, first, err = tracker.Reconcile(ctx, userID, card, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, net)
	assert.False(t, first)

	require.NoError(t, tracker.DecrementIfExists(ctx, userID, card))
	require.NoError(t, tracker.DecrementIfExists(ctx, userID, card))
	status, err = store.Duplicates().Get(ctx, userID, card)
	require.NoError(t, err)
	assert.Equal(t, 0, status.Pending)

	net, first, err = tracker.Reconcile(ctx, userID, card, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, net)
	assert.False(t, first)
}
