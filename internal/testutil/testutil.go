package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashqueue/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// A single connection keeps every query on the same in-memory database.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.ApplyMigrations(context.Background(), sqlDB), "failed to apply migrations")
	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// SeedDeck inserts a deck with n generated cards and returns the deck id and
// card ids in insertion order.
func SeedDeck(t *testing.T, sqlDB *sql.DB, title string, n int) (int64, []int64) {
	ctx := context.Background()
	res, err := sqlDB.ExecContext(ctx, `INSERT INTO decks (title, description) VALUES (?, ?)`, title, "seeded")
	require.NoError(t, err)
	deckID, err := res.LastInsertId()
	require.NoError(t, err)

	ids := make([]int64, 0, n)
	for i := 1; i <= n; i++ {
		res, err := sqlDB.ExecContext(ctx, `INSERT INTO cards (deck_id, question, answer) VALUES (?, ?, ?)`,
			deckID, fmt.Sprintf("Q%d", i), fmt.Sprintf("A%d", i))
		require.NoError(t, err)
		id, err := res.LastInsertId()
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return deckID, ids
}
