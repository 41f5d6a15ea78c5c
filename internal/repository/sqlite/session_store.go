package sqlite

import (
	"context"
	"database/sql"

	"github.com/vytor/flashqueue/internal/repository"
)

type sessionStore struct {
	db *sql.DB
	q  querier
	tx bool
}

// NewSessionStore creates the SQLite-backed session state store
func NewSessionStore(db *sql.DB) repository.SessionStore {
	return &sessionStore{db: db, q: db}
}

func (s *sessionStore) Sessions() repository.SessionRepository {
	return &sessionRepository{q: s.q}
}

func (s *sessionStore) LearningQueue() repository.LearningQueueRepository {
	return &learningQueueRepository{q: s.q}
}

func (s *sessionStore) RepetitionQueue() repository.RepetitionQueueRepository {
	return &repetitionQueueRepository{q: s.q}
}

func (s *sessionStore) Duplicates() repository.DuplicateRepository {
	return &duplicateRepository{q: s.q}
}

func (s *sessionStore) InTx(ctx context.Context, fn func(repository.SessionStore) error) error {
	if s.tx {
		return fn(s)
	}
	return tx(ctx, s.db, func(t *sql.Tx) error {
		return fn(&sessionStore{db: s.db, q: t, tx: true})
	})
}
