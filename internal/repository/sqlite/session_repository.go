package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashqueue/internal/logger"
	"github.com/vytor/flashqueue/internal/models"
)

var sessionColumns = []string{
	"user_id", "deck_id", "cursor", "started_at", "ended_at", "hard_count", "hardest_count", "updated_at",
}

type sessionRepository struct {
	q querier
}

type sessionScanner interface {
	Scan(dest ...any) error
}

func scanSession(row sessionScanner) (*models.UserSession, error) {
	var s models.UserSession
	var cursor sql.NullInt64
	var startedAt, endedAt sql.NullTime
	if err := row.Scan(&s.UserID, &s.DeckID, &cursor, &startedAt, &endedAt, &s.HardCount, &s.HardestCount, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if cursor.Valid {
		c := int(cursor.Int64)
		s.Cursor = &c
	}
	if startedAt.Valid {
		s.StartedAt = startedAt.Time
	}
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}
	return &s, nil
}

func (r *sessionRepository) Get(ctx context.Context, userID int64) (*models.UserSession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("getting session: user_id=%d", userID)

	row, err := queryRow(ctx, r.q, sqlBuilder.Select(sessionColumns...).From("user_sessions").Where(squirrel.Eq{"user_id": userID}))
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no session record: user_id=%d", userID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	return s, nil
}

func (r *sessionRepository) Save(ctx context.Context, s models.UserSession) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("saving session: user_id=%d, active=%t", s.UserID, s.Active())

	var cursor sql.NullInt64
	if s.Cursor != nil {
		cursor = sql.NullInt64{Int64: int64(*s.Cursor), Valid: true}
	}
	var endedAt sql.NullTime
	if s.EndedAt != nil {
		endedAt = sql.NullTime{Time: *s.EndedAt, Valid: true}
	}
	startedAt := sql.NullTime{Time: s.StartedAt, Valid: !s.StartedAt.IsZero()}
	updatedAt := s.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := exec(ctx, r.q, sqlBuilder.Insert("user_sessions").
		Columns(sessionColumns...).
		Values(s.UserID, s.DeckID, cursor, startedAt, endedAt, s.HardCount, s.HardestCount, updatedAt).
		Suffix(`ON CONFLICT(user_id) DO UPDATE SET
    deck_id = excluded.deck_id,
    cursor = excluded.cursor,
    started_at = excluded.started_at,
    ended_at = excluded.ended_at,
    hard_count = excluded.hard_count,
    hardest_count = excluded.hardest_count,
    updated_at = excluded.updated_at`))
	if err != nil {
		log.Error("failed to save session: %v", err)
	}
	return err
}

func (r *sessionRepository) ListIdle(ctx context.Context, before time.Time) ([]models.UserSession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("listing active sessions idle since %s", before.Format(time.RFC3339))

	query, args, err := sqlBuilder.Select(sessionColumns...).
		From("user_sessions").
		Where("cursor IS NOT NULL").
		Where(squirrel.Lt{"updated_at": before}).
		OrderBy("updated_at ASC").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list idle sessions: %v", err)
		return nil, err
	}
	defer rows.Close()
	var sessions []models.UserSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			log.Error("failed to scan session row: %v", err)
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	log.Debug("found %d idle sessions", len(sessions))
	return sessions, rows.Err()
}
