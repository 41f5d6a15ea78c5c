package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashqueue/internal/logger"
	"github.com/vytor/flashqueue/internal/models"
)

type duplicateRepository struct {
	q querier
}

func (r *duplicateRepository) Get(ctx context.Context, userID, cardID int64) (*models.DuplicateStatus, error) {
	row, err := queryRow(ctx, r.q, sqlBuilder.Select("user_id", "card_id", "pending").
		From("duplicate_status").
		Where(squirrel.Eq{"user_id": userID, "card_id": cardID}))
	if err != nil {
		return nil, err
	}
	var s models.DuplicateStatus
	if err := row.Scan(&s.UserID, &s.CardID, &s.Pending); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.FromContext(ctx).WithPrefix("duplicate_repo").Error("failed to get duplicate status: %v", err)
		return nil, err
	}
	return &s, nil
}

func (r *duplicateRepository) Save(ctx context.Context, status models.DuplicateStatus) error {
	log := logger.FromContext(ctx).WithPrefix("duplicate_repo")
	log.Debug("saving duplicate status: user_id=%d, card_id=%d, pending=%d", status.UserID, status.CardID, status.Pending)

	_, err := exec(ctx, r.q, sqlBuilder.Insert("duplicate_status").
		Columns("user_id", "card_id", "pending").
		Values(status.UserID, status.CardID, status.Pending).
		Suffix("ON CONFLICT(user_id, card_id) DO UPDATE SET pending = excluded.pending"))
	if err != nil {
		log.Error("failed to save duplicate status: %v", err)
	}
	return err
}

func (r *duplicateRepository) Clear(ctx context.Context, userID int64) error {
	_, err := exec(ctx, r.q, sqlBuilder.Delete("duplicate_status").Where(squirrel.Eq{"user_id": userID}))
	return err
}
