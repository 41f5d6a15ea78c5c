package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashqueue/internal/logger"
	"github.com/vytor/flashqueue/internal/models"
)

const (
	learningQueueTable   = "learning_queue"
	repetitionQueueTable = "repetition_queue"

	// keeps multi-row inserts under SQLite's bound parameter limit
	insertChunkSize = 300
)

func getEntry(ctx context.Context, q querier, table string, userID int64, position int) (*models.QueueEntry, error) {
	row, err := queryRow(ctx, q, sqlBuilder.Select("user_id", "position", "card_id").
		From(table).
		Where(squirrel.Eq{"user_id": userID, "position": position}))
	if err != nil {
		return nil, err
	}
	var e models.QueueEntry
	if err := row.Scan(&e.UserID, &e.Position, &e.CardID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func listEntries(ctx context.Context, q querier, table string, userID int64) ([]models.QueueEntry, error) {
	query, args, err := sqlBuilder.Select("user_id", "position", "card_id").
		From(table).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.QueueEntry
	for rows.Next() {
		var e models.QueueEntry
		if err := rows.Scan(&e.UserID, &e.Position, &e.CardID); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func clearEntries(ctx context.Context, q querier, table string, userID int64) error {
	_, err := exec(ctx, q, sqlBuilder.Delete(table).Where(squirrel.Eq{"user_id": userID}))
	return err
}

type learningQueueRepository struct {
	q querier
}

func (r *learningQueueRepository) Replace(ctx context.Context, userID int64, cardIDs []int64) error {
	log := logger.FromContext(ctx).WithPrefix("learning_queue_repo")
	log.Debug("replacing learning queue: user_id=%d, cards=%d", userID, len(cardIDs))

	if err := clearEntries(ctx, r.q, learningQueueTable, userID); err != nil {
		log.Error("failed to clear learning queue: %v", err)
		return err
	}

	for start := 0; start < len(cardIDs); start += insertChunkSize {
		end := min(start+insertChunkSize, len(cardIDs))
		insert := sqlBuilder.Insert(learningQueueTable).Columns("user_id", "position", "card_id")
		for i := start; i < end; i++ {
			insert = insert.Values(userID, i+1, cardIDs[i])
		}
		if _, err := exec(ctx, r.q, insert); err != nil {
			log.Error("failed to insert learning queue chunk at %d: %v", start, err)
			return err
		}
	}
	return nil
}

func (r *learningQueueRepository) Get(ctx context.Context, userID int64, position int) (*models.QueueEntry, error) {
	e, err := getEntry(ctx, r.q, learningQueueTable, userID, position)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("learning_queue_repo").Error("failed to get entry %d: %v", position, err)
	}
	return e, err
}

func (r *learningQueueRepository) Length(ctx context.Context, userID int64) (int, error) {
	return count(ctx, r.q, learningQueueTable, userID)
}

// InsertAt places cardID at position, shifting every entry at or after it
// up by one. Positions are first negated so the primary key never collides
// mid-update.
func (r *learningQueueRepository) InsertAt(ctx context.Context, userID int64, position int, cardID int64) error {
	log := logger.FromContext(ctx).WithPrefix("learning_queue_repo")

	length, err := r.Length(ctx, userID)
	if err != nil {
		return err
	}
	if position < 1 || position > length+1 {
		return fmt.Errorf("insert position %d out of range 1..%d", position, length+1)
	}
	log.Debug("inserting card: user_id=%d, card_id=%d, position=%d, length=%d", userID, cardID, position, length)

	if position <= length {
		if _, err := exec(ctx, r.q, sqlBuilder.Update(learningQueueTable).
			Set("position", squirrel.Expr("-(position + 1)")).
			Where(squirrel.Eq{"user_id": userID}).
			Where(squirrel.GtOrEq{"position": position})); err != nil {
			log.Error("failed to shift learning queue: %v", err)
			return err
		}
		if _, err := exec(ctx, r.q, sqlBuilder.Update(learningQueueTable).
			Set("position", squirrel.Expr("-position")).
			Where(squirrel.Eq{"user_id": userID}).
			Where(squirrel.Lt{"position": 0})); err != nil {
			log.Error("failed to restore shifted positions: %v", err)
			return err
		}
	}

	if _, err := exec(ctx, r.q, sqlBuilder.Insert(learningQueueTable).
		Columns("user_id", "position", "card_id").
		Values(userID, position, cardID)); err != nil {
		log.Error("failed to insert learning queue entry: %v", err)
		return err
	}
	return nil
}

func (r *learningQueueRepository) List(ctx context.Context, userID int64) ([]models.QueueEntry, error) {
	return listEntries(ctx, r.q, learningQueueTable, userID)
}

func (r *learningQueueRepository) Clear(ctx context.Context, userID int64) error {
	return clearEntries(ctx, r.q, learningQueueTable, userID)
}

type repetitionQueueRepository struct {
	q querier
}

func (r *repetitionQueueRepository) Contains(ctx context.Context, userID, cardID int64) (bool, error) {
	row, err := queryRow(ctx, r.q, sqlBuilder.Select("1").
		From(repetitionQueueTable).
		Where(squirrel.Eq{"user_id": userID, "card_id": cardID}))
	if err != nil {
		return false, err
	}
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Append adds cardID at the tail and returns its position.
func (r *repetitionQueueRepository) Append(ctx context.Context, userID, cardID int64) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("repetition_queue_repo")

	length, err := r.Length(ctx, userID)
	if err != nil {
		return 0, err
	}
	position := length + 1
	if _, err := exec(ctx, r.q, sqlBuilder.Insert(repetitionQueueTable).
		Columns("user_id", "position", "card_id").
		Values(userID, position, cardID)); err != nil {
		log.Error("failed to append card %d: %v", cardID, err)
		return 0, err
	}
	log.Debug("appended card: user_id=%d, card_id=%d, position=%d", userID, cardID, position)
	return position, nil
}

func (r *repetitionQueueRepository) Get(ctx context.Context, userID int64, position int) (*models.QueueEntry, error) {
	return getEntry(ctx, r.q, repetitionQueueTable, userID, position)
}

func (r *repetitionQueueRepository) Length(ctx context.Context, userID int64) (int, error) {
	return count(ctx, r.q, repetitionQueueTable, userID)
}

func (r *repetitionQueueRepository) List(ctx context.Context, userID int64) ([]models.QueueEntry, error) {
	return listEntries(ctx, r.q, repetitionQueueTable, userID)
}

func (r *repetitionQueueRepository) Clear(ctx context.Context, userID int64) error {
	return clearEntries(ctx, r.q, repetitionQueueTable, userID)
}
