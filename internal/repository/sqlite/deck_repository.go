package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/vytor/flashqueue/internal/logger"
	"github.com/vytor/flashqueue/internal/models"
	"github.com/vytor/flashqueue/internal/repository"
)

type deckRepository struct {
	db *sqlx.DB
}

// NewDeckRepository creates the SQLite-backed card store
func NewDeckRepository(db *sql.DB) repository.DeckRepository {
	return &deckRepository{db: sqlx.NewDb(db, "sqlite3")}
}

func (r *deckRepository) List(ctx context.Context) ([]models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("listing decks")

	var decks []models.Deck
	err := r.db.SelectContext(ctx, &decks, `
SELECT d.id, d.title, d.description, d.created_at, COUNT(c.id) AS card_count
FROM decks d
LEFT JOIN cards c ON c.deck_id = d.id
GROUP BY d.id
ORDER BY d.id ASC`)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, err
	}
	log.Debug("found %d decks", len(decks))
	return decks, nil
}

func (r *deckRepository) Get(ctx context.Context, id int64) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")

	var d models.Deck
	err := r.db.GetContext(ctx, &d, `
SELECT d.id, d.title, d.description, d.created_at,
    (SELECT COUNT(*) FROM cards c WHERE c.deck_id = d.id) AS card_count
FROM decks d
WHERE d.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("deck not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get deck %d: %v", id, err)
		return nil, err
	}
	return &d, nil
}

func (r *deckRepository) Cards(ctx context.Context, deckID int64) ([]models.Card, error) {
	var cards []models.Card
	err := r.db.SelectContext(ctx, &cards,
		`SELECT id, deck_id, question, answer, created_at FROM cards WHERE deck_id = ? ORDER BY id ASC`, deckID)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("deck_repo").Error("failed to list cards of deck %d: %v", deckID, err)
		return nil, err
	}
	return cards, nil
}

func (r *deckRepository) Card(ctx context.Context, id int64) (*models.Card, error) {
	var c models.Card
	err := r.db.GetContext(ctx, &c,
		`SELECT id, deck_id, question, answer, created_at FROM cards WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("deck_repo").Error("failed to get card %d: %v", id, err)
		return nil, err
	}
	return &c, nil
}

func (r *deckRepository) Insert(ctx context.Context, deck models.Deck) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("inserting deck: title=%s", deck.Title)

	res, err := r.db.NamedExecContext(ctx,
		`INSERT INTO decks (title, description) VALUES (:title, :description)`, deck)
	if err != nil {
		log.Error("failed to insert deck: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

func (r *deckRepository) InsertCards(ctx context.Context, deckID int64, cards []models.Card) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("inserting %d cards into deck %d", len(cards), deckID)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	for _, c := range cards {
		c.DeckID = deckID
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO cards (deck_id, question, answer) VALUES (:deck_id, :question, :answer)`, c); err != nil {
			_ = tx.Rollback()
			log.Error("failed to insert card: %v", err)
			return err
		}
	}
	return tx.Commit()
}
