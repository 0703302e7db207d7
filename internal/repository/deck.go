package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/drawonary-backend/internal/apperror"
)

// DeckRepository is the word catalog. PickWords backs the coordinator's
// word supply: it returns up to count random words of a deck that are
// not in the excluded set. Fewer than count words (possibly none) are
// returned when the deck is running out of unused words.
type DeckRepository interface {
	CreateDeck(ctx context.Context, id, name string, words []string) error
	PickWords(ctx context.Context, deckID string, exclude []string, count int) ([]string, error)
}

type dbDeck struct {
	conn *sql.DB
}

func NewDeckRepository(conn *sql.DB) DeckRepository {
	return &dbDeck{
		conn: conn,
	}
}

func (that *dbDeck) CreateDeck(ctx context.Context, id, name string, words []string) error {
	tx, err := that.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("can't begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO decks (id, name) VALUES (?, ?)`, id, name); err != nil {
		return fmt.Errorf("can't save deck: %w", err)
	}

	for _, word := range words {
		_, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO words (deck_id, word) VALUES (?, ?)`, id, word)
		if err != nil {
			return fmt.Errorf("can't save word: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("can't commit deck: %w", err)
	}

	return nil
}

func (that *dbDeck) PickWords(ctx context.Context, deckID string, exclude []string, count int) ([]string, error) {
	var deckName string

	err := that.conn.QueryRowContext(ctx, `SELECT name FROM decks WHERE id = ?`, deckID).Scan(&deckName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrDeckNotFound, deckID)
	}

	if err != nil {
		return nil, fmt.Errorf("can't find deck: %w", err)
	}

	query := `SELECT word FROM words WHERE deck_id = ?`
	args := make([]any, 0, len(exclude)+2)
	args = append(args, deckID)

	if len(exclude) > 0 {
		placeholders := strings.Repeat("?, ", len(exclude)-1) + "?"
		query += fmt.Sprintf(" AND word NOT IN (%s)", placeholders)

		for _, word := range exclude {
			args = append(args, word)
		}
	}

	query += ` ORDER BY RANDOM() LIMIT ?`
	args = append(args, count)

	rows, err := that.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("can't pick words: %w", err)
	}
	defer rows.Close()

	words := make([]string, 0, count)

	for rows.Next() {
		var word string
		if err = rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("can't scan word: %w", err)
		}

		words = append(words, word)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read words: %w", err)
	}

	return words, nil
}
