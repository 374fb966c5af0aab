package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flashmark/flashmark/internal/domain"
	"github.com/flashmark/flashmark/internal/store"
)

// CreateDeck implements store.Repository.CreateDeck.
func (s *Store) CreateDeck(ctx context.Context, name string) (*domain.Deck, error) {
	deck, err := domain.NewDeck(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrValidation, err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO decks (id, name, created_at) VALUES (?, ?, ?)",
		deck.ID.String(), deck.Name, encodeTime(deck.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDeckNameExists
		}
		return nil, store.StorageError("deck", "insert", err)
	}
	return deck, nil
}

// GetDeck implements store.Repository.GetDeck.
func (s *Store) GetDeck(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM decks WHERE id = ?", id.String())
	deck, err := scanDeck(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrDeckNotFound
	}
	if err != nil {
		return nil, store.StorageError("deck", "read", err)
	}
	return deck, nil
}

// ListDecks implements store.Repository.ListDecks.
func (s *Store) ListDecks(ctx context.Context) ([]*domain.Deck, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM decks ORDER BY created_at ASC")
	if err != nil {
		return nil, store.StorageError("deck", "list", err)
	}
	defer rows.Close()

	var decks []*domain.Deck
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, store.StorageError("deck", "scan", err)
		}
		decks = append(decks, deck)
	}
	if err := rows.Err(); err != nil {
		return nil, store.StorageError("deck", "list", err)
	}
	if decks == nil {
		decks = []*domain.Deck{}
	}
	return decks, nil
}

// RenameDeck implements store.Repository.RenameDeck.
func (s *Store) RenameDeck(ctx context.Context, id uuid.UUID, name string) (*domain.Deck, error) {
	probe := domain.Deck{ID: id}
	if err := probe.Rename(name); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrValidation, err)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE decks SET name = ? WHERE id = ?", probe.Name, id.String())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDeckNameExists
		}
		return nil, store.StorageError("deck", "rename", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, store.StorageError("deck", "rename", err)
	}
	if affected == 0 {
		return nil, store.ErrDeckNotFound
	}
	return s.GetDeck(ctx, id)
}

// DeleteDeck implements store.Repository.DeleteDeck. The cascade to
// cards and reviews happens explicitly inside one transaction so it
// holds even when the foreign_keys pragma is off.
func (s *Store) DeleteDeck(ctx context.Context, id uuid.UUID) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"DELETE FROM reviews WHERE card_id IN (SELECT id FROM cards WHERE deck_id = ?)",
			id.String())
		if err != nil {
			return store.StorageError("review", "delete", err)
		}

		_, err = tx.ExecContext(ctx, "DELETE FROM cards WHERE deck_id = ?", id.String())
		if err != nil {
			return store.StorageError("card", "delete", err)
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM decks WHERE id = ?", id.String())
		if err != nil {
			return store.StorageError("deck", "delete", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return store.StorageError("deck", "delete", err)
		}
		if affected == 0 {
			return store.ErrDeckNotFound
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeck(row rowScanner) (*domain.Deck, error) {
	var (
		idStr     string
		name      string
		createdAt string
	)
	if err := row.Scan(&idStr, &name, &createdAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parsing deck id: %w", err)
	}
	created, err := decodeTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing deck created_at: %w", err)
	}
	return &domain.Deck{ID: id, Name: name, CreatedAt: created}, nil
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
