package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/flashmark/flashmark/internal/domain"
	"github.com/flashmark/flashmark/internal/store"
)

// CreateDeck implements store.Repository.CreateDeck. The name UNIQUE
// constraint enforces uniqueness; no pre-check race.
func (s *Store) CreateDeck(ctx context.Context, name string) (*domain.Deck, error) {
	deck, err := domain.NewDeck(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrValidation, err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO decks (id, name, created_at) VALUES ($1, $2, $3)",
		deck.ID, deck.Name, deck.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDeckNameExists
		}
		return nil, mapError(err, "deck", "insert")
	}
	return deck, nil
}

// GetDeck implements store.Repository.GetDeck.
func (s *Store) GetDeck(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	var deck domain.Deck
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM decks WHERE id = $1", id).
		Scan(&deck.ID, &deck.Name, &deck.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrDeckNotFound
	}
	if err != nil {
		return nil, mapError(err, "deck", "read")
	}
	return &deck, nil
}

// ListDecks implements store.Repository.ListDecks.
func (s *Store) ListDecks(ctx context.Context) ([]*domain.Deck, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM decks ORDER BY created_at ASC")
	if err != nil {
		return nil, mapError(err, "deck", "list")
	}
	defer rows.Close()

	decks := []*domain.Deck{}
	for rows.Next() {
		var deck domain.Deck
		if err := rows.Scan(&deck.ID, &deck.Name, &deck.CreatedAt); err != nil {
			return nil, mapError(err, "deck", "scan")
		}
		decks = append(decks, &deck)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "deck", "list")
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
		"UPDATE decks SET name = $1 WHERE id = $2", probe.Name, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDeckNameExists
		}
		return nil, mapError(err, "deck", "rename")
	}
	if err := checkRowsAffected(res, store.ErrDeckNotFound); err != nil {
		return nil, err
	}
	return s.GetDeck(ctx, id)
}

// DeleteDeck implements store.Repository.DeleteDeck. Cards and reviews
// go with the deck through ON DELETE CASCADE.
func (s *Store) DeleteDeck(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM decks WHERE id = $1", id)
	if err != nil {
		return mapError(err, "deck", "delete")
	}
	return checkRowsAffected(res, store.ErrDeckNotFound)
}
