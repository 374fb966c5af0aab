package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/flashmark/flashmark/internal/domain"
	"github.com/flashmark/flashmark/internal/domain/filter"
	"github.com/flashmark/flashmark/internal/store"
)

const cardColumns = `id, deck_id, front, back, hint, tags, reps, interval_days, ef,
due_at, last_grade, last_reviewed_at, suspended, created_at`

// AddCard implements store.Repository.AddCard. A missing deck surfaces
// through the deck_id foreign key.
func (s *Store) AddCard(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrValidation, err)
	}

	tags, err := json.Marshal(card.Tags)
	if err != nil {
		return store.StorageError("card", "encode tags", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		card.ID, card.DeckID, card.Front, card.Back, nullString(card.Hint),
		tags, card.Reps, card.IntervalDays, card.EaseFactor, card.DueAt,
		nullGrade(card.LastGrade), card.LastReviewedAt, card.Suspended,
		card.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrDeckNotFound
		}
		return mapError(err, "card", "insert")
	}
	return nil
}

// GetCard implements store.Repository.GetCard.
func (s *Store) GetCard(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+cardColumns+" FROM cards WHERE id = $1", id)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrCardNotFound
	}
	if err != nil {
		return nil, mapError(err, "card", "read")
	}
	return card, nil
}

// ListCards implements store.Repository.ListCards.
func (s *Store) ListCards(ctx context.Context, deckID *uuid.UUID) ([]*domain.Card, error) {
	query := "SELECT " + cardColumns + " FROM cards"
	var args []any
	if deckID != nil {
		query += " WHERE deck_id = $1"
		args = append(args, *deckID)
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "card", "list")
	}
	defer rows.Close()

	cards := []*domain.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, mapError(err, "card", "scan")
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "card", "list")
	}
	return cards, nil
}

// UpdateCard implements store.Repository.UpdateCard.
func (s *Store) UpdateCard(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrValidation, err)
	}
	return s.updateCard(ctx, s.db, card)
}

func (s *Store) updateCard(ctx context.Context, db store.DBTX, card *domain.Card) error {
	tags, err := json.Marshal(card.Tags)
	if err != nil {
		return store.StorageError("card", "encode tags", err)
	}

	res, err := db.ExecContext(ctx, `
		UPDATE cards SET
		  deck_id = $1, front = $2, back = $3, hint = $4, tags = $5,
		  reps = $6, interval_days = $7, ef = $8, due_at = $9,
		  last_grade = $10, last_reviewed_at = $11, suspended = $12
		WHERE id = $13`,
		card.DeckID, card.Front, card.Back, nullString(card.Hint), tags,
		card.Reps, card.IntervalDays, card.EaseFactor, card.DueAt,
		nullGrade(card.LastGrade), card.LastReviewedAt, card.Suspended,
		card.ID)
	if err != nil {
		return mapError(err, "card", "update")
	}
	return checkRowsAffected(res, store.ErrCardNotFound)
}

// DeleteCard implements store.Repository.DeleteCard. Reviews cascade.
func (s *Store) DeleteCard(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM cards WHERE id = $1", id)
	if err != nil {
		return mapError(err, "card", "delete")
	}
	return checkRowsAffected(res, store.ErrCardNotFound)
}

// SetSuspended implements store.Repository.SetSuspended.
func (s *Store) SetSuspended(ctx context.Context, id uuid.UUID, suspended bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE cards SET suspended = $1 WHERE id = $2", suspended, id)
	if err != nil {
		return mapError(err, "card", "suspend")
	}
	return checkRowsAffected(res, store.ErrCardNotFound)
}

// DueCards implements store.Repository.DueCards. The deck restriction
// is pushed into SQL; the due predicate itself runs through the filter
// engine so all backends share its exact semantics.
func (s *Store) DueCards(ctx context.Context, q store.DueQuery) ([]*domain.Card, error) {
	cards, err := s.ListCards(ctx, q.DeckID)
	if err != nil {
		return nil, err
	}
	return filter.SelectDue(cards, q.DueOptions), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		card           domain.Card
		hint           sql.NullString
		tagsJSON       []byte
		lastGrade      sql.NullInt64
		lastReviewedAt sql.NullTime
	)
	err := row.Scan(&card.ID, &card.DeckID, &card.Front, &card.Back, &hint,
		&tagsJSON, &card.Reps, &card.IntervalDays, &card.EaseFactor,
		&card.DueAt, &lastGrade, &lastReviewedAt, &card.Suspended,
		&card.CreatedAt)
	if err != nil {
		return nil, err
	}

	card.Hint = hint.String
	if err := json.Unmarshal(tagsJSON, &card.Tags); err != nil {
		return nil, fmt.Errorf("decoding card tags: %w", err)
	}
	if card.Tags == nil {
		card.Tags = []string{}
	}
	if lastGrade.Valid {
		grade, err := domain.GradeFromScore(int(lastGrade.Int64))
		if err != nil {
			return nil, fmt.Errorf("decoding card last_grade: %w", err)
		}
		card.LastGrade = grade
	}
	if lastReviewedAt.Valid {
		reviewed := lastReviewedAt.Time.UTC()
		card.LastReviewedAt = &reviewed
	}
	card.DueAt = card.DueAt.UTC()
	card.CreatedAt = card.CreatedAt.UTC()
	return &card, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullGrade(g domain.Grade) sql.NullInt64 {
	if g == "" {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(g.Score()), Valid: true}
}
