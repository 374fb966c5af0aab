package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flashmark/flashmark/internal/domain"
	"github.com/flashmark/flashmark/internal/domain/filter"
	"github.com/flashmark/flashmark/internal/store"
)

const cardColumns = `id, deck_id, front, back, hint, tags, reps, interval_days, ef,
due_at, last_grade, last_reviewed_at, suspended, created_at`

// AddCard implements store.Repository.AddCard.
func (s *Store) AddCard(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrValidation, err)
	}

	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM decks WHERE id = ?", card.DeckID.String()).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrDeckNotFound
	}
	if err != nil {
		return store.StorageError("deck", "read", err)
	}

	args, err := cardArgs(card)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...)
	if err != nil {
		return store.StorageError("card", "insert", err)
	}
	return nil
}

// GetCard implements store.Repository.GetCard.
func (s *Store) GetCard(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+cardColumns+" FROM cards WHERE id = ?", id.String())
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrCardNotFound
	}
	if err != nil {
		return nil, store.StorageError("card", "read", err)
	}
	return card, nil
}

// ListCards implements store.Repository.ListCards.
func (s *Store) ListCards(ctx context.Context, deckID *uuid.UUID) ([]*domain.Card, error) {
	query := "SELECT " + cardColumns + " FROM cards"
	var args []any
	if deckID != nil {
		query += " WHERE deck_id = ?"
		args = append(args, deckID.String())
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.StorageError("card", "list", err)
	}
	defer rows.Close()

	cards := []*domain.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, store.StorageError("card", "scan", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, store.StorageError("card", "list", err)
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

// updateCard runs against either the pooled handle or a transaction.
func (s *Store) updateCard(ctx context.Context, db store.DBTX, card *domain.Card) error {
	tags, err := json.Marshal(card.Tags)
	if err != nil {
		return store.StorageError("card", "encode tags", err)
	}

	res, err := db.ExecContext(ctx, `
		UPDATE cards SET
		  deck_id = ?, front = ?, back = ?, hint = ?, tags = ?, reps = ?,
		  interval_days = ?, ef = ?, due_at = ?, last_grade = ?,
		  last_reviewed_at = ?, suspended = ?
		WHERE id = ?`,
		card.DeckID.String(), card.Front, card.Back, nullString(card.Hint),
		string(tags), card.Reps, card.IntervalDays, card.EaseFactor,
		encodeTime(card.DueAt), nullGrade(card.LastGrade),
		nullTime(card.LastReviewedAt), boolToInt(card.Suspended),
		card.ID.String())
	if err != nil {
		return store.StorageError("card", "update", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return store.StorageError("card", "update", err)
	}
	if affected == 0 {
		return store.ErrCardNotFound
	}
	return nil
}

// DeleteCard implements store.Repository.DeleteCard.
func (s *Store) DeleteCard(ctx context.Context, id uuid.UUID) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE card_id = ?", id.String())
		if err != nil {
			return store.StorageError("review", "delete", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM cards WHERE id = ?", id.String())
		if err != nil {
			return store.StorageError("card", "delete", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return store.StorageError("card", "delete", err)
		}
		if affected == 0 {
			return store.ErrCardNotFound
		}
		return nil
	})
}

// SetSuspended implements store.Repository.SetSuspended.
func (s *Store) SetSuspended(ctx context.Context, id uuid.UUID, suspended bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE cards SET suspended = ? WHERE id = ?", boolToInt(suspended), id.String())
	if err != nil {
		return store.StorageError("card", "suspend", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return store.StorageError("card", "suspend", err)
	}
	if affected == 0 {
		return store.ErrCardNotFound
	}
	return nil
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

func cardArgs(card *domain.Card) ([]any, error) {
	tags, err := json.Marshal(card.Tags)
	if err != nil {
		return nil, store.StorageError("card", "encode tags", err)
	}
	return []any{
		card.ID.String(), card.DeckID.String(), card.Front, card.Back,
		nullString(card.Hint), string(tags), card.Reps, card.IntervalDays,
		card.EaseFactor, encodeTime(card.DueAt), nullGrade(card.LastGrade),
		nullTime(card.LastReviewedAt), boolToInt(card.Suspended),
		encodeTime(card.CreatedAt),
	}, nil
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		idStr, deckStr, front, back string
		hint                        sql.NullString
		tagsJSON                    string
		reps, intervalDays          int
		ef                          float64
		dueAt                       string
		lastGrade                   sql.NullInt64
		lastReviewedAt              sql.NullString
		suspended                   int
		createdAt                   string
	)
	err := row.Scan(&idStr, &deckStr, &front, &back, &hint, &tagsJSON,
		&reps, &intervalDays, &ef, &dueAt, &lastGrade, &lastReviewedAt,
		&suspended, &createdAt)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parsing card id: %w", err)
	}
	deckID, err := uuid.Parse(deckStr)
	if err != nil {
		return nil, fmt.Errorf("parsing card deck_id: %w", err)
	}

	var tags []string
	if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
		return nil, fmt.Errorf("decoding card tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}

	due, err := decodeTime(dueAt)
	if err != nil {
		return nil, fmt.Errorf("parsing card due_at: %w", err)
	}
	created, err := decodeTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing card created_at: %w", err)
	}

	card := &domain.Card{
		ID:           id,
		DeckID:       deckID,
		Front:        front,
		Back:         back,
		Hint:         hint.String,
		Tags:         tags,
		Reps:         reps,
		IntervalDays: intervalDays,
		EaseFactor:   ef,
		DueAt:        due,
		Suspended:    suspended != 0,
		CreatedAt:    created,
	}

	if lastGrade.Valid {
		grade, err := domain.GradeFromScore(int(lastGrade.Int64))
		if err != nil {
			return nil, fmt.Errorf("decoding card last_grade: %w", err)
		}
		card.LastGrade = grade
	}
	if lastReviewedAt.Valid {
		reviewed, err := decodeTime(lastReviewedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing card last_reviewed_at: %w", err)
		}
		card.LastReviewedAt = &reviewed
	}
	return card, nil
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

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: encodeTime(*t), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
