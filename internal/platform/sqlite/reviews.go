package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/flashmark/flashmark/internal/domain"
	"github.com/flashmark/flashmark/internal/store"
)

// ApplyReview implements store.Repository.ApplyReview. The card update
// and the review insert share one transaction; either both commit or
// neither does.
func (s *Store) ApplyReview(ctx context.Context, card *domain.Card, review *domain.Review) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrValidation, err)
	}
	if err := review.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrValidation, err)
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.updateCard(ctx, tx, card); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO reviews (id, card_id, grade, reviewed_at, interval_applied, ef_after)
			VALUES (?, ?, ?, ?, ?, ?)`,
			review.ID.String(), review.CardID.String(), review.Grade.Score(),
			encodeTime(review.ReviewedAt), review.IntervalApplied, review.EFAfter)
		if err != nil {
			return store.StorageError("review", "insert", err)
		}
		return nil
	})
}

// ListReviews implements store.Repository.ListReviews.
func (s *Store) ListReviews(ctx context.Context, f store.ReviewFilter) ([]*domain.Review, error) {
	query := "SELECT id, card_id, grade, reviewed_at, interval_applied, ef_after FROM reviews"
	var (
		clauses []string
		args    []any
	)
	if f.CardID != nil {
		clauses = append(clauses, "card_id = ?")
		args = append(args, f.CardID.String())
	}
	if f.From != nil {
		clauses = append(clauses, "reviewed_at >= ?")
		args = append(args, encodeTime(*f.From))
	}
	if f.To != nil {
		clauses = append(clauses, "reviewed_at < ?")
		args = append(args, encodeTime(*f.To))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY reviewed_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.StorageError("review", "list", err)
	}
	defer rows.Close()

	reviews := []*domain.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, store.StorageError("review", "scan", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, store.StorageError("review", "list", err)
	}
	return reviews, nil
}

func scanReview(row rowScanner) (*domain.Review, error) {
	var (
		idStr, cardStr  string
		gradeScore      int
		reviewedAt      string
		intervalApplied int
		efAfter         float64
	)
	if err := row.Scan(&idStr, &cardStr, &gradeScore, &reviewedAt, &intervalApplied, &efAfter); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parsing review id: %w", err)
	}
	cardID, err := uuid.Parse(cardStr)
	if err != nil {
		return nil, fmt.Errorf("parsing review card_id: %w", err)
	}
	grade, err := domain.GradeFromScore(gradeScore)
	if err != nil {
		return nil, fmt.Errorf("decoding review grade: %w", err)
	}
	reviewed, err := decodeTime(reviewedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing review reviewed_at: %w", err)
	}

	return &domain.Review{
		ID:              id,
		CardID:          cardID,
		Grade:           grade,
		ReviewedAt:      reviewed,
		IntervalApplied: intervalApplied,
		EFAfter:         efAfter,
	}, nil
}
