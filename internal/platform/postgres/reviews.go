package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

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
			VALUES ($1, $2, $3, $4, $5, $6)`,
			review.ID, review.CardID, review.Grade.Score(), review.ReviewedAt,
			review.IntervalApplied, review.EFAfter)
		if err != nil {
			return mapError(err, "review", "insert")
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
		args = append(args, *f.CardID)
		clauses = append(clauses, fmt.Sprintf("card_id = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		clauses = append(clauses, fmt.Sprintf("reviewed_at >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		clauses = append(clauses, fmt.Sprintf("reviewed_at < $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY reviewed_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "review", "list")
	}
	defer rows.Close()

	reviews := []*domain.Review{}
	for rows.Next() {
		var (
			review     domain.Review
			gradeScore int
		)
		err := rows.Scan(&review.ID, &review.CardID, &gradeScore,
			&review.ReviewedAt, &review.IntervalApplied, &review.EFAfter)
		if err != nil {
			return nil, mapError(err, "review", "scan")
		}
		grade, err := domain.GradeFromScore(gradeScore)
		if err != nil {
			return nil, store.StorageError("review", "decode grade", err)
		}
		review.Grade = grade
		review.ReviewedAt = review.ReviewedAt.UTC()
		reviews = append(reviews, &review)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "review", "list")
	}
	return reviews, nil
}
