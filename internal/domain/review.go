package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Review-specific validation errors
var (
	// ErrReviewIDEmpty is returned when a review ID is empty or nil.
	ErrReviewIDEmpty = errors.New("review ID cannot be empty")

	// ErrReviewCardIDEmpty is returned when a review's card ID is empty or nil.
	ErrReviewCardIDEmpty = errors.New("review card ID cannot be empty")

	// ErrReviewIntervalInvalid is returned when the applied interval is below one day.
	ErrReviewIntervalInvalid = errors.New("review interval applied must be at least 1 day")
)

// Review is the historical record of one grading of one card. Reviews
// are append-only: they are produced exclusively by the scheduler, never
// mutated, and deleted only when their card is deleted.
type Review struct {
	ID              uuid.UUID `json:"id"`
	CardID          uuid.UUID `json:"card_id"`
	Grade           Grade     `json:"grade"`
	ReviewedAt      time.Time `json:"reviewed_at"`
	IntervalApplied int       `json:"interval_applied"`
	EFAfter         float64   `json:"ef_after"`
}

// NewReview creates a Review for the given card with the applied interval
// and post-update ease factor. Returns an error if validation fails.
func NewReview(
	cardID uuid.UUID,
	grade Grade,
	reviewedAt time.Time,
	intervalApplied int,
	efAfter float64,
) (*Review, error) {
	review := &Review{
		ID:              uuid.New(),
		CardID:          cardID,
		Grade:           grade,
		ReviewedAt:      reviewedAt,
		IntervalApplied: intervalApplied,
		EFAfter:         efAfter,
	}

	if err := review.Validate(); err != nil {
		return nil, err
	}

	return review, nil
}

// Validate checks if the Review has valid data.
func (r *Review) Validate() error {
	if r.ID == uuid.Nil {
		return ErrReviewIDEmpty
	}

	if r.CardID == uuid.Nil {
		return ErrReviewCardIDEmpty
	}

	if !r.Grade.Valid() {
		return ErrInvalidGrade
	}

	if r.IntervalApplied < 1 {
		return ErrReviewIntervalInvalid
	}

	return nil
}
