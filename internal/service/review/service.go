// Package review orchestrates the review workflow: it joins the
// repository (where cards live) to the scheduler (which computes the
// next state) and persists the outcome atomically.
package review

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/flashmark/flashmark/internal/domain"
	"github.com/flashmark/flashmark/internal/domain/srs"
	"github.com/flashmark/flashmark/internal/store"
)

// Service errors
var (
	// ErrNoCardsDue is returned by NextCard when nothing is eligible
	// for review right now.
	ErrNoCardsDue = errors.New("no cards due for review")

	// ErrCardSuspended is returned when a review is submitted for a
	// suspended card.
	ErrCardSuspended = errors.New("card is suspended")
)

// Service is the review workflow boundary used by the HTTP API and the
// CLI.
type Service interface {
	// SubmitReview grades a card: it loads the card, computes the next
	// scheduling state, and persists the updated card together with the
	// review record as one unit.
	// Returns store.ErrCardNotFound if the card does not exist and
	// ErrCardSuspended if it is suspended.
	SubmitReview(ctx context.Context, cardID uuid.UUID, grade domain.Grade) (*srs.Outcome, error)

	// NextCard returns the first card eligible for review per the
	// query, or ErrNoCardsDue when the queue is empty.
	NextCard(ctx context.Context, q store.DueQuery) (*domain.Card, error)
}
