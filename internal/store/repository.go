package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flashmark/flashmark/internal/domain"
	"github.com/flashmark/flashmark/internal/domain/filter"
)

// ReviewFilter narrows a review listing. Zero values mean "no filter".
type ReviewFilter struct {
	// CardID keeps only reviews of the given card.
	CardID *uuid.UUID

	// From and To bound the review timestamps (inclusive From,
	// exclusive To).
	From *time.Time
	To   *time.Time
}

// DueQuery asks a backend for the cards currently eligible for review.
// Backends must answer with semantics identical to filter.SelectDue even
// when parts of the predicate are pushed down into a query language.
type DueQuery struct {
	// DeckID restricts the candidate set to one deck when non-nil.
	DeckID *uuid.UUID

	filter.DueOptions
}

// Repository is the capability set every storage backend must implement
// with identical semantics. It is the sole persistence boundary: the
// scheduler and the filter/stats engines never touch it directly, and it
// never computes scheduling.
//
// Semantics all backends preserve:
//   - Deck names are unique (case-sensitive); a duplicate create or
//     rename returns ErrDeckNameExists, never a silent overwrite.
//   - Deleting a deck deletes its cards and their reviews; deleting a
//     card deletes its reviews.
//   - ApplyReview persists the updated card scheduling state and the new
//     review as one unit. Callers never observe one without the other,
//     including after a crash or a cancelled context: either the
//     pre-review or the fully post-review state survives.
//   - Reviews are append-only; they are created only through ApplyReview
//     and removed only by cascade.
//
// Operations carry no internal timeout policy; callers bound them
// through ctx.
type Repository interface {
	// CreateDeck creates a deck with the given name.
	// Returns ErrDeckNameExists if the name is taken, or a validation
	// error wrapped in ErrValidation for an empty name.
	CreateDeck(ctx context.Context, name string) (*domain.Deck, error)

	// GetDeck retrieves a deck by ID. Returns ErrDeckNotFound if absent.
	GetDeck(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// ListDecks returns all decks ordered by creation time.
	ListDecks(ctx context.Context) ([]*domain.Deck, error)

	// RenameDeck changes a deck's name, subject to the same uniqueness
	// rule as CreateDeck. Returns ErrDeckNotFound if absent.
	RenameDeck(ctx context.Context, id uuid.UUID, name string) (*domain.Deck, error)

	// DeleteDeck removes a deck, cascading to its cards and their
	// reviews. Returns ErrDeckNotFound if absent.
	DeleteDeck(ctx context.Context, id uuid.UUID) error

	// AddCard persists a new card. Returns ErrDeckNotFound if the
	// owning deck does not exist.
	AddCard(ctx context.Context, card *domain.Card) error

	// GetCard retrieves a card by ID. Returns ErrCardNotFound if absent.
	GetCard(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// ListCards returns cards ordered by creation time, optionally
	// restricted to one deck.
	ListCards(ctx context.Context, deckID *uuid.UUID) ([]*domain.Card, error)

	// UpdateCard replaces a card's stored fields.
	// Returns ErrCardNotFound if absent.
	UpdateCard(ctx context.Context, card *domain.Card) error

	// DeleteCard removes a card, cascading to its reviews.
	// Returns ErrCardNotFound if absent.
	DeleteCard(ctx context.Context, id uuid.UUID) error

	// SetSuspended flips a card's suspended flag, excluding it from (or
	// readmitting it to) due selection without deleting it.
	SetSuspended(ctx context.Context, id uuid.UUID, suspended bool) error

	// DueCards returns the cards eligible for review per the query,
	// ordered by due time then creation time.
	DueCards(ctx context.Context, q DueQuery) ([]*domain.Card, error)

	// ApplyReview atomically persists a card's post-review scheduling
	// state together with the review record emitted for it.
	// Returns ErrCardNotFound if the card is absent.
	ApplyReview(ctx context.Context, card *domain.Card, review *domain.Review) error

	// ListReviews returns reviews matching the filter, ordered by
	// review time ascending.
	ListReviews(ctx context.Context, f ReviewFilter) ([]*domain.Review, error)

	// Close releases the backend's resources.
	Close() error
}

// MatchReview reports whether a review satisfies the filter. Shared by
// backends that filter in memory rather than in a query language.
func MatchReview(r *domain.Review, f ReviewFilter) bool {
	if f.CardID != nil && r.CardID != *f.CardID {
		return false
	}
	if f.From != nil && r.ReviewedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !r.ReviewedAt.Before(*f.To) {
		return false
	}
	return true
}
