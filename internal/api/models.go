package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/flashmark/flashmark/internal/domain"
)

// CreateDeckRequest is the body for POST /api/decks and the rename
// body for PATCH /api/decks/{id}.
type CreateDeckRequest struct {
	Name string `json:"name" validate:"required"`
}

// DeckResponse is the wire form of a deck.
type DeckResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func deckToResponse(d *domain.Deck) DeckResponse {
	return DeckResponse{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt}
}

// CreateCardRequest is the body for POST /api/cards.
type CreateCardRequest struct {
	DeckID uuid.UUID `json:"deck_id" validate:"required"`
	Front  string    `json:"front" validate:"required"`
	Back   string    `json:"back" validate:"required"`
	Hint   string    `json:"hint"`
	Tags   []string  `json:"tags"`
}

// UpdateCardRequest is the body for PUT /api/cards/{id}. Only content
// fields are editable over the API; scheduling state moves exclusively
// through reviews.
type UpdateCardRequest struct {
	Front string   `json:"front" validate:"required"`
	Back  string   `json:"back" validate:"required"`
	Hint  string   `json:"hint"`
	Tags  []string `json:"tags"`
}

// SuspendCardRequest is the body for POST /api/cards/{id}/suspend.
type SuspendCardRequest struct {
	Suspended bool `json:"suspended"`
}

// SubmitReviewRequest is the body for POST /api/reviews. Grade
// validation belongs to domain.ParseGrade so the API and CLI reject
// the same inputs.
type SubmitReviewRequest struct {
	CardID uuid.UUID `json:"card_id" validate:"required"`
	Grade  string    `json:"grade"   validate:"required"`
}

// ReviewOutcomeResponse is the wire form of a persisted review outcome.
type ReviewOutcomeResponse struct {
	Card   domain.Card   `json:"card"`
	Review domain.Review `json:"review"`
}
