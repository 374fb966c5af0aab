// Package memory provides a non-durable, mutex-guarded implementation of
// the store.Repository interface. It backs tests and throwaway sessions;
// nothing survives process exit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/flashmark/flashmark/internal/domain"
	"github.com/flashmark/flashmark/internal/domain/filter"
	"github.com/flashmark/flashmark/internal/store"
)

// Store is an in-memory store.Repository.
type Store struct {
	mu      sync.RWMutex
	decks   map[uuid.UUID]*domain.Deck
	cards   map[uuid.UUID]*domain.Card
	reviews map[uuid.UUID][]*domain.Review // keyed by card ID
}

// Ensure Store implements store.Repository
var _ store.Repository = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		decks:   make(map[uuid.UUID]*domain.Deck),
		cards:   make(map[uuid.UUID]*domain.Card),
		reviews: make(map[uuid.UUID][]*domain.Review),
	}
}

// CreateDeck implements store.Repository.CreateDeck.
func (s *Store) CreateDeck(ctx context.Context, name string) (*domain.Deck, error) {
	deck, err := domain.NewDeck(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.decks {
		if d.Name == deck.Name {
			return nil, store.ErrDeckNameExists
		}
	}
	s.decks[deck.ID] = deck

	out := *deck
	return &out, nil
}

// GetDeck implements store.Repository.GetDeck.
func (s *Store) GetDeck(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deck, ok := s.decks[id]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	out := *deck
	return &out, nil
}

// ListDecks implements store.Repository.ListDecks.
func (s *Store) ListDecks(ctx context.Context) ([]*domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Deck, 0, len(s.decks))
	for _, d := range s.decks {
		copied := *d
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// RenameDeck implements store.Repository.RenameDeck.
func (s *Store) RenameDeck(ctx context.Context, id uuid.UUID, name string) (*domain.Deck, error) {
	probe := domain.Deck{ID: id}
	if err := probe.Rename(name); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deck, ok := s.decks[id]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	for _, d := range s.decks {
		if d.ID != id && d.Name == probe.Name {
			return nil, store.ErrDeckNameExists
		}
	}
	deck.Name = probe.Name

	out := *deck
	return &out, nil
}

// DeleteDeck implements store.Repository.DeleteDeck. Cards in the deck
// and their reviews are removed with it.
func (s *Store) DeleteDeck(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.decks[id]; !ok {
		return store.ErrDeckNotFound
	}
	delete(s.decks, id)

	for cid, c := range s.cards {
		if c.DeckID == id {
			delete(s.cards, cid)
			delete(s.reviews, cid)
		}
	}
	return nil
}

// AddCard implements store.Repository.AddCard.
func (s *Store) AddCard(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.decks[card.DeckID]; !ok {
		return store.ErrDeckNotFound
	}

	copied := *card
	s.cards[card.ID] = &copied
	return nil
}

// GetCard implements store.Repository.GetCard.
func (s *Store) GetCard(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, ok := s.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	out := *card
	return &out, nil
}

// ListCards implements store.Repository.ListCards.
func (s *Store) ListCards(ctx context.Context, deckID *uuid.UUID) ([]*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Card, 0, len(s.cards))
	for _, c := range s.cards {
		if deckID != nil && c.DeckID != *deckID {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// UpdateCard implements store.Repository.UpdateCard.
func (s *Store) UpdateCard(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[card.ID]; !ok {
		return store.ErrCardNotFound
	}
	copied := *card
	s.cards[card.ID] = &copied
	return nil
}

// DeleteCard implements store.Repository.DeleteCard. The card's reviews
// are removed with it.
func (s *Store) DeleteCard(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[id]; !ok {
		return store.ErrCardNotFound
	}
	delete(s.cards, id)
	delete(s.reviews, id)
	return nil
}

// SetSuspended implements store.Repository.SetSuspended.
func (s *Store) SetSuspended(ctx context.Context, id uuid.UUID, suspended bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[id]
	if !ok {
		return store.ErrCardNotFound
	}
	card.Suspended = suspended
	return nil
}

// DueCards implements store.Repository.DueCards by running the filter
// engine over the candidate set.
func (s *Store) DueCards(ctx context.Context, q store.DueQuery) ([]*domain.Card, error) {
	cards, err := s.ListCards(ctx, q.DeckID)
	if err != nil {
		return nil, err
	}
	return filter.SelectDue(cards, q.DueOptions), nil
}

// ApplyReview implements store.Repository.ApplyReview. The whole update
// happens under one lock acquisition, so concurrent reviews of the same
// card cannot interleave partial updates.
func (s *Store) ApplyReview(ctx context.Context, card *domain.Card, review *domain.Review) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrValidation, err)
	}
	if err := review.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[card.ID]; !ok {
		return store.ErrCardNotFound
	}

	copied := *card
	s.cards[card.ID] = &copied
	copiedReview := *review
	s.reviews[review.CardID] = append(s.reviews[review.CardID], &copiedReview)
	return nil
}

// ListReviews implements store.Repository.ListReviews.
func (s *Store) ListReviews(ctx context.Context, f store.ReviewFilter) ([]*domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Review
	for _, rs := range s.reviews {
		for _, r := range rs {
			if store.MatchReview(r, f) {
				copied := *r
				out = append(out, &copied)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReviewedAt.Before(out[j].ReviewedAt) })
	return out, nil
}

// Close implements store.Repository.Close.
func (s *Store) Close() error {
	return nil
}
