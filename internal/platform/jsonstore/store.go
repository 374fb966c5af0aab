// Package jsonstore implements store.Repository on top of a single JSON
// file holding the whole catalog. It is the reference backend: the full
// data set lives in memory behind a mutex, every mutation rewrites the
// file atomically (temp file, fsync, rename), and the previous version
// is copied aside into a rotating set of timestamped backups before the
// rename so a crash mid-write never loses the last-known-good state.
package jsonstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flashmark/flashmark/internal/domain"
	"github.com/flashmark/flashmark/internal/domain/filter"
	"github.com/flashmark/flashmark/internal/store"
)

// Store is a file-backed store.Repository.
type Store struct {
	mu     sync.RWMutex
	state  *state
	file   *catalogFile
	logger *slog.Logger

	// persist writes a catalog image durably. Overridable in tests to
	// inject write failures.
	persist func(img *image) error
}

// Ensure Store implements store.Repository
var _ store.Repository = (*Store)(nil)

// state is the in-memory form of the catalog. It is replaced wholesale
// on every successful mutation; a failed persist leaves the previous
// state untouched.
type state struct {
	createdAt time.Time
	decks     map[uuid.UUID]*domain.Deck
	cards     map[uuid.UUID]*domain.Card
	reviews   map[uuid.UUID][]*domain.Review // keyed by card ID
}

func newState(createdAt time.Time) *state {
	return &state{
		createdAt: createdAt,
		decks:     make(map[uuid.UUID]*domain.Deck),
		cards:     make(map[uuid.UUID]*domain.Card),
		reviews:   make(map[uuid.UUID][]*domain.Review),
	}
}

func (st *state) clone() *state {
	next := newState(st.createdAt)
	for id, d := range st.decks {
		copied := *d
		next.decks[id] = &copied
	}
	for id, c := range st.cards {
		copied := *c
		next.cards[id] = &copied
	}
	for id, rs := range st.reviews {
		out := make([]*domain.Review, len(rs))
		for i, r := range rs {
			copied := *r
			out[i] = &copied
		}
		next.reviews[id] = out
	}
	return next
}

// image flattens the state into the serialized form, with deterministic
// ordering so successive saves of the same catalog are byte-identical.
func (st *state) image(now time.Time) *image {
	img := &image{
		Version:   imageVersion,
		CreatedAt: st.createdAt,
		UpdatedAt: now,
		Decks:     make([]*domain.Deck, 0, len(st.decks)),
		Cards:     make([]*domain.Card, 0, len(st.cards)),
		Reviews:   make([]*domain.Review, 0),
	}
	for _, d := range st.decks {
		img.Decks = append(img.Decks, d)
	}
	for _, c := range st.cards {
		img.Cards = append(img.Cards, c)
	}
	for _, rs := range st.reviews {
		img.Reviews = append(img.Reviews, rs...)
	}
	sort.Slice(img.Decks, func(i, j int) bool {
		if !img.Decks[i].CreatedAt.Equal(img.Decks[j].CreatedAt) {
			return img.Decks[i].CreatedAt.Before(img.Decks[j].CreatedAt)
		}
		return img.Decks[i].ID.String() < img.Decks[j].ID.String()
	})
	sort.Slice(img.Cards, func(i, j int) bool {
		if !img.Cards[i].CreatedAt.Equal(img.Cards[j].CreatedAt) {
			return img.Cards[i].CreatedAt.Before(img.Cards[j].CreatedAt)
		}
		return img.Cards[i].ID.String() < img.Cards[j].ID.String()
	})
	sort.Slice(img.Reviews, func(i, j int) bool {
		if !img.Reviews[i].ReviewedAt.Equal(img.Reviews[j].ReviewedAt) {
			return img.Reviews[i].ReviewedAt.Before(img.Reviews[j].ReviewedAt)
		}
		return img.Reviews[i].ID.String() < img.Reviews[j].ID.String()
	})
	return img
}

func stateFromImage(img *image) *state {
	st := newState(img.CreatedAt)
	for _, d := range img.Decks {
		st.decks[d.ID] = d
	}
	for _, c := range img.Cards {
		st.cards[c.ID] = c
	}
	for _, r := range img.Reviews {
		st.reviews[r.CardID] = append(st.reviews[r.CardID], r)
	}
	return st
}

// Open loads the catalog at path, creating an empty one if the file
// does not exist yet. maxBackups bounds how many timestamped backups of
// previous versions are kept next to the file.
func Open(path string, maxBackups int, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	file, err := newCatalogFile(path, maxBackups)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrStorage, err)
	}

	img, err := file.load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrStorage, err)
	}

	s := &Store{
		file:   file,
		logger: logger.With(slog.String("component", "jsonstore")),
	}
	s.persist = file.save

	if img == nil {
		s.state = newState(time.Now().UTC())
		s.logger.Info("starting new catalog", slog.String("path", path))
	} else {
		s.state = stateFromImage(img)
		s.logger.Debug("catalog loaded",
			slog.String("path", path),
			slog.Int("decks", len(s.state.decks)),
			slog.Int("cards", len(s.state.cards)))
	}
	return s, nil
}

// mutate applies fn to a clone of the current state, persists the
// resulting image, and only then swaps the clone in. Any failure, in fn
// or in the write, leaves the previous committed state in place.
func (s *Store) mutate(ctx context.Context, fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	next := s.state.clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.persist(next.image(time.Now().UTC())); err != nil {
		return fmt.Errorf("%w: %w", store.ErrStorage, err)
	}
	s.state = next
	return nil
}

// CreateDeck implements store.Repository.CreateDeck.
func (s *Store) CreateDeck(ctx context.Context, name string) (*domain.Deck, error) {
	deck, err := domain.NewDeck(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrValidation, err)
	}

	err = s.mutate(ctx, func(st *state) error {
		for _, d := range st.decks {
			if d.Name == deck.Name {
				return store.ErrDeckNameExists
			}
		}
		st.decks[deck.ID] = deck
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := *deck
	return &out, nil
}

// GetDeck implements store.Repository.GetDeck.
func (s *Store) GetDeck(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deck, ok := s.state.decks[id]
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

	out := make([]*domain.Deck, 0, len(s.state.decks))
	for _, d := range s.state.decks {
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

	var renamed domain.Deck
	err := s.mutate(ctx, func(st *state) error {
		deck, ok := st.decks[id]
		if !ok {
			return store.ErrDeckNotFound
		}
		for _, d := range st.decks {
			if d.ID != id && d.Name == probe.Name {
				return store.ErrDeckNameExists
			}
		}
		deck.Name = probe.Name
		renamed = *deck
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &renamed, nil
}

// DeleteDeck implements store.Repository.DeleteDeck. Cards in the deck
// and their reviews go with it.
func (s *Store) DeleteDeck(ctx context.Context, id uuid.UUID) error {
	return s.mutate(ctx, func(st *state) error {
		if _, ok := st.decks[id]; !ok {
			return store.ErrDeckNotFound
		}
		delete(st.decks, id)
		for cid, c := range st.cards {
			if c.DeckID == id {
				delete(st.cards, cid)
				delete(st.reviews, cid)
			}
		}
		return nil
	})
}

// AddCard implements store.Repository.AddCard.
func (s *Store) AddCard(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrValidation, err)
	}

	return s.mutate(ctx, func(st *state) error {
		if _, ok := st.decks[card.DeckID]; !ok {
			return store.ErrDeckNotFound
		}
		copied := *card
		st.cards[card.ID] = &copied
		return nil
	})
}

// GetCard implements store.Repository.GetCard.
func (s *Store) GetCard(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, ok := s.state.cards[id]
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

	out := make([]*domain.Card, 0, len(s.state.cards))
	for _, c := range s.state.cards {
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

	return s.mutate(ctx, func(st *state) error {
		if _, ok := st.cards[card.ID]; !ok {
			return store.ErrCardNotFound
		}
		copied := *card
		st.cards[card.ID] = &copied
		return nil
	})
}

// DeleteCard implements store.Repository.DeleteCard.
func (s *Store) DeleteCard(ctx context.Context, id uuid.UUID) error {
	return s.mutate(ctx, func(st *state) error {
		if _, ok := st.cards[id]; !ok {
			return store.ErrCardNotFound
		}
		delete(st.cards, id)
		delete(st.reviews, id)
		return nil
	})
}

// SetSuspended implements store.Repository.SetSuspended.
func (s *Store) SetSuspended(ctx context.Context, id uuid.UUID, suspended bool) error {
	return s.mutate(ctx, func(st *state) error {
		card, ok := st.cards[id]
		if !ok {
			return store.ErrCardNotFound
		}
		card.Suspended = suspended
		return nil
	})
}

// DueCards implements store.Repository.DueCards.
func (s *Store) DueCards(ctx context.Context, q store.DueQuery) ([]*domain.Card, error) {
	cards, err := s.ListCards(ctx, q.DeckID)
	if err != nil {
		return nil, err
	}
	return filter.SelectDue(cards, q.DueOptions), nil
}

// ApplyReview implements store.Repository.ApplyReview. The card update
// and the review append land in one file write; a failed write leaves
// the pre-review state committed.
func (s *Store) ApplyReview(ctx context.Context, card *domain.Card, review *domain.Review) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrValidation, err)
	}
	if err := review.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrValidation, err)
	}

	return s.mutate(ctx, func(st *state) error {
		if _, ok := st.cards[card.ID]; !ok {
			return store.ErrCardNotFound
		}
		copiedCard := *card
		st.cards[card.ID] = &copiedCard
		copiedReview := *review
		st.reviews[review.CardID] = append(st.reviews[review.CardID], &copiedReview)
		return nil
	})
}

// ListReviews implements store.Repository.ListReviews.
func (s *Store) ListReviews(ctx context.Context, f store.ReviewFilter) ([]*domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Review
	for _, rs := range s.state.reviews {
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

// Close implements store.Repository.Close. The catalog is already
// durable after every mutation, so there is nothing to flush.
func (s *Store) Close() error {
	return nil
}
