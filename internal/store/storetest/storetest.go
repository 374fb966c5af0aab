// Package storetest provides a reusable conformance suite for
// store.Repository implementations. Each backend's test package calls
// Run with a factory producing a fresh, empty repository.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashmark/flashmark/internal/domain"
	"github.com/flashmark/flashmark/internal/domain/filter"
	"github.com/flashmark/flashmark/internal/store"
)

// Factory produces a fresh, empty repository for one subtest. Cleanup
// should be registered on t by the factory itself.
type Factory func(t *testing.T) store.Repository

// Run executes the full conformance suite against the backend produced
// by the factory.
func Run(t *testing.T, newRepo Factory) {
	t.Helper()

	t.Run("DeckLifecycle", func(t *testing.T) { testDeckLifecycle(t, newRepo(t)) })
	t.Run("DeckNameUniqueness", func(t *testing.T) { testDeckNameUniqueness(t, newRepo(t)) })
	t.Run("RenameDeck", func(t *testing.T) { testRenameDeck(t, newRepo(t)) })
	t.Run("DeleteDeckCascades", func(t *testing.T) { testDeleteDeckCascades(t, newRepo(t)) })
	t.Run("CardLifecycle", func(t *testing.T) { testCardLifecycle(t, newRepo(t)) })
	t.Run("CardRequiresDeck", func(t *testing.T) { testCardRequiresDeck(t, newRepo(t)) })
	t.Run("SetSuspended", func(t *testing.T) { testSetSuspended(t, newRepo(t)) })
	t.Run("DueCards", func(t *testing.T) { testDueCards(t, newRepo(t)) })
	t.Run("ApplyReview", func(t *testing.T) { testApplyReview(t, newRepo(t)) })
	t.Run("ListReviews", func(t *testing.T) { testListReviews(t, newRepo(t)) })
	t.Run("NotFoundErrors", func(t *testing.T) { testNotFoundErrors(t, newRepo(t)) })
}

func mustCreateDeck(t *testing.T, repo store.Repository, name string) *domain.Deck {
	t.Helper()
	deck, err := repo.CreateDeck(context.Background(), name)
	require.NoError(t, err)
	return deck
}

func mustAddCard(t *testing.T, repo store.Repository, deckID uuid.UUID, front, back string) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(deckID, front, back)
	require.NoError(t, err)
	require.NoError(t, repo.AddCard(context.Background(), card))
	return card
}

func testDeckLifecycle(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	deck := mustCreateDeck(t, repo, "Spanish")
	assert.NotEqual(t, uuid.Nil, deck.ID)
	assert.Equal(t, "Spanish", deck.Name)

	got, err := repo.GetDeck(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, deck.ID, got.ID)
	assert.Equal(t, "Spanish", got.Name)

	mustCreateDeck(t, repo, "French")
	decks, err := repo.ListDecks(ctx)
	require.NoError(t, err)
	require.Len(t, decks, 2)

	require.NoError(t, repo.DeleteDeck(ctx, deck.ID))
	_, err = repo.GetDeck(ctx, deck.ID)
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
}

func testDeckNameUniqueness(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	mustCreateDeck(t, repo, "Spanish")
	_, err := repo.CreateDeck(ctx, "Spanish")
	assert.ErrorIs(t, err, store.ErrDeckNameExists)

	// Uniqueness is case-sensitive.
	_, err = repo.CreateDeck(ctx, "spanish")
	assert.NoError(t, err)

	_, err = repo.CreateDeck(ctx, "")
	assert.True(t, store.IsValidation(err), "empty name should be a validation error, got %v", err)
}

func testRenameDeck(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	deck := mustCreateDeck(t, repo, "Spanish")
	mustCreateDeck(t, repo, "French")

	renamed, err := repo.RenameDeck(ctx, deck.ID, "Castilian")
	require.NoError(t, err)
	assert.Equal(t, "Castilian", renamed.Name)

	got, err := repo.GetDeck(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, "Castilian", got.Name)

	_, err = repo.RenameDeck(ctx, deck.ID, "French")
	assert.ErrorIs(t, err, store.ErrDeckNameExists)

	// Renaming to a deck's current name is not a conflict with itself.
	_, err = repo.RenameDeck(ctx, deck.ID, "Castilian")
	assert.NoError(t, err)

	// Rename trims surrounding whitespace the same way create does, so
	// " French " still collides with the existing "French".
	renamed, err = repo.RenameDeck(ctx, deck.ID, "  Iberian  ")
	require.NoError(t, err)
	assert.Equal(t, "Iberian", renamed.Name)

	got, err = repo.GetDeck(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, "Iberian", got.Name)

	_, err = repo.RenameDeck(ctx, deck.ID, " French ")
	assert.ErrorIs(t, err, store.ErrDeckNameExists)

	_, err = repo.RenameDeck(ctx, uuid.New(), "Whatever")
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
}

func testDeleteDeckCascades(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	deck := mustCreateDeck(t, repo, "Spanish")
	other := mustCreateDeck(t, repo, "French")
	card := mustAddCard(t, repo, deck.ID, "hola", "hello")
	kept := mustAddCard(t, repo, other.ID, "bonjour", "hello")

	review, err := domain.NewReview(card.ID, domain.GradeEasy, time.Now().UTC(), 1, card.EaseFactor)
	require.NoError(t, err)
	require.NoError(t, repo.ApplyReview(ctx, card, review))

	require.NoError(t, repo.DeleteDeck(ctx, deck.ID))

	_, err = repo.GetCard(ctx, card.ID)
	assert.ErrorIs(t, err, store.ErrCardNotFound)

	reviews, err := repo.ListReviews(ctx, store.ReviewFilter{CardID: &card.ID})
	require.NoError(t, err)
	assert.Empty(t, reviews)

	// The other deck's card is untouched.
	_, err = repo.GetCard(ctx, kept.ID)
	assert.NoError(t, err)
}

func testCardLifecycle(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	deck := mustCreateDeck(t, repo, "Spanish")
	card, err := domain.NewCard(deck.ID, "hola", "hello")
	require.NoError(t, err)
	card.Hint = "greeting"
	card.Tags = domain.NormalizeTags([]string{"Basics", "greetings"})
	require.NoError(t, repo.AddCard(ctx, card))

	got, err := repo.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, "hola", got.Front)
	assert.Equal(t, "hello", got.Back)
	assert.Equal(t, "greeting", got.Hint)
	assert.Equal(t, []string{"basics", "greetings"}, got.Tags)
	assert.Equal(t, domain.EaseFactorDefault, got.EaseFactor)
	assert.True(t, got.IsNew())

	got.Front = "¡hola!"
	got.Tags = append(got.Tags, "revised")
	require.NoError(t, repo.UpdateCard(ctx, got))

	updated, err := repo.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, "¡hola!", updated.Front)
	assert.Contains(t, updated.Tags, "revised")

	mustAddCard(t, repo, deck.ID, "adios", "goodbye")
	all, err := repo.ListCards(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inDeck, err := repo.ListCards(ctx, &deck.ID)
	require.NoError(t, err)
	assert.Len(t, inDeck, 2)

	require.NoError(t, repo.DeleteCard(ctx, card.ID))
	_, err = repo.GetCard(ctx, card.ID)
	assert.ErrorIs(t, err, store.ErrCardNotFound)
}

func testCardRequiresDeck(t *testing.T, repo store.Repository) {
	card, err := domain.NewCard(uuid.New(), "front", "back")
	require.NoError(t, err)

	err = repo.AddCard(context.Background(), card)
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
}

func testSetSuspended(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	deck := mustCreateDeck(t, repo, "Spanish")
	card := mustAddCard(t, repo, deck.ID, "hola", "hello")

	require.NoError(t, repo.SetSuspended(ctx, card.ID, true))
	got, err := repo.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.True(t, got.Suspended)

	require.NoError(t, repo.SetSuspended(ctx, card.ID, false))
	got, err = repo.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.False(t, got.Suspended)

	err = repo.SetSuspended(ctx, uuid.New(), true)
	assert.ErrorIs(t, err, store.ErrCardNotFound)
}

func testDueCards(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	now := time.Now().UTC()

	deck := mustCreateDeck(t, repo, "Spanish")
	other := mustCreateDeck(t, repo, "French")

	newcomer := mustAddCard(t, repo, deck.ID, "hola", "hello")

	overdue := mustAddCard(t, repo, deck.ID, "adios", "goodbye")
	overdue.Reps = 2
	overdue.IntervalDays = 6
	overdue.DueAt = now.AddDate(0, 0, -1)
	overdue.LastGrade = domain.GradeMedium
	reviewedAt := now.AddDate(0, 0, -7)
	overdue.LastReviewedAt = &reviewedAt
	require.NoError(t, repo.UpdateCard(ctx, overdue))

	future := mustAddCard(t, repo, deck.ID, "gracias", "thanks")
	future.Reps = 1
	future.IntervalDays = 6
	future.DueAt = now.AddDate(0, 0, 3)
	future.LastGrade = domain.GradeEasy
	future.LastReviewedAt = &reviewedAt
	require.NoError(t, repo.UpdateCard(ctx, future))

	suspended := mustAddCard(t, repo, deck.ID, "por favor", "please")
	require.NoError(t, repo.SetSuspended(ctx, suspended.ID, true))

	elsewhere := mustAddCard(t, repo, other.ID, "bonjour", "hello")
	_ = elsewhere

	// Default query: due cards only, across decks; new cards are not due
	// until asked for.
	due, err := repo.DueCards(ctx, store.DueQuery{DueOptions: filter.DueOptions{Now: now}})
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, overdue.ID, due[0].ID)

	// IncludeNew admits never-reviewed cards.
	due, err = repo.DueCards(ctx, store.DueQuery{
		DeckID:     &deck.ID,
		DueOptions: filter.DueOptions{Now: now, IncludeNew: true},
	})
	require.NoError(t, err)
	require.Len(t, due, 2)

	// Deck restriction.
	due, err = repo.DueCards(ctx, store.DueQuery{
		DeckID:     &other.ID,
		DueOptions: filter.DueOptions{Now: now, IncludeNew: true},
	})
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "bonjour", due[0].Front)

	// Suspended cards never surface, even as new.
	for _, c := range due {
		assert.NotEqual(t, suspended.ID, c.ID)
	}
	_ = newcomer
}

func testApplyReview(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	deck := mustCreateDeck(t, repo, "Spanish")
	card := mustAddCard(t, repo, deck.ID, "hola", "hello")

	card.Reps = 1
	card.IntervalDays = 1
	card.EaseFactor = 2.6
	card.DueAt = now.AddDate(0, 0, 1)
	card.LastGrade = domain.GradeEasy
	card.LastReviewedAt = &now

	review, err := domain.NewReview(card.ID, domain.GradeEasy, now, 1, 2.6)
	require.NoError(t, err)
	require.NoError(t, repo.ApplyReview(ctx, card, review))

	got, err := repo.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Reps)
	assert.Equal(t, 1, got.IntervalDays)
	assert.InDelta(t, 2.6, got.EaseFactor, 1e-9)
	assert.Equal(t, domain.GradeEasy, got.LastGrade)
	require.NotNil(t, got.LastReviewedAt)
	assert.WithinDuration(t, now, *got.LastReviewedAt, time.Second)

	reviews, err := repo.ListReviews(ctx, store.ReviewFilter{CardID: &card.ID})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, domain.GradeEasy, reviews[0].Grade)
	assert.Equal(t, 1, reviews[0].IntervalApplied)
	assert.InDelta(t, 2.6, reviews[0].EFAfter, 1e-9)

	// Unknown card: nothing is persisted.
	ghost, err := domain.NewCard(deck.ID, "x", "y")
	require.NoError(t, err)
	ghostReview, err := domain.NewReview(ghost.ID, domain.GradeHard, now, 1, 2.5)
	require.NoError(t, err)
	err = repo.ApplyReview(ctx, ghost, ghostReview)
	assert.ErrorIs(t, err, store.ErrCardNotFound)

	reviews, err = repo.ListReviews(ctx, store.ReviewFilter{CardID: &ghost.ID})
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func testListReviews(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second).AddDate(0, 0, -10)

	deck := mustCreateDeck(t, repo, "Spanish")
	cardA := mustAddCard(t, repo, deck.ID, "hola", "hello")
	cardB := mustAddCard(t, repo, deck.ID, "adios", "goodbye")

	apply := func(card *domain.Card, at time.Time, grade domain.Grade) {
		t.Helper()
		card.Reps++
		card.LastGrade = grade
		card.LastReviewedAt = &at
		card.IntervalDays = 1
		card.DueAt = at.AddDate(0, 0, 1)
		review, err := domain.NewReview(card.ID, grade, at, 1, card.EaseFactor)
		require.NoError(t, err)
		require.NoError(t, repo.ApplyReview(ctx, card, review))
	}

	apply(cardA, base, domain.GradeEasy)
	apply(cardA, base.AddDate(0, 0, 2), domain.GradeMedium)
	apply(cardB, base.AddDate(0, 0, 4), domain.GradeHard)

	all, err := repo.ListReviews(ctx, store.ReviewFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, !all[0].ReviewedAt.After(all[1].ReviewedAt))
	assert.True(t, !all[1].ReviewedAt.After(all[2].ReviewedAt))

	byCard, err := repo.ListReviews(ctx, store.ReviewFilter{CardID: &cardA.ID})
	require.NoError(t, err)
	assert.Len(t, byCard, 2)

	from := base.AddDate(0, 0, 1)
	to := base.AddDate(0, 0, 4) // exclusive
	ranged, err := repo.ListReviews(ctx, store.ReviewFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, cardA.ID, ranged[0].CardID)
}

func testNotFoundErrors(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	id := uuid.New()

	_, err := repo.GetDeck(ctx, id)
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
	assert.True(t, store.IsNotFound(err))

	assert.ErrorIs(t, repo.DeleteDeck(ctx, id), store.ErrDeckNotFound)

	_, err = repo.GetCard(ctx, id)
	assert.ErrorIs(t, err, store.ErrCardNotFound)

	assert.ErrorIs(t, repo.DeleteCard(ctx, id), store.ErrCardNotFound)

	card := &domain.Card{
		ID:         id,
		DeckID:     uuid.New(),
		Front:      "f",
		Back:       "b",
		EaseFactor: domain.EaseFactorDefault,
		DueAt:      time.Now().UTC(),
		CreatedAt:  time.Now().UTC(),
	}
	assert.ErrorIs(t, repo.UpdateCard(ctx, card), store.ErrCardNotFound)
}
