package jsonstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashmark/flashmark/internal/domain"
	"github.com/flashmark/flashmark/internal/platform/jsonstore"
	"github.com/flashmark/flashmark/internal/store"
	"github.com/flashmark/flashmark/internal/store/storetest"
)

func TestRepositoryConformance(t *testing.T) {
	t.Parallel()

	storetest.Run(t, func(t *testing.T) store.Repository {
		s, err := jsonstore.Open(filepath.Join(t.TempDir(), "cards.json"), 3, nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

// A card persisted through one store handle must reload field-for-field
// through a fresh handle on the same file.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cards.json")

	s, err := jsonstore.Open(path, 3, nil)
	require.NoError(t, err)

	deck, err := s.CreateDeck(ctx, "Spanish")
	require.NoError(t, err)

	card, err := domain.NewCard(deck.ID, "hola", "hello")
	require.NoError(t, err)
	card.Hint = "greeting"
	card.Tags = domain.NormalizeTags([]string{"basics", "greetings"})
	require.NoError(t, s.AddCard(ctx, card))

	now := time.Now().UTC().Truncate(time.Second)
	reviewed := *card
	reviewed.Reps = 1
	reviewed.IntervalDays = 1
	reviewed.EaseFactor = 2.6
	reviewed.DueAt = now.AddDate(0, 0, 1)
	reviewed.LastGrade = domain.GradeEasy
	reviewed.LastReviewedAt = &now
	review, err := domain.NewReview(card.ID, domain.GradeEasy, now, 1, 2.6)
	require.NoError(t, err)
	require.NoError(t, s.ApplyReview(ctx, &reviewed, review))
	require.NoError(t, s.Close())

	reopened, err := jsonstore.Open(path, 3, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, reviewed.ID, got.ID)
	assert.Equal(t, reviewed.DeckID, got.DeckID)
	assert.Equal(t, reviewed.Front, got.Front)
	assert.Equal(t, reviewed.Back, got.Back)
	assert.Equal(t, reviewed.Hint, got.Hint)
	assert.Equal(t, reviewed.Tags, got.Tags)
	assert.Equal(t, reviewed.Reps, got.Reps)
	assert.Equal(t, reviewed.IntervalDays, got.IntervalDays)
	assert.InDelta(t, reviewed.EaseFactor, got.EaseFactor, 1e-9)
	assert.True(t, reviewed.DueAt.Equal(got.DueAt))
	assert.Equal(t, reviewed.LastGrade, got.LastGrade)
	require.NotNil(t, got.LastReviewedAt)
	assert.True(t, reviewed.LastReviewedAt.Equal(*got.LastReviewedAt))
	assert.Equal(t, reviewed.Suspended, got.Suspended)
	assert.True(t, reviewed.CreatedAt.Equal(got.CreatedAt))

	reviews, err := reopened.ListReviews(ctx, store.ReviewFilter{CardID: &card.ID})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, review.ID, reviews[0].ID)
	assert.Equal(t, domain.GradeEasy, reviews[0].Grade)
}

// Every mutation after the first must leave a timestamped backup of the
// previous file version, capped at the configured retention.
func TestBackupRotation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "cards.json")

	s, err := jsonstore.Open(path, 2, nil)
	require.NoError(t, err)
	defer s.Close()

	for _, name := range []string{"A", "B", "C", "D", "E"} {
		_, err := s.CreateDeck(ctx, name)
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var backups []string
	for _, e := range entries {
		if e.Name() == "cards.json" {
			continue
		}
		backups = append(backups, e.Name())
	}
	// First write had no previous version to back up; four writes
	// produced backups, pruned down to two.
	require.Len(t, backups, 2)
	for _, b := range backups {
		assert.Contains(t, b, "cards.backup-")
	}

	// Primary file reflects all five decks.
	reopened, err := jsonstore.Open(path, 2, nil)
	require.NoError(t, err)
	defer reopened.Close()
	decks, err := reopened.ListDecks(ctx)
	require.NoError(t, err)
	assert.Len(t, decks, 5)
}
