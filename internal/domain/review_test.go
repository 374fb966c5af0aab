package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReview(t *testing.T) {
	t.Parallel()

	cardID := uuid.New()
	now := time.Now().UTC()

	t.Run("valid review", func(t *testing.T) {
		t.Parallel()
		review, err := NewReview(cardID, GradeEasy, now, 6, 2.6)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, review.ID)
		assert.Equal(t, cardID, review.CardID)
		assert.Equal(t, GradeEasy, review.Grade)
		assert.Equal(t, 6, review.IntervalApplied)
		assert.Equal(t, 2.6, review.EFAfter)
	})

	t.Run("nil card rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewReview(uuid.Nil, GradeEasy, now, 1, 2.5)
		assert.ErrorIs(t, err, ErrReviewCardIDEmpty)
	})

	t.Run("invalid grade rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewReview(cardID, Grade("meh"), now, 1, 2.5)
		assert.ErrorIs(t, err, ErrInvalidGrade)
	})

	t.Run("zero interval rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewReview(cardID, GradeHard, now, 0, 2.5)
		assert.ErrorIs(t, err, ErrReviewIntervalInvalid)
	})
}
