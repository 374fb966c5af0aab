package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashmark/flashmark/internal/domain"
)

func newTestCard(t *testing.T) domain.Card {
	t.Helper()
	card, err := domain.NewCard(uuid.New(), "front", "back")
	require.NoError(t, err)
	return *card
}

func TestApplyFirstSuccess(t *testing.T) {
	t.Parallel()

	sched := New()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, grade := range []domain.Grade{domain.GradeMedium, domain.GradeEasy} {
		out, err := sched.Apply(newTestCard(t), grade, now)
		require.NoError(t, err)

		assert.Equal(t, 1, out.Card.Reps)
		assert.Equal(t, 1, out.Card.IntervalDays)
		assert.Equal(t, now.AddDate(0, 0, 1), out.Card.DueAt)
		assert.Equal(t, grade, out.Card.LastGrade)
		require.NotNil(t, out.Card.LastReviewedAt)
		assert.Equal(t, now, *out.Card.LastReviewedAt)
	}
}

func TestApplySecondSuccess(t *testing.T) {
	t.Parallel()

	sched := New()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	card := newTestCard(t)
	card.Reps = 1
	card.IntervalDays = 1

	out, err := sched.Apply(card, domain.GradeMedium, now)
	require.NoError(t, err)

	assert.Equal(t, 2, out.Card.Reps)
	assert.Equal(t, 6, out.Card.IntervalDays)
	assert.Equal(t, now.AddDate(0, 0, 6), out.Card.DueAt)
}

func TestApplyThirdSuccessMultipliesByEaseFactor(t *testing.T) {
	t.Parallel()

	sched := New()
	now := time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC)

	card := newTestCard(t)
	card.Reps = 2
	card.IntervalDays = 6
	card.EaseFactor = 2.5

	// Medium keeps EF at 2.5: round(6 * 2.5) = 15.
	out, err := sched.Apply(card, domain.GradeMedium, now)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Card.Reps)
	assert.Equal(t, 15, out.Card.IntervalDays)

	// Easy raises EF to 2.6: round(6 * 2.6) = round(15.6) = 16.
	out, err = sched.Apply(card, domain.GradeEasy, now)
	require.NoError(t, err)
	assert.Equal(t, 16, out.Card.IntervalDays)
	assert.InDelta(t, 2.6, out.Card.EaseFactor, 1e-9)
}

func TestApplyHardResets(t *testing.T) {
	t.Parallel()

	sched := New()
	now := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		reps     int
		interval int
	}{
		{"new card", 0, 0},
		{"young card", 1, 1},
		{"mature card", 9, 120},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			card := newTestCard(t)
			card.Reps = tc.reps
			card.IntervalDays = tc.interval

			out, err := sched.Apply(card, domain.GradeHard, now)
			require.NoError(t, err)

			assert.Equal(t, 0, out.Card.Reps)
			assert.Equal(t, 1, out.Card.IntervalDays)
			assert.Equal(t, now.AddDate(0, 0, 1), out.Card.DueAt)
			assert.Equal(t, domain.GradeHard, out.Card.LastGrade)
			assert.True(t, out.Card.IsLapsed())
		})
	}
}

func TestApplyClampsEaseFactor(t *testing.T) {
	t.Parallel()

	sched := New()
	now := time.Now().UTC()

	card := newTestCard(t)
	card.EaseFactor = domain.EaseFactorMin

	out, err := sched.Apply(card, domain.GradeHard, now)
	require.NoError(t, err)
	assert.Equal(t, domain.EaseFactorMin, out.Card.EaseFactor)

	card.EaseFactor = domain.EaseFactorMax
	out, err = sched.Apply(card, domain.GradeEasy, now)
	require.NoError(t, err)
	assert.Equal(t, domain.EaseFactorMax, out.Card.EaseFactor)
}

func TestApplyRejectsInvalidGrade(t *testing.T) {
	t.Parallel()

	_, err := New().Apply(newTestCard(t), domain.Grade("again"), time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrInvalidGrade)
}

func TestApplyEmitsReview(t *testing.T) {
	t.Parallel()

	sched := New()
	now := time.Date(2026, 4, 1, 8, 30, 0, 0, time.UTC)

	card := newTestCard(t)
	out, err := sched.Apply(card, domain.GradeEasy, now)
	require.NoError(t, err)

	assert.Equal(t, card.ID, out.Review.CardID)
	assert.Equal(t, domain.GradeEasy, out.Review.Grade)
	assert.Equal(t, now, out.Review.ReviewedAt)
	assert.Equal(t, out.Card.IntervalDays, out.Review.IntervalApplied)
	assert.Equal(t, out.Card.EaseFactor, out.Review.EFAfter)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	card := newTestCard(t)
	before := card

	_, err := New().Apply(card, domain.GradeEasy, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, before, card)
}

// For any sequence of grades, the interval stays >= 1 after any review
// and the ease factor stays within its clamped bounds.
func TestApplyInvariantsOverGradeSequences(t *testing.T) {
	t.Parallel()

	sched := New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	sequences := [][]domain.Grade{
		{domain.GradeEasy, domain.GradeEasy, domain.GradeEasy, domain.GradeEasy, domain.GradeEasy},
		{domain.GradeHard, domain.GradeHard, domain.GradeHard, domain.GradeHard},
		{domain.GradeMedium, domain.GradeHard, domain.GradeEasy, domain.GradeMedium, domain.GradeHard},
		{domain.GradeEasy, domain.GradeHard, domain.GradeEasy, domain.GradeEasy, domain.GradeMedium, domain.GradeEasy},
	}

	for _, seq := range sequences {
		card := newTestCard(t)
		clock := now
		for _, grade := range seq {
			out, err := sched.Apply(card, grade, clock)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, out.Card.IntervalDays, 1)
			assert.GreaterOrEqual(t, out.Card.EaseFactor, domain.EaseFactorMin)
			assert.LessOrEqual(t, out.Card.EaseFactor, domain.EaseFactorMax)
			assert.False(t, out.Card.DueAt.Before(clock), "due date never moves behind the review time")
			assert.NoError(t, out.Card.Validate())

			card = out.Card
			clock = out.Card.DueAt
		}
	}
}

// End-to-end scenario from the scheduling contract: new card graded Easy
// on day 0 is due day 1; graded Easy on day 1 jumps to six days; graded
// Hard on day 7 resets to one day.
func TestApplyEndToEndScenario(t *testing.T) {
	t.Parallel()

	sched := New()
	day0 := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	card := newTestCard(t)

	out, err := sched.Apply(card, domain.GradeEasy, day0)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Card.IntervalDays)
	assert.Equal(t, day0.AddDate(0, 0, 1), out.Card.DueAt)

	day1 := day0.AddDate(0, 0, 1)
	out, err = sched.Apply(out.Card, domain.GradeEasy, day1)
	require.NoError(t, err)
	assert.Equal(t, 6, out.Card.IntervalDays)
	assert.Equal(t, day1.AddDate(0, 0, 6), out.Card.DueAt)

	day7 := day1.AddDate(0, 0, 6)
	out, err = sched.Apply(out.Card, domain.GradeHard, day7)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Card.Reps)
	assert.Equal(t, 1, out.Card.IntervalDays)
	assert.Equal(t, day7.AddDate(0, 0, 1), out.Card.DueAt)
}

func TestNewParamsOverrides(t *testing.T) {
	t.Parallel()

	params := NewParams(ParamsConfig{
		MaxEaseFactor:  3.0,
		FirstInterval:  2,
		SecondInterval: 8,
	})

	assert.Equal(t, domain.EaseFactorMin, params.MinEaseFactor)
	assert.Equal(t, 3.0, params.MaxEaseFactor)
	assert.Equal(t, 2, params.FirstInterval)
	assert.Equal(t, 8, params.SecondInterval)
}
