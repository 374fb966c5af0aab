// Package srs implements the SM-2-lite scheduling algorithm that decides
// a card's next due date after a review. It is pure: no I/O, no hidden
// state, safe to call from any number of concurrent callers.
package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/flashmark/flashmark/internal/domain"
)

// Outcome bundles the result of applying a grade to a card: the card
// with its updated scheduling state, and the Review record that is the
// audit trail for that update. The two must be persisted as one unit.
type Outcome struct {
	Card   domain.Card
	Review domain.Review
}

// Scheduler applies grades to card scheduling state.
type Scheduler struct {
	params *Params
}

// New creates a Scheduler with default parameters.
func New() *Scheduler {
	return &Scheduler{params: NewDefaultParams()}
}

// NewWithParams creates a Scheduler with custom parameters.
func NewWithParams(params *Params) *Scheduler {
	return &Scheduler{params: params}
}

// Apply computes the card's next scheduling state for the given grade.
//
// Hard is a lapse: the repetition count resets to zero and the card comes
// back in one day. Medium and Easy are successes: the first success
// schedules one day out, the second six days, and every later success
// multiplies the previous interval by the adjusted ease factor, rounded
// half away from zero and floored at one day. The ease factor itself
// moves by a fixed per-grade delta and is clamped into the configured
// safe range before it is used.
//
// Apply never mutates its input; the updated card and the emitted Review
// are returned in the Outcome. The interval applied is always >= 1 day,
// so repeated same-day reviews produce monotonically non-decreasing due
// timestamps.
func (s *Scheduler) Apply(card domain.Card, grade domain.Grade, now time.Time) (Outcome, error) {
	if !grade.Valid() {
		return Outcome{}, fmt.Errorf("%w: %q", domain.ErrInvalidGrade, grade)
	}

	newEF := s.clampEF(card.EaseFactor + s.params.EaseAdjustment[grade])

	var newReps, newInterval int
	if grade == domain.GradeHard {
		newReps = 0
		newInterval = 1
	} else {
		newReps = card.Reps + 1
		switch newReps {
		case 1:
			newInterval = s.params.FirstInterval
		case 2:
			newInterval = s.params.SecondInterval
		default:
			base := float64(max(card.IntervalDays, 1))
			newInterval = int(math.Round(base * newEF))
			if newInterval < 1 {
				newInterval = 1
			}
		}
	}

	reviewedAt := now
	card.EaseFactor = newEF
	card.Reps = newReps
	card.IntervalDays = newInterval
	card.DueAt = now.AddDate(0, 0, newInterval)
	card.LastGrade = grade
	card.LastReviewedAt = &reviewedAt

	review, err := domain.NewReview(card.ID, grade, now, newInterval, newEF)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{Card: card, Review: *review}, nil
}

func (s *Scheduler) clampEF(ef float64) float64 {
	if ef < s.params.MinEaseFactor {
		return s.params.MinEaseFactor
	}
	if ef > s.params.MaxEaseFactor {
		return s.params.MaxEaseFactor
	}
	return ef
}
