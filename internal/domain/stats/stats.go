// Package stats aggregates review history into daily and per-deck
// summaries. Aggregation is a single pass, never mutates its input, and
// is safe to rerun: the same input always yields the same summary.
package stats

import (
	"time"

	"github.com/google/uuid"

	"github.com/flashmark/flashmark/internal/domain"
)

// DayFormat keys daily totals by the review timestamp's calendar day.
// No timezone normalization beyond what the timestamp already encodes.
const DayFormat = "2006-01-02"

// Totals counts reviews by grade.
type Totals struct {
	Total  int `json:"total"`
	Hard   int `json:"hard"`
	Medium int `json:"medium"`
	Easy   int `json:"easy"`
}

func (t *Totals) record(g domain.Grade) {
	t.Total++
	switch g {
	case domain.GradeHard:
		t.Hard++
	case domain.GradeMedium:
		t.Medium++
	case domain.GradeEasy:
		t.Easy++
	}
}

// Accuracy is the fraction of reviews graded Medium or Easy. Hard counts
// as incorrect. With no reviews in scope there is no data and the result
// is 0 rather than a division error; check Total to tell the two apart.
func (t Totals) Accuracy() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Medium+t.Easy) / float64(t.Total)
}

// DeckTotals is the per-deck rollup: review totals plus the deck's
// current due, new and lapsed card counts.
type DeckTotals struct {
	Totals
	Due    int `json:"due"`
	New    int `json:"new"`
	Lapsed int `json:"lapsed"`
}

// Summary is the result of one aggregation pass.
type Summary struct {
	Totals  Totals                    `json:"totals"`
	Daily   map[string]*Totals        `json:"daily"`
	PerDeck map[uuid.UUID]*DeckTotals `json:"per_deck"`
}

// Options scopes an aggregation.
type Options struct {
	// From and To bound the reviews in scope (inclusive From, exclusive
	// To). Nil means unbounded on that side.
	From *time.Time
	To   *time.Time

	// Now decides the current due/new/lapsed card counts.
	Now time.Time
}

// Aggregate folds reviews into a Summary. Reviews are joined to their
// card's owning deck through cardsByID; reviews referencing an unknown
// card id contribute to the global and daily totals but are skipped in
// the per-deck rollup, since history may reference since-deleted cards.
func Aggregate(
	reviews []*domain.Review,
	cardsByID map[uuid.UUID]*domain.Card,
	opts Options,
) Summary {
	summary := Summary{
		Daily:   make(map[string]*Totals),
		PerDeck: make(map[uuid.UUID]*DeckTotals),
	}

	for _, c := range cardsByID {
		dt := summary.PerDeck[c.DeckID]
		if dt == nil {
			dt = &DeckTotals{}
			summary.PerDeck[c.DeckID] = dt
		}
		if c.IsDue(opts.Now) {
			dt.Due++
		}
		if c.IsNew() {
			dt.New++
		}
		if c.IsLapsed() {
			dt.Lapsed++
		}
	}

	for _, r := range reviews {
		if !inRange(r.ReviewedAt, opts) {
			continue
		}

		summary.Totals.record(r.Grade)

		day := r.ReviewedAt.Format(DayFormat)
		daily := summary.Daily[day]
		if daily == nil {
			daily = &Totals{}
			summary.Daily[day] = daily
		}
		daily.record(r.Grade)

		card, ok := cardsByID[r.CardID]
		if !ok {
			continue // review for a since-deleted card
		}
		summary.PerDeck[card.DeckID].record(r.Grade)
	}

	return summary
}

func inRange(ts time.Time, opts Options) bool {
	if opts.From != nil && ts.Before(*opts.From) {
		return false
	}
	if opts.To != nil && !ts.Before(*opts.To) {
		return false
	}
	return true
}

// DailyStreak counts consecutive calendar days ending at today that each
// have at least one review.
func DailyStreak(reviews []*domain.Review, today time.Time) int {
	days := make(map[string]bool, len(reviews))
	for _, r := range reviews {
		days[r.ReviewedAt.Format(DayFormat)] = true
	}

	streak := 0
	day := today
	for days[day.Format(DayFormat)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
