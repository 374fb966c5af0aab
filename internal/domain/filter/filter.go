// Package filter implements the pure predicates that select a due set
// from a candidate collection of cards, plus ungated text and tag search
// over the full catalog. No I/O, no shared state.
package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/flashmark/flashmark/internal/domain"
)

// DueOptions controls due-set selection.
type DueOptions struct {
	// Now is the point in time that decides dueness.
	Now time.Time

	// IncludeNew admits cards that have never been reviewed.
	IncludeNew bool

	// IncludeLapsed admits cards whose most recent review was graded
	// Hard. The flag only gates cards that are already due or new; it
	// never surfaces a card that would not otherwise qualify.
	IncludeLapsed bool

	// Tag, when non-empty, keeps only cards carrying that exact tag.
	Tag string

	// Text, when non-empty, keeps only cards whose front or back
	// contains it (case-insensitive substring).
	Text string

	// Max truncates the ordered result when > 0. It never reorders.
	Max int
}

// SelectDue returns the cards eligible for review at opts.Now, ordered by
// due timestamp ascending with creation timestamp as the tie-breaker.
// Suspended cards are never returned; cards due in the future are
// returned only when they are new and IncludeNew is set.
func SelectDue(cards []*domain.Card, opts DueOptions) []*domain.Card {
	out := make([]*domain.Card, 0, len(cards))
	for _, c := range cards {
		if !eligible(c, opts) {
			continue
		}
		if opts.Tag != "" && !c.HasTag(opts.Tag) {
			continue
		}
		if opts.Text != "" && !matchFrontBack(c, opts.Text) {
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DueAt.Equal(out[j].DueAt) {
			return out[i].DueAt.Before(out[j].DueAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if opts.Max > 0 && len(out) > opts.Max {
		out = out[:opts.Max]
	}
	return out
}

func eligible(c *domain.Card, opts DueOptions) bool {
	if c.Suspended {
		return false
	}
	if c.IsLapsed() && !opts.IncludeLapsed {
		return false
	}
	if c.IsDue(opts.Now) {
		return true
	}
	return opts.IncludeNew && c.IsNew()
}

// Search returns the cards whose front, back, hint or any tag contains
// the query (case-insensitive substring). An empty or all-whitespace
// query returns the input unchanged. Unlike SelectDue, Search spans the
// whole catalog: suspended and future cards included.
func Search(cards []*domain.Card, query string) []*domain.Card {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return cards
	}
	out := make([]*domain.Card, 0, len(cards))
	for _, c := range cards {
		if matchAnyField(c, q) {
			out = append(out, c)
		}
	}
	return out
}

// ByTag returns the cards carrying the given tag (exact match after
// normalization), across the whole catalog.
func ByTag(cards []*domain.Card, tag string) []*domain.Card {
	out := make([]*domain.Card, 0, len(cards))
	for _, c := range cards {
		if c.HasTag(tag) {
			out = append(out, c)
		}
	}
	return out
}

func matchFrontBack(c *domain.Card, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(c.Front), q) ||
		strings.Contains(strings.ToLower(c.Back), q)
}

func matchAnyField(c *domain.Card, q string) bool {
	if strings.Contains(strings.ToLower(c.Front), q) ||
		strings.Contains(strings.ToLower(c.Back), q) ||
		strings.Contains(strings.ToLower(c.Hint), q) {
		return true
	}
	for _, t := range c.Tags {
		if strings.Contains(t, q) {
			return true
		}
	}
	return false
}
