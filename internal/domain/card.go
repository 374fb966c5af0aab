package domain

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ease factor bounds. The scheduler clamps every adjustment into
// [EaseFactorMin, EaseFactorMax] so intervals can neither collapse to
// zero growth nor explode unboundedly.
const (
	EaseFactorMin     = 1.3
	EaseFactorMax     = 2.8
	EaseFactorDefault = 2.5
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardDeckIDEmpty is returned when a card's deck ID is empty or nil.
	ErrCardDeckIDEmpty = errors.New("card deck ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card's front text is empty.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardBackEmpty is returned when a card's back text is empty.
	ErrCardBackEmpty = errors.New("card back cannot be empty")

	// ErrCardIntervalNegative is returned when the interval is below zero.
	ErrCardIntervalNegative = errors.New("card interval cannot be negative")

	// ErrCardRepsNegative is returned when the repetition count is below zero.
	ErrCardRepsNegative = errors.New("card repetition count cannot be negative")

	// ErrCardEaseFactorRange is returned when the ease factor is outside
	// the clamped safe range.
	ErrCardEaseFactorRange = errors.New("card ease factor out of range")
)

// Card is a single flashcard belonging to exactly one deck. It carries
// its own scheduling state: repetition count, current interval, ease
// factor, due timestamp and the outcome of the most recent review.
type Card struct {
	ID     uuid.UUID `json:"id"`
	DeckID uuid.UUID `json:"deck_id"`
	Front  string    `json:"front"`
	Back   string    `json:"back"`
	Hint   string    `json:"hint,omitempty"`
	Tags   []string  `json:"tags"`

	Reps           int        `json:"reps"`
	IntervalDays   int        `json:"interval_days"`
	EaseFactor     float64    `json:"ef"`
	DueAt          time.Time  `json:"due_at"`
	LastGrade      Grade      `json:"last_grade,omitempty"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	Suspended      bool       `json:"suspended"`

	CreatedAt time.Time `json:"created_at"`
}

// NewCard creates a new Card in the given deck with default scheduling
// state: zero repetitions, default ease factor, due immediately.
// Returns an error if validation fails.
func NewCard(deckID uuid.UUID, front, back string) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:           uuid.New(),
		DeckID:       deckID,
		Front:        front,
		Back:         back,
		Tags:         []string{},
		Reps:         0,
		IntervalDays: 0,
		EaseFactor:   EaseFactorDefault,
		DueAt:        now,
		Suspended:    false,
		CreatedAt:    now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}

	if strings.TrimSpace(c.Front) == "" {
		return ErrCardFrontEmpty
	}

	if strings.TrimSpace(c.Back) == "" {
		return ErrCardBackEmpty
	}

	if c.Reps < 0 {
		return ErrCardRepsNegative
	}

	if c.IntervalDays < 0 {
		return ErrCardIntervalNegative
	}

	if c.EaseFactor < EaseFactorMin || c.EaseFactor > EaseFactorMax {
		return ErrCardEaseFactorRange
	}

	if c.LastGrade != "" && !c.LastGrade.Valid() {
		return ErrInvalidGrade
	}

	return nil
}

// IsNew reports whether the card has never been reviewed. A lapsed card
// has its repetition count reset to zero but keeps its last-reviewed
// timestamp, so both conditions are checked.
func (c *Card) IsNew() bool {
	return c.Reps == 0 && c.LastReviewedAt == nil
}

// IsDue reports whether the card's scheduled due timestamp has passed
// and the card is not suspended.
func (c *Card) IsDue(now time.Time) bool {
	return !c.Suspended && !c.DueAt.After(now)
}

// IsLapsed reports whether the card's most recent review was graded Hard.
func (c *Card) IsLapsed() bool {
	return c.LastGrade == GradeHard
}

// HasTag reports whether the card carries the given tag (exact match
// against the normalized tag set).
func (c *Card) HasTag(tag string) bool {
	want := NormalizeTag(tag)
	for _, t := range c.Tags {
		if t == want {
			return true
		}
	}
	return false
}

// NormalizeTag canonicalizes a single tag: trimmed and lowercased.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags canonicalizes a tag set: each tag trimmed and lowercased,
// empties dropped, duplicates collapsed, result sorted. Insertion order
// carries no meaning.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
