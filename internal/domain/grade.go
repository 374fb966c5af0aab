package domain

import (
	"errors"
	"fmt"
)

// Grade represents the result of a card review.
type Grade string

// Possible grade values. The set is closed: anything else is rejected
// before it reaches the scheduler or a store.
const (
	GradeHard   Grade = "hard"
	GradeMedium Grade = "medium"
	GradeEasy   Grade = "easy"
)

// ErrInvalidGrade is returned when a grade is outside the closed set.
var ErrInvalidGrade = errors.New("invalid grade")

// Valid reports whether g is one of the three known grades.
func (g Grade) Valid() bool {
	switch g {
	case GradeHard, GradeMedium, GradeEasy:
		return true
	default:
		return false
	}
}

// Score maps a grade to its ordinal weight (hard=1, medium=2, easy=3).
// The weight is used for the ease-factor adjustment and for compact
// storage; grade logic otherwise branches by category.
func (g Grade) Score() int {
	switch g {
	case GradeHard:
		return 1
	case GradeMedium:
		return 2
	case GradeEasy:
		return 3
	default:
		return 0
	}
}

// ParseGrade converts a string into a Grade.
// Returns ErrInvalidGrade for anything outside the closed set.
func ParseGrade(s string) (Grade, error) {
	g := Grade(s)
	if !g.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidGrade, s)
	}
	return g, nil
}

// GradeFromScore converts a stored ordinal weight back into a Grade.
// Returns ErrInvalidGrade for unknown weights.
func GradeFromScore(score int) (Grade, error) {
	switch score {
	case 1:
		return GradeHard, nil
	case 2:
		return GradeMedium, nil
	case 3:
		return GradeEasy, nil
	default:
		return "", fmt.Errorf("%w: score %d", ErrInvalidGrade, score)
	}
}
