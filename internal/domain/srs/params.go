package srs

import (
	"github.com/flashmark/flashmark/internal/domain"
)

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// Core limits
	MinEaseFactor float64
	MaxEaseFactor float64

	// Fixed ease-factor delta per grade
	EaseAdjustment map[domain.Grade]float64

	// Intervals for the first and second successful repetition
	FirstInterval  int
	SecondInterval int
}

// ParamsConfig allows overriding the default parameters when creating a
// new Params instance.
type ParamsConfig struct {
	MinEaseFactor float64
	MaxEaseFactor float64

	HardEaseAdjustment   float64
	MediumEaseAdjustment float64
	EasyEaseAdjustment   float64

	FirstInterval  int
	SecondInterval int
}

// NewDefaultParams creates a new Params instance with default values.
// The ease-factor deltas follow the classic SM-2 quality curve evaluated
// at the three grades: hard shrinks, medium holds, easy grows.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: domain.EaseFactorMin,
		MaxEaseFactor: domain.EaseFactorMax,

		EaseAdjustment: map[domain.Grade]float64{
			domain.GradeHard:   -0.14,
			domain.GradeMedium: 0.0,
			domain.GradeEasy:   0.10,
		},

		FirstInterval:  1,
		SecondInterval: 6,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero-valued fields keep their defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxEaseFactor > 0 {
		params.MaxEaseFactor = config.MaxEaseFactor
	}

	if config.HardEaseAdjustment != 0 {
		params.EaseAdjustment[domain.GradeHard] = config.HardEaseAdjustment
	}
	if config.MediumEaseAdjustment != 0 {
		params.EaseAdjustment[domain.GradeMedium] = config.MediumEaseAdjustment
	}
	if config.EasyEaseAdjustment != 0 {
		params.EaseAdjustment[domain.GradeEasy] = config.EasyEaseAdjustment
	}

	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}

	return params
}
