// Package score turns raw macro indicator readings into a single directional
// assessment for gold.
//
// Sign convention, applied uniformly across every indicator: positive
// normalized scores are BEARISH for gold (dollar-strength direction),
// negative scores are BULLISH. The composite inherits the same convention,
// so a composite below the bullish threshold reads as a long-gold bias.
package score

import (
	"errors"
	"time"
)

// Bias is the categorical directional call derived from the composite score.
type Bias string

const (
	Bullish Bias = "BULLISH"
	Bearish Bias = "BEARISH"
	Neutral Bias = "NEUTRAL"
)

// RiskLevel classifies how aggressively the bias should be traded.
// It is populated on the Assessment by the risk package.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
)

// Reading is one raw indicator observation as delivered by a data fetcher.
type Reading struct {
	Name  string
	Value float64
	Time  time.Time
	Stale bool
}

// ComponentScore is a normalized, weighted contribution to the composite.
type ComponentScore struct {
	Name         string
	RawValue     float64
	Score        float64 // in [-1, 1]
	Weight       float64 // in [0, 1]
	Extrapolated bool    // raw value fell outside the reference range
}

// Assessment is the immutable result of one aggregation run. It is created
// fresh each time and never mutated, only superseded by the next run.
type Assessment struct {
	Composite  float64 // in [-1, 1]
	Bias       Bias
	Confidence float64 // in [0, 1]
	Components []ComponentScore
	Risk       RiskLevel

	// Degraded is set when one or more configured indicators had no usable
	// reading. Confidence is already penalized by the missing weight.
	Degraded    bool
	StaleInputs []string
	Time        time.Time
}

// ErrWeights is returned when component weights do not sum to 1.0. Weights
// are configuration; a bad sum must fail loudly rather than silently
// renormalize.
var ErrWeights = errors.New("component weights must sum to 1.0")

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
