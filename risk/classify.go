// Package risk classifies how hostile the current environment is to a trade
// and converts that, plus signal confidence, into a position size.
package risk

import (
	"time"

	"github.com/rustyeddy/goldmacro/score"
)

// Conditions are the classifier inputs for one run. They are recomputed
// fresh every run; the classifier keeps no state between days.
type Conditions struct {
	// MixedSignals is true when not every component shares the composite's
	// sign (score.MixedSignals).
	MixedSignals bool

	// NextEvent is how far away the nearest major scheduled event is.
	// Negative means no event on the calendar.
	NextEvent time.Duration

	// EventCount is the number of major events inside the near window.
	EventCount int

	// Volatility is the volatility proxy (e.g. ATR as a fraction of price).
	Volatility float64
}

// Thresholds bound the classifier bands. All values are configuration.
type Thresholds struct {
	EventImminent time.Duration // HIGH window, default 12h
	EventNear     time.Duration // MODERATE window, default 24h
	VolHigh       float64       // volatility at or above this is "high"
	VolMiddle     float64       // volatility at or above this (but below high) is the middle band
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		EventImminent: 12 * time.Hour,
		EventNear:     24 * time.Hour,
		VolHigh:       0.020,
		VolMiddle:     0.010,
	}
}

// Classify derives the risk level from the conditions.
//
// HIGH requires the full conjunction: mixed signals AND an event inside the
// imminent window AND volatility at or above the high threshold. If any leg
// of that conjunction fails, the level can be at most MODERATE, no matter
// how strongly the other legs hold — partial matches never escalate.
// MODERATE needs any one of: mixed signals, an event inside the near window,
// or volatility in the middle band. Otherwise LOW.
func Classify(c Conditions, t Thresholds) score.RiskLevel {
	eventImminent := c.NextEvent >= 0 && c.NextEvent <= t.EventImminent
	eventNear := c.NextEvent >= 0 && c.NextEvent <= t.EventNear
	volHigh := c.Volatility >= t.VolHigh
	volMiddle := c.Volatility >= t.VolMiddle && c.Volatility < t.VolHigh

	if c.MixedSignals && eventImminent && volHigh {
		return score.RiskHigh
	}
	if c.MixedSignals || eventNear || volMiddle {
		return score.RiskModerate
	}
	return score.RiskLow
}
