package score

import (
	"fmt"
	"math"
	"time"
)

const weightTolerance = 1e-6

// Aggregator combines component scores into an Assessment. Thresholds are
// configuration, not constants: callers construct an Aggregator from their
// config so the bias cutoffs are explicit and testable.
type Aggregator struct {
	// BullishBelow and BearishAbove bound the neutral zone on the composite.
	// Defaults: -0.15 and +0.15.
	BullishBelow float64
	BearishAbove float64

	// FreshnessHorizon is how old the most stale input may be before
	// confidence starts decaying. Zero disables the freshness penalty.
	FreshnessHorizon time.Duration
}

func NewAggregator(horizon time.Duration) *Aggregator {
	return &Aggregator{
		BullishBelow:     -0.15,
		BearishAbove:     0.15,
		FreshnessHorizon: horizon,
	}
}

// Aggregate computes the weighted composite, bias label and confidence for
// one run. It is a pure function with no side effects.
//
// missingWeight is the summed weight of configured components that had no
// usable reading this run. The weights of the supplied components plus
// missingWeight must sum to 1.0 (+-1e-6) or Aggregate fails with ErrWeights;
// a partial input set degrades the assessment, it does not excuse a
// mis-specified weight table.
//
// freshnessFactor comes from Freshness over the raw readings; pass 1.0 when
// every input is current.
func (a *Aggregator) Aggregate(components []ComponentScore, missingWeight, freshnessFactor float64, now time.Time) (Assessment, error) {
	sum := missingWeight
	for _, c := range components {
		sum += c.Weight
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return Assessment{}, fmt.Errorf("%w: got %.6f", ErrWeights, sum)
	}

	var composite float64
	for _, c := range components {
		composite += c.Score * c.Weight
	}
	composite = clamp(composite, -1, 1)

	asmt := Assessment{
		Composite:  composite,
		Bias:       a.label(composite),
		Components: components,
		Time:       now,
	}

	conf := agreement(components, composite)
	conf *= clamp(freshnessFactor, 0, 1)
	if missingWeight > 0 {
		// Reduce confidence in proportion to the weight we could not see.
		conf *= 1 - missingWeight
		asmt.Degraded = true
	}
	asmt.Confidence = clamp(conf, 0, 1)

	return asmt, nil
}

func (a *Aggregator) label(composite float64) Bias {
	switch {
	case composite < a.BullishBelow:
		return Bullish
	case composite > a.BearishAbove:
		return Bearish
	default:
		return Neutral
	}
}

// agreement is the fraction of components whose sign matches the composite
// sign. Zero-scored components do not disagree with anything, so they count
// as agreeing.
func agreement(components []ComponentScore, composite float64) float64 {
	if len(components) == 0 {
		return 0
	}
	match := 0
	for _, c := range components {
		if c.Score*composite > 0 || math.Abs(c.Score) <= weightTolerance {
			match++
		}
	}
	return float64(match) / float64(len(components))
}

// Freshness returns 1.0 while the most stale reading is within the horizon
// and decays linearly to 0 over a second horizon beyond it. Readings without
// a timestamp are ignored.
func (a *Aggregator) Freshness(readings []Reading, now time.Time) float64 {
	if a.FreshnessHorizon <= 0 || len(readings) == 0 {
		return 1.0
	}
	var oldest time.Duration
	for _, r := range readings {
		if r.Time.IsZero() {
			continue
		}
		if age := now.Sub(r.Time); age > oldest {
			oldest = age
		}
	}
	if oldest <= a.FreshnessHorizon {
		return 1.0
	}
	over := oldest - a.FreshnessHorizon
	return clamp(1-float64(over)/float64(a.FreshnessHorizon), 0, 1)
}

// MixedSignals reports whether any component disagrees with the composite
// sign. The risk classifier uses this as its signal-conflict input.
func MixedSignals(asmt Assessment) bool {
	for _, c := range asmt.Components {
		if math.Abs(c.Score) <= weightTolerance {
			continue
		}
		if c.Score*asmt.Composite < 0 {
			return true
		}
	}
	return false
}
