package risk

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rustyeddy/goldmacro/score"
)

// ErrInvalidSizing is returned for caller-input violations: a non-positive
// stop distance or account balance. The ledger is never touched.
var ErrInvalidSizing = errors.New("invalid sizing input")

// Adjustment names used by the engine when mapping conditions to sizing
// reductions. The deltas live in SizerParams.Adjustments so they stay
// configuration.
const (
	AdjMajorEvent     = "major_event"
	AdjHighVolatility = "high_volatility"
	AdjMultipleEvents = "multiple_events"
)

// SizerParams hold the sizing configuration.
type SizerParams struct {
	// BaseRiskPct is the fraction of the account risked on a full-size
	// trade. Default 0.02.
	BaseRiskPct float64

	// ConfidenceBonus is applied multiplicatively when confidence exceeds
	// BonusThreshold, before any event reductions.
	ConfidenceBonus float64 // default 0.15
	BonusThreshold  float64 // default 0.80

	// Adjustments maps an adjustment name to a signed delta. Each active
	// adjustment multiplies the risk by (1 + delta); simultaneous
	// adjustments compound, they do not sum.
	Adjustments map[string]float64
}

func DefaultSizerParams() SizerParams {
	return SizerParams{
		BaseRiskPct:     0.02,
		ConfidenceBonus: 0.15,
		BonusThreshold:  0.80,
		Adjustments: map[string]float64{
			AdjMajorEvent:     -0.25,
			AdjHighVolatility: -0.50,
			AdjMultipleEvents: -0.35,
		},
	}
}

// Sizing is the recommendation handed to the user. It is advice only; the
// sizer never mutates account state.
type Sizing struct {
	BaseRiskPct     float64
	AdjustedRiskPct float64
	Quantity        float64
	StopDistance    float64
	Rationale       string
}

// Size derives the recommended risk fraction and instrument quantity.
//
//	adjusted = base * (1 + confidenceBonus) * prod(1 + delta_k)
//
// clamped to [0, 2*base]. active names without a configured delta are
// ignored. balance is read from the ledger by the caller; Size only reads
// its arguments.
func Size(p SizerParams, confidence float64, level score.RiskLevel, active []string, balance, stopDistance float64) (Sizing, error) {
	if stopDistance <= 0 {
		return Sizing{}, fmt.Errorf("%w: stop distance %.4f must be positive", ErrInvalidSizing, stopDistance)
	}
	if balance <= 0 {
		return Sizing{}, fmt.Errorf("%w: account balance %.2f must be positive", ErrInvalidSizing, balance)
	}

	adjusted := p.BaseRiskPct
	var notes []string

	if confidence > p.BonusThreshold {
		adjusted *= 1 + p.ConfidenceBonus
		notes = append(notes, fmt.Sprintf("confidence %.2f > %.2f: +%.0f%% bonus",
			confidence, p.BonusThreshold, p.ConfidenceBonus*100))
	}

	// Apply in a stable order so the rationale is reproducible.
	names := make([]string, 0, len(active))
	names = append(names, active...)
	sort.Strings(names)
	for _, name := range names {
		delta, ok := p.Adjustments[name]
		if !ok {
			continue
		}
		adjusted *= 1 + delta
		notes = append(notes, fmt.Sprintf("%s: %+.0f%%", name, delta*100))
	}

	if adjusted < 0 {
		adjusted = 0
	}
	if max := p.BaseRiskPct * 2; adjusted > max {
		adjusted = max
		notes = append(notes, "clamped to 2x base risk")
	}

	s := Sizing{
		BaseRiskPct:     p.BaseRiskPct,
		AdjustedRiskPct: adjusted,
		StopDistance:    stopDistance,
		Quantity:        balance * adjusted / stopDistance,
	}

	if len(notes) == 0 {
		notes = append(notes, "no adjustments")
	}
	s.Rationale = fmt.Sprintf("risk %s; %s", strings.ToLower(string(level)), strings.Join(notes, "; "))
	return s, nil
}

// ActiveAdjustments maps classifier conditions onto the adjustment names to
// apply for this run.
func ActiveAdjustments(c Conditions, t Thresholds) []string {
	var active []string
	if c.NextEvent >= 0 && c.NextEvent <= t.EventNear {
		active = append(active, AdjMajorEvent)
	}
	if c.Volatility >= t.VolHigh {
		active = append(active, AdjHighVolatility)
	}
	if c.EventCount > 1 {
		active = append(active, AdjMultipleEvents)
	}
	return active
}
