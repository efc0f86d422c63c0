// Package signal implements the simplified signal matrix: a fixed lookup
// from discretized Fed stance and DXY stance to a trade signal.
package signal

// Direction is the trade signal for gold.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
	Wait  Direction = "WAIT"
)

// FedStance discretizes the policy rate.
type FedStance int

const (
	Dovish FedStance = iota
	FedNeutral
	Hawkish
)

func (s FedStance) String() string {
	switch s {
	case Dovish:
		return "Dovish"
	case Hawkish:
		return "Hawkish"
	default:
		return "Neutral"
	}
}

// DXYStance discretizes the dollar index.
type DXYStance int

const (
	Weak DXYStance = iota
	DXYNeutral
	Strong
)

func (s DXYStance) String() string {
	switch s {
	case Weak:
		return "Weak"
	case Strong:
		return "Strong"
	default:
		return "Neutral"
	}
}

// Cutoffs hold the discretization thresholds. Defaults: rates below 3% are
// dovish and above 5% hawkish; DXY below 100 is weak and above 105 strong.
type Cutoffs struct {
	FedDovishBelow  float64
	FedHawkishAbove float64
	DXYWeakBelow    float64
	DXYStrongAbove  float64
}

func DefaultCutoffs() Cutoffs {
	return Cutoffs{
		FedDovishBelow:  3.0,
		FedHawkishAbove: 5.0,
		DXYWeakBelow:    100.0,
		DXYStrongAbove:  105.0,
	}
}

func (c Cutoffs) FedStance(rate float64) FedStance {
	switch {
	case rate < c.FedDovishBelow:
		return Dovish
	case rate > c.FedHawkishAbove:
		return Hawkish
	default:
		return FedNeutral
	}
}

func (c Cutoffs) DXYStance(dxy float64) DXYStance {
	switch {
	case dxy < c.DXYWeakBelow:
		return Weak
	case dxy > c.DXYStrongAbove:
		return Strong
	default:
		return DXYNeutral
	}
}

// Cell is one entry of the matrix: the signal plus its narrative bias.
type Cell struct {
	Signal Direction
	Bias   string
}

// matrix is the fixed lookup table, indexed [FedStance][DXYStance]. It is
// deliberately written out cell by cell rather than derived from a formula:
// editing one cell must not perturb its neighbors.
var matrix = [3][3]Cell{
	Dovish: {
		Weak:       {Long, "Strong Bullish"},
		DXYNeutral: {Long, "Bullish"},
		Strong:     {Wait, "Mixed - DXY Override"},
	},
	FedNeutral: {
		Weak:       {Long, "Bullish"},
		DXYNeutral: {Wait, "Neutral"},
		Strong:     {Short, "Bearish"},
	},
	Hawkish: {
		Weak:       {Wait, "Mixed - Conflicting"},
		DXYNeutral: {Short, "Bearish"},
		Strong:     {Short, "Strong Bearish"},
	},
}

// Lookup returns the matrix cell for the given stances.
func Lookup(fed FedStance, dxy DXYStance) Cell {
	return matrix[fed][dxy]
}

// FromLevels discretizes raw values with the cutoffs and looks up the cell.
func FromLevels(c Cutoffs, fedRate, dxyLevel float64) (Cell, FedStance, DXYStance) {
	fs := c.FedStance(fedRate)
	ds := c.DXYStance(dxyLevel)
	return Lookup(fs, ds), fs, ds
}
