package score

// Indicator names understood by the default normalizer. Fetchers and config
// weight maps use the same keys.
const (
	IndicatorFedRate   = "fed_rate"
	IndicatorTreasury  = "treasury_10y"
	IndicatorCPI       = "cpi"
	IndicatorDXY       = "dxy"
	IndicatorSentiment = "sentiment"
	IndicatorGoldPrice = "gold_price"
)

// mapping describes a linear normalization around a center value. The
// reference range documents the raw values that map to the extremes, so a
// score is reproducible from the table alone:
//
//	score = (raw - center) / halfRange, clamped to [-1, 1]
//
// invert flips the sign for indicators where a higher raw value is bullish
// for gold (e.g. inflation).
type mapping struct {
	center    float64
	halfRange float64
	invert    bool
}

// Reference ranges for each indicator. Centers are long-run neutral levels;
// half ranges span the restrictive/accommodative extremes observed since the
// 1990s, so anything beyond them clamps and is flagged extrapolated.
//
//	fed_rate      neutral 2.5%, +-3.0  (5.5% fully restrictive -> +1)
//	treasury_10y  neutral 2.5%, +-3.0
//	cpi           target 2.0%,  +-4.0, inverted (hot inflation -> bullish gold)
//	dxy           neutral 102.5, +-7.5 (95 weak -> -1, 110 strong -> +1)
//	sentiment     already in [-1, 1], passthrough
var defaultMappings = map[string]mapping{
	IndicatorFedRate:   {center: 2.5, halfRange: 3.0},
	IndicatorTreasury:  {center: 2.5, halfRange: 3.0},
	IndicatorCPI:       {center: 2.0, halfRange: 4.0, invert: true},
	IndicatorDXY:       {center: 102.5, halfRange: 7.5},
	IndicatorSentiment: {center: 0, halfRange: 1.0},
}

// Normalizer maps raw indicator values onto the common [-1, 1] scale.
// The zero value is not usable; construct with NewNormalizer.
type Normalizer struct {
	mappings map[string]mapping
}

func NewNormalizer() *Normalizer {
	return &Normalizer{mappings: defaultMappings}
}

// Normalize converts one raw reading into a component score. It is total:
// unknown indicators normalize to 0, and out-of-range values clamp to the
// nearest extreme with Extrapolated set. It never fails.
func (n *Normalizer) Normalize(name string, raw, weight float64) ComponentScore {
	cs := ComponentScore{Name: name, RawValue: raw, Weight: weight}

	m, ok := n.mappings[name]
	if !ok || m.halfRange == 0 {
		return cs
	}

	s := (raw - m.center) / m.halfRange
	if m.invert {
		s = -s
	}
	if s < -1 || s > 1 {
		cs.Extrapolated = true
	}
	cs.Score = clamp(s, -1, 1)
	return cs
}

// Knows reports whether the normalizer has a reference range for name.
func (n *Normalizer) Knows(name string) bool {
	_, ok := n.mappings[name]
	return ok
}
