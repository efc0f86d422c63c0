package fetch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/goldmacro/score"
)

// Combined gathers the five tracked indicators from FRED and the quote
// endpoint. A failed indicator is omitted from the result rather than
// failing the whole fetch; the aggregator degrades the assessment instead.
type Combined struct {
	fred   *FRED
	quotes *Quotes
	// StaleAfter marks readings older than this as stale.
	StaleAfter time.Duration
	log        zerolog.Logger
}

func NewCombined(fred *FRED, quotes *Quotes, staleAfter time.Duration, log zerolog.Logger) *Combined {
	return &Combined{
		fred:       fred,
		quotes:     quotes,
		StaleAfter: staleAfter,
		log:        log.With().Str("component", "fetch").Logger(),
	}
}

// FetchAll returns whatever readings could be obtained. Only a fully empty
// result is worth an error from the caller's perspective, and even that is
// left to the engine to decide.
func (c *Combined) FetchAll(ctx context.Context) ([]score.Reading, error) {
	now := time.Now()
	var out []score.Reading

	add := func(name string, value float64, when time.Time, err error) {
		if err != nil {
			c.log.Warn().Err(err).Str("indicator", name).Msg("indicator fetch failed, proceeding without it")
			return
		}
		r := score.Reading{Name: name, Value: value, Time: when}
		if c.StaleAfter > 0 && !when.IsZero() && now.Sub(when) > c.StaleAfter {
			r.Stale = true
		}
		out = append(out, r)
	}

	v, when, err := c.fred.Latest(ctx, SeriesFedFunds)
	add(score.IndicatorFedRate, v, when, err)

	v, when, err = c.fred.Latest(ctx, SeriesTreasury)
	add(score.IndicatorTreasury, v, when, err)

	v, when, err = c.fred.CPIYoY(ctx)
	add(score.IndicatorCPI, v, when, err)

	v, when, err = c.quotes.Last(ctx, SymbolGold)
	add(score.IndicatorGoldPrice, v, when, err)

	v, when, err = c.quotes.Last(ctx, SymbolDXY)
	add(score.IndicatorDXY, v, when, err)

	return out, nil
}
