package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/goldmacro/ai"
	"github.com/rustyeddy/goldmacro/config"
	"github.com/rustyeddy/goldmacro/ledger"
	"github.com/rustyeddy/goldmacro/risk"
	"github.com/rustyeddy/goldmacro/score"
	"github.com/rustyeddy/goldmacro/signal"
)

// DailyAnalysis is everything one run produces: the assessment, the
// directional call, the sizing recommendation and the narrative. It is
// handed to the report renderer and never stored.
type DailyAnalysis struct {
	Time       time.Time
	Mode       config.Mode
	Assessment score.Assessment
	Signal     signal.Direction
	BiasText   string
	FedStance  string
	DXYStance  string
	Sizing     *risk.Sizing // nil when the signal is WAIT or sizing failed
	Reasoning  string
	Readings   []score.Reading
}

// RunDaily executes the whole pipeline: fetch, assess, classify, size,
// narrate. The assessment is computed before anything touches the ledger,
// and the only ledger write is the data snapshot; balance state moves only
// on explicit trade or balance commands.
func (e *Engine) RunDaily(ctx context.Context, cond risk.Conditions) (*DailyAnalysis, error) {
	if e.fetcher == nil {
		return nil, fmt.Errorf("run daily: no fetcher configured")
	}
	readings, err := e.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch readings: %w", err)
	}
	if len(readings) == 0 {
		return nil, fmt.Errorf("fetch readings: no indicator data available")
	}
	return e.Analyze(ctx, readings, cond)
}

// Analyze runs the pipeline over caller-supplied readings. This is the
// entry point the CLI uses for manual what-if runs.
func (e *Engine) Analyze(ctx context.Context, readings []score.Reading, cond risk.Conditions) (*DailyAnalysis, error) {
	asmt, err := e.ComputeDailyAssessment(ctx, readings, cond)
	if err != nil {
		return nil, err
	}

	da := &DailyAnalysis{
		Time:       time.Now(),
		Mode:       e.cfg.Engine.Mode,
		Assessment: asmt,
		Readings:   readings,
	}

	fedRate, haveFed := readingValue(readings, score.IndicatorFedRate)
	dxy, haveDXY := readingValue(readings, score.IndicatorDXY)

	switch e.cfg.Engine.Mode {
	case config.ModeMatrix:
		if !haveFed || !haveDXY {
			da.Signal = signal.Wait
			da.BiasText = "Uncertain"
			break
		}
		cell, fs, ds := signal.FromLevels(e.cutoffs, fedRate, dxy)
		da.Signal = cell.Signal
		da.BiasText = cell.Bias
		da.FedStance = fs.String()
		da.DXYStance = ds.String()
		// In matrix mode confidence comes from signal clarity, not
		// component agreement.
		da.Assessment.Confidence = matrixConfidence(fs, ds, fedRate, dxy)
	default:
		da.Signal = directionFor(asmt.Bias)
		da.BiasText = string(asmt.Bias)
		if haveFed {
			da.FedStance = e.cutoffs.FedStance(fedRate).String()
		}
		if haveDXY {
			da.DXYStance = e.cutoffs.DXYStance(dxy).String()
		}
	}

	if da.Signal != signal.Wait {
		if s, err := e.sizeFor(ctx, da, cond, readings); err != nil {
			e.log.Warn().Err(err).Msg("sizing unavailable for this run")
		} else {
			da.Sizing = &s
		}
	}

	da.Reasoning = e.reasoning(ctx, da, fedRate, dxy)

	if err := e.snapshot(ctx, readings); err != nil {
		e.log.Warn().Err(err).Msg("failed to save data snapshot")
	}
	return da, nil
}

func (e *Engine) sizeFor(ctx context.Context, da *DailyAnalysis, cond risk.Conditions, readings []score.Reading) (risk.Sizing, error) {
	gold, ok := readingValue(readings, score.IndicatorGoldPrice)
	if !ok {
		return risk.Sizing{}, fmt.Errorf("no gold price reading to derive a stop from")
	}
	stop := gold * e.cfg.Risk.DefaultStopPct
	return e.ComputeSizing(ctx, da.Assessment, cond, stop)
}

// reasoning asks the analyzer for a short narrative and falls back to a
// deterministic summary when the call fails. A missing narrative never
// fails the run.
func (e *Engine) reasoning(ctx context.Context, da *DailyAnalysis, fedRate, dxy float64) string {
	fallback := ai.FallbackSummary(fedRate, dxy, strings.ToLower(da.BiasText))
	if e.analyzer == nil {
		return fallback.Summary
	}

	res, err := e.analyzer.Analyze(ctx, e.prompt(da, fedRate, dxy))
	if err != nil {
		e.log.Warn().Err(err).Msg("ai analysis failed, using fallback reasoning")
		return fallback.Summary
	}
	return res.Summary
}

func (e *Engine) prompt(da *DailyAnalysis, fedRate, dxy float64) string {
	var b strings.Builder
	b.WriteString("You are a professional gold trader analyzing macro conditions.\n\n")
	b.WriteString("CURRENT MACRO DATA:\n")
	for _, r := range da.Readings {
		fmt.Fprintf(&b, "- %s: %.2f\n", r.Name, r.Value)
	}
	fmt.Fprintf(&b, "\nSIGNAL: %s\nBIAS: %s\nRISK LEVEL: %s\n\n", da.Signal, da.BiasText, da.Assessment.Risk)
	b.WriteString("Provide a 2-3 sentence explanation of why this signal makes sense ")
	b.WriteString("in the current macro environment, and the key risk to watch. ")
	b.WriteString("Be concise and practical.")
	return b.String()
}

func (e *Engine) snapshot(ctx context.Context, readings []score.Reading) error {
	s := ledger.Snapshot{Time: time.Now()}
	if v, ok := readingValue(readings, score.IndicatorFedRate); ok {
		s.FedRate = v
	}
	if v, ok := readingValue(readings, score.IndicatorTreasury); ok {
		s.Treasury = v
	}
	if v, ok := readingValue(readings, score.IndicatorCPI); ok {
		s.CPI = v
	}
	if v, ok := readingValue(readings, score.IndicatorGoldPrice); ok {
		s.GoldPrice = v
	}
	if v, ok := readingValue(readings, score.IndicatorDXY); ok {
		s.DXY = v
	}
	return e.store.SaveSnapshot(ctx, s)
}

func readingValue(readings []score.Reading, name string) (float64, bool) {
	for _, r := range readings {
		if r.Name == name {
			return r.Value, true
		}
	}
	return 0, false
}

func directionFor(b score.Bias) signal.Direction {
	switch b {
	case score.Bullish:
		return signal.Long
	case score.Bearish:
		return signal.Short
	default:
		return signal.Wait
	}
}

// matrixConfidence maps signal clarity to a numeric confidence, mirroring
// the simplified variant's High/Medium/Low bands: aligned extremes score
// high, one clear leg scores medium, anything mixed scores low.
func matrixConfidence(fs signal.FedStance, ds signal.DXYStance, fedRate, dxy float64) float64 {
	switch {
	case fs == signal.Dovish && ds == signal.Weak,
		fs == signal.Hawkish && ds == signal.Strong,
		fedRate < 2.0, fedRate > 6.0,
		dxy < 95, dxy > 110:
		return 0.9
	case fs != signal.FedNeutral && ds == signal.DXYNeutral,
		fs == signal.FedNeutral && ds != signal.DXYNeutral:
		return 0.7
	default:
		return 0.4
	}
}
