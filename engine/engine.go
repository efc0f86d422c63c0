// Package engine wires the scoring, risk and ledger components into the
// daily pipeline. Collaborators are injected as interfaces; there are no
// ambient singletons, so a test can run the whole pipeline against fakes.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/goldmacro/ai"
	"github.com/rustyeddy/goldmacro/config"
	"github.com/rustyeddy/goldmacro/ledger"
	"github.com/rustyeddy/goldmacro/risk"
	"github.com/rustyeddy/goldmacro/score"
	"github.com/rustyeddy/goldmacro/signal"
)

// Fetcher supplies raw indicator readings. Implementations may return a
// partial set; missing indicators degrade the assessment instead of
// aborting it.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]score.Reading, error)
}

// Store is the slice of the ledger the engine needs. Score computation
// never writes through it; balance mutations happen only on explicit
// operator commands.
type Store interface {
	CurrentBalance(ctx context.Context) (float64, error)
	RecordTrade(ctx context.Context, dir signal.Direction, entry, exit, quantity float64, openedAt, closedAt time.Time, closeReason string) (ledger.Trade, error)
	Statistics(ctx context.Context) (ledger.Performance, error)
	SaveSnapshot(ctx context.Context, s ledger.Snapshot) error
}

// Engine is the orchestrator. It holds no mutable state of its own; all
// durable state lives behind Store.
type Engine struct {
	cfg        *config.Config
	normalizer *score.Normalizer
	aggregator *score.Aggregator
	sizer      risk.SizerParams
	thresholds risk.Thresholds
	cutoffs    signal.Cutoffs

	fetcher  Fetcher
	analyzer ai.Analyzer
	store    Store
	log      zerolog.Logger
}

// New builds an engine from config and collaborators. fetcher and analyzer
// may be nil when the caller supplies readings directly and does not want a
// narrative.
func New(cfg *config.Config, store Store, fetcher Fetcher, analyzer ai.Analyzer, log zerolog.Logger) *Engine {
	agg := score.NewAggregator(cfg.Scoring.FreshnessHorizon())
	agg.BullishBelow = cfg.Scoring.BullishBelow
	agg.BearishAbove = cfg.Scoring.BearishAbove

	return &Engine{
		cfg:        cfg,
		normalizer: score.NewNormalizer(),
		aggregator: agg,
		sizer: risk.SizerParams{
			BaseRiskPct:     cfg.Risk.BaseRiskPct,
			ConfidenceBonus: cfg.Risk.ConfidenceBonus,
			BonusThreshold:  cfg.Risk.BonusThreshold,
			Adjustments:     cfg.Risk.Adjustments,
		},
		thresholds: risk.Thresholds{
			EventImminent: time.Duration(cfg.Risk.EventImminentHours * float64(time.Hour)),
			EventNear:     time.Duration(cfg.Risk.EventNearHours * float64(time.Hour)),
			VolHigh:       cfg.Risk.VolHigh,
			VolMiddle:     cfg.Risk.VolMiddle,
		},
		cutoffs: signal.Cutoffs{
			FedDovishBelow:  cfg.Matrix.FedDovishBelow,
			FedHawkishAbove: cfg.Matrix.FedHawkishAbove,
			DXYWeakBelow:    cfg.Matrix.DXYWeakBelow,
			DXYStrongAbove:  cfg.Matrix.DXYStrongAbove,
		},
		fetcher:  fetcher,
		analyzer: analyzer,
		store:    store,
		log:      log.With().Str("component", "engine").Logger(),
	}
}

// ComputeDailyAssessment turns one day's readings into an assessment.
// Pure with respect to the ledger: nothing is written.
//
// conditions.MixedSignals is derived from the components and overwritten
// here; callers only supply the event and volatility inputs.
func (e *Engine) ComputeDailyAssessment(ctx context.Context, readings []score.Reading, cond risk.Conditions) (score.Assessment, error) {
	components, missing := e.components(readings)

	freshness := e.aggregator.Freshness(readings, time.Now())
	asmt, err := e.aggregator.Aggregate(components, missing, freshness, time.Now())
	if err != nil {
		return score.Assessment{}, err
	}

	for _, r := range readings {
		if r.Stale {
			asmt.StaleInputs = append(asmt.StaleInputs, r.Name)
		}
	}

	cond.MixedSignals = score.MixedSignals(asmt)
	asmt.Risk = risk.Classify(cond, e.thresholds)

	e.log.Info().
		Float64("composite", asmt.Composite).
		Str("bias", string(asmt.Bias)).
		Float64("confidence", asmt.Confidence).
		Str("risk", string(asmt.Risk)).
		Bool("degraded", asmt.Degraded).
		Msg("assessment computed")
	return asmt, nil
}

// components normalizes each reading that has a configured weight and sums
// the weight of configured indicators without a reading.
func (e *Engine) components(readings []score.Reading) ([]score.ComponentScore, float64) {
	weights := e.cfg.Scoring.Weights
	if e.cfg.Engine.Mode == config.ModeMatrix {
		// Matrix mode only looks at policy and the dollar; an even split
		// keeps the composite comparable across modes.
		weights = map[string]float64{
			score.IndicatorFedRate: 0.5,
			score.IndicatorDXY:     0.5,
		}
	}

	seen := make(map[string]bool, len(readings))
	var components []score.ComponentScore
	for _, r := range readings {
		w, ok := weights[r.Name]
		if !ok {
			continue
		}
		seen[r.Name] = true
		components = append(components, e.normalizer.Normalize(r.Name, r.Value, w))
	}

	var missing float64
	for name, w := range weights {
		if !seen[name] {
			missing += w
		}
	}
	return components, missing
}

// ComputeSizing derives the position recommendation for an assessment. It
// reads the current balance and nothing else; the ledger is not mutated.
func (e *Engine) ComputeSizing(ctx context.Context, asmt score.Assessment, cond risk.Conditions, stopDistance float64) (risk.Sizing, error) {
	balance, err := e.store.CurrentBalance(ctx)
	if err != nil {
		return risk.Sizing{}, fmt.Errorf("read balance: %w", err)
	}
	active := risk.ActiveAdjustments(cond, e.thresholds)
	return risk.Size(e.sizer, asmt.Confidence, asmt.Risk, active, balance, stopDistance)
}

// RecordTrade forwards an explicit, user-confirmed trade to the ledger.
func (e *Engine) RecordTrade(ctx context.Context, dir signal.Direction, entry, exit, quantity float64, openedAt, closedAt time.Time, closeReason string) (ledger.Trade, error) {
	return e.store.RecordTrade(ctx, dir, entry, exit, quantity, openedAt, closedAt, closeReason)
}

// Statistics returns the ledger's derived performance snapshot.
func (e *Engine) Statistics(ctx context.Context) (ledger.Performance, error) {
	return e.store.Statistics(ctx)
}
