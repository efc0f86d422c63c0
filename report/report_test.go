package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/goldmacro/engine"
	"github.com/rustyeddy/goldmacro/ledger"
	"github.com/rustyeddy/goldmacro/risk"
	"github.com/rustyeddy/goldmacro/score"
	"github.com/rustyeddy/goldmacro/signal"
)

func sampleAnalysis() *engine.DailyAnalysis {
	return &engine.DailyAnalysis{
		Time:     time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC),
		Signal:   signal.Long,
		BiasText: "BULLISH",
		Assessment: score.Assessment{
			Composite:  -0.65,
			Bias:       score.Bullish,
			Confidence: 0.92,
			Risk:       score.RiskLow,
			Components: []score.ComponentScore{
				{Name: "fed_rate", RawValue: 1.0, Score: -0.5, Weight: 0.5},
				{Name: "dxy", RawValue: 95.0, Score: -1.0, Weight: 0.3},
			},
		},
		FedStance: "Dovish",
		DXYStance: "Weak",
		Sizing: &risk.Sizing{
			BaseRiskPct:     0.02,
			AdjustedRiskPct: 0.023,
			Quantity:        11.5,
			StopDistance:    20,
			Rationale:       "risk low; confidence 0.92 > 0.80: +15% bonus",
		},
		Reasoning: "Dovish policy and a weak dollar both favor gold.",
	}
}

func TestSubject(t *testing.T) {
	t.Parallel()

	got := Subject("Gold Signal", sampleAnalysis())
	assert.Equal(t, "Gold Signal - 2026-03-02 - LONG", got)

	got = Subject("", sampleAnalysis())
	assert.Contains(t, got, "Gold Signal")
}

func TestDailyBody(t *testing.T) {
	t.Parallel()

	body := DailyBody(sampleAnalysis())
	assert.Contains(t, body, "SIGNAL: LONG")
	assert.Contains(t, body, "Confidence: 92%")
	assert.Contains(t, body, "fed_rate")
	assert.Contains(t, body, "-0.650")
	assert.Contains(t, body, "Fed stance: Dovish | DXY stance: Weak")
	assert.Contains(t, body, "POSITION SIZING")
	assert.Contains(t, body, "11.50 units")
	assert.Contains(t, body, "weak dollar both favor gold")
	assert.NotContains(t, body, "degraded")
}

func TestDailyBodyDegradedNote(t *testing.T) {
	t.Parallel()

	da := sampleAnalysis()
	da.Assessment.Degraded = true
	da.Assessment.StaleInputs = []string{"cpi"}
	da.Sizing = nil

	body := DailyBody(da)
	assert.Contains(t, body, "degraded")
	assert.Contains(t, body, "stale inputs: cpi")
	assert.NotContains(t, body, "POSITION SIZING")
}

func TestPerformance(t *testing.T) {
	t.Parallel()

	body := Performance(ledger.Performance{
		InitialCapital: 10000,
		CurrentBalance: 9860,
		PeakBalance:    10200,
		TradeCount:     3,
		Wins:           2,
		Losses:         1,
		WinRate:        2.0 / 3.0,
		TotalPnl:       -140,
		LargestWin:     200,
		LargestLoss:    -390,
		MaxDrawdownPct: 3.8,
		TotalReturnPct: -1.4,
	})

	assert.Contains(t, body, "$10000.00")
	assert.Contains(t, body, "$9860.00")
	assert.Contains(t, body, "66.7%")
	assert.Contains(t, body, "-1.4%")
}

func TestTradesEmpty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "No trades recorded yet.\n", Trades(nil))
}

func TestTradesTable(t *testing.T) {
	t.Parallel()

	body := Trades([]ledger.Trade{{
		ID:           "01JXYZABCDEFGH",
		Signal:       signal.Short,
		EntryPrice:   2000,
		ExitPrice:    1980,
		Quantity:     5,
		RealizedPnl:  100,
		BalanceAfter: 10100,
		ClosedAt:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}})

	assert.Contains(t, body, "01JXYZAB") // IDs are truncated for display
	assert.NotContains(t, body, "01JXYZABCDEFGH")
	assert.Contains(t, body, "SHORT")
	assert.Contains(t, body, "+100.00")
	assert.Contains(t, body, "2026-03-02")
}

func TestHistoryTable(t *testing.T) {
	t.Parallel()

	body := History([]ledger.BalanceEntry{{
		Seq:     1,
		Time:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Delta:   10000,
		Balance: 10000,
		Reason:  ledger.ReasonReset,
		Note:    "account initialized",
	}})

	assert.Contains(t, body, "RESET")
	assert.Contains(t, body, "account initialized")

	assert.Equal(t, "No balance history.\n", History(nil))
}

func TestErrorBody(t *testing.T) {
	t.Parallel()
	body := ErrorBody(errors.New("fred unreachable"))
	assert.Contains(t, body, "fred unreachable")
}
