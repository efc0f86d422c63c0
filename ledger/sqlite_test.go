package ledger

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/goldmacro/signal"
)

func newTestLedger(t *testing.T, initial float64) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	l, err := Open(path, initial, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestOpenSeedsInitialCapital(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, 10000)
	ctx := context.Background()

	bal, err := l.CurrentBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, bal)

	initial, err := l.InitialCapital(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, initial)

	history, err := l.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ReasonReset, history[0].Reason)
	assert.Equal(t, 10000.0, history[0].Delta)
}

func TestReopenDoesNotReseed(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	l, err := Open(path, 10000, zerolog.Nop())
	require.NoError(t, err)
	_, err = l.AdjustBalance(ctx, 500, ReasonDeposit, "top up")
	require.NoError(t, err)
	require.NoError(t, l.Close())

	// Reopening with a different initial capital must not touch an
	// existing ledger.
	l, err = Open(path, 99999, zerolog.Nop())
	require.NoError(t, err)
	defer l.Close()

	bal, err := l.CurrentBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10500.0, bal)

	initial, err := l.InitialCapital(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, initial)
}

func TestRecordTradeLongLoss(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, 10000)
	ctx := context.Background()

	opened := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	closed := opened.Add(6 * time.Hour)

	// LONG 10 units, entry 1950, exit 1911: pnl = (1911-1950)*10 = -390.
	tr, err := l.RecordTrade(ctx, signal.Long, 1950, 1911, 10, opened, closed, "stop")
	require.NoError(t, err)

	assert.InDelta(t, -390.0, tr.RealizedPnl, 1e-9)
	assert.InDelta(t, 9610.0, tr.BalanceAfter, 1e-9)
	assert.NotEmpty(t, tr.ID)

	bal, err := l.CurrentBalance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 9610.0, bal, 1e-9)

	got, err := l.GetTrade(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.ID, got.ID)
	assert.Equal(t, signal.Long, got.Signal)
	assert.InDelta(t, -390.0, got.RealizedPnl, 1e-9)
}

func TestRecordTradeShortProfit(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, 10000)
	ctx := context.Background()
	now := time.Now().UTC()

	// SHORT profits when price falls: (exit-entry)*qty*(-1).
	tr, err := l.RecordTrade(ctx, signal.Short, 2000, 1980, 5, now, now, "target")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, tr.RealizedPnl, 1e-9)
	assert.InDelta(t, 10100.0, tr.BalanceAfter, 1e-9)
}

func TestRecordTradeRejectsInvalid(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, 10000)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := l.RecordTrade(ctx, signal.Long, 1950, 1960, 0, now, now, "")
	assert.ErrorIs(t, err, ErrInvalidTrade)

	_, err = l.RecordTrade(ctx, signal.Long, -1, 1960, 10, now, now, "")
	assert.ErrorIs(t, err, ErrInvalidTrade)

	_, err = l.RecordTrade(ctx, signal.Wait, 1950, 1960, 10, now, now, "")
	assert.ErrorIs(t, err, ErrInvalidTrade)

	// Rejected trades leave the ledger untouched.
	bal, err := l.CurrentBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, bal)
	history, err := l.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestBalanceIsFoldOverDeltas(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, 10000)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := l.AdjustBalance(ctx, 2000, ReasonDeposit, "")
	require.NoError(t, err)
	_, err = l.RecordTrade(ctx, signal.Long, 1950, 1970, 10, now, now, "target")
	require.NoError(t, err)
	_, err = l.AdjustBalance(ctx, 700, ReasonWithdrawal, "")
	require.NoError(t, err)

	history, err := l.History(ctx)
	require.NoError(t, err)

	var sum float64
	for _, e := range history {
		sum += e.Delta
	}

	bal, err := l.CurrentBalance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, sum, bal, 1e-9)
	assert.InDelta(t, 11500.0, bal, 1e-9)

	// Each stored running balance matches the fold up to that row.
	var running float64
	for _, e := range history {
		running += e.Delta
		assert.InDelta(t, running, e.Balance, 1e-9)
	}
}

func TestConcurrentMutationsLoseNoUpdate(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, 10000)
	ctx := context.Background()
	now := time.Now().UTC()

	// Deposits race trades against the same ledger. The immediate write
	// lock serializes them; no read-modify-write may interleave.
	const workers = 20
	errs := make(chan error, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := l.AdjustBalance(ctx, 10, ReasonDeposit, "concurrent")
			errs <- err
		}()
		go func() {
			defer wg.Done()
			// pnl = (1950.5 - 1950) * 10 = +5 per trade.
			_, err := l.RecordTrade(ctx, signal.Long, 1950, 1950.5, 10, now, now, "target")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	history, err := l.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1+2*workers)

	// Every stored running balance matches the fold up to its row, and the
	// final balance accounts for every mutation exactly once.
	var running float64
	for _, e := range history {
		running += e.Delta
		assert.InDelta(t, running, e.Balance, 1e-9)
	}
	bal, err := l.CurrentBalance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, running, bal, 1e-9)
	assert.InDelta(t, 10000+workers*10+workers*5, bal, 1e-9)
}

func TestWithdrawalOverdraftFails(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, 100)
	ctx := context.Background()

	_, err := l.AdjustBalance(ctx, 150, ReasonWithdrawal, "")
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// The failed withdrawal must not appear in the history.
	bal, err := l.CurrentBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100.0, bal)
	history, err := l.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	// Withdrawing to exactly zero is allowed.
	after, err := l.AdjustBalance(ctx, 100, ReasonWithdrawal, "cash out")
	require.NoError(t, err)
	assert.Equal(t, 0.0, after)
}

func TestAdjustBalanceRejectsBadInput(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, 1000)
	ctx := context.Background()

	_, err := l.AdjustBalance(ctx, -50, ReasonDeposit, "")
	assert.Error(t, err)
	_, err = l.AdjustBalance(ctx, 0, ReasonDeposit, "")
	assert.Error(t, err)
	_, err = l.AdjustBalance(ctx, 50, ReasonTrade, "")
	assert.Error(t, err)
}

func TestSetBalanceArchivesPriorHistory(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, 10000)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := l.RecordTrade(ctx, signal.Long, 1950, 1970, 10, now, now, "target")
	require.NoError(t, err)
	_, err = l.AdjustBalance(ctx, 500, ReasonDeposit, "")
	require.NoError(t, err)

	resetID, err := l.SetBalance(ctx, 5000)
	require.NoError(t, err)
	require.NotEmpty(t, resetID)

	bal, err := l.CurrentBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, bal)

	initial, err := l.InitialCapital(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, initial)

	// Live tables hold only the reset row and no trades.
	history, err := l.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ReasonReset, history[0].Reason)
	trades, err := l.Trades(ctx)
	require.NoError(t, err)
	assert.Empty(t, trades)

	// The pre-reset rows moved to the archives under the reset ID.
	var archivedRows, archivedTrades int
	require.NoError(t, l.db.QueryRow(
		`SELECT COUNT(*) FROM archived_history WHERE reset_id = ?`, resetID).Scan(&archivedRows))
	require.NoError(t, l.db.QueryRow(
		`SELECT COUNT(*) FROM archived_trades WHERE reset_id = ?`, resetID).Scan(&archivedTrades))
	assert.Equal(t, 3, archivedRows) // seed + trade + deposit
	assert.Equal(t, 1, archivedTrades)
}

func TestRecentTradesNewestFirst(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, 10000)
	ctx := context.Background()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		closed := base.Add(time.Duration(i) * 24 * time.Hour)
		_, err := l.RecordTrade(ctx, signal.Long, 1950, 1955, 1, base, closed, "target")
		require.NoError(t, err)
	}

	recent, err := l.RecentTrades(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.True(t, recent[0].ClosedAt.After(recent[1].ClosedAt))
	assert.True(t, recent[1].ClosedAt.After(recent[2].ClosedAt))

	all, err := l.Trades(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.True(t, all[0].ClosedAt.Before(all[4].ClosedAt))
}

func TestHistorySinceCutoff(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, 10000)
	ctx := context.Background()

	old := time.Now().UTC().AddDate(0, 0, -10)
	_, err := l.RecordTrade(ctx, signal.Long, 1950, 1970, 10, old, old, "target")
	require.NoError(t, err)
	_, err = l.AdjustBalance(ctx, 500, ReasonDeposit, "recent")
	require.NoError(t, err)

	// The seed row and the deposit are recent; the trade closed 10 days ago.
	recent, err := l.HistorySince(ctx, time.Now().UTC().AddDate(0, 0, -2))
	require.NoError(t, err)
	require.Len(t, recent, 2)
	for _, e := range recent {
		assert.NotEqual(t, ReasonTrade, e.Reason)
	}

	all, err := l.HistorySince(ctx, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSaveSnapshot(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, 10000)
	ctx := context.Background()

	err := l.SaveSnapshot(ctx, Snapshot{
		Time:      time.Now().UTC(),
		FedRate:   4.33,
		Treasury:  4.2,
		CPI:       2.9,
		GoldPrice: 1950,
		DXY:       104.2,
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, l.db.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&n))
	assert.Equal(t, 1, n)
}
