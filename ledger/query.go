package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rustyeddy/goldmacro/signal"
)

// CurrentBalance folds the history deltas. Reads do not take the write
// lock.
func (l *SQLite) CurrentBalance(ctx context.Context) (float64, error) {
	var cur float64
	err := l.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(delta), 0) FROM balance_history`).Scan(&cur)
	return cur, err
}

// InitialCapital returns the capital recorded at account creation or the
// most recent reset.
func (l *SQLite) InitialCapital(ctx context.Context) (float64, error) {
	var v float64
	err := l.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'initial_capital'`).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return v, err
}

const tradeColumns = `trade_id, signal, entry_price, exit_price, quantity, opened_at, closed_at, realized_pnl, balance_after, reason`

func scanTrade(row interface{ Scan(dest ...any) error }) (Trade, error) {
	var t Trade
	var dir string
	err := row.Scan(&t.ID, &dir, &t.EntryPrice, &t.ExitPrice, &t.Quantity,
		&t.OpenedAt, &t.ClosedAt, &t.RealizedPnl, &t.BalanceAfter, &t.Reason)
	t.Signal = signal.Direction(dir)
	return t, err
}

// GetTrade returns a single trade by ID.
func (l *SQLite) GetTrade(ctx context.Context, tradeID string) (Trade, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)
	t, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return Trade{}, fmt.Errorf("trade %q not found", tradeID)
	}
	return t, err
}

// RecentTrades returns the most recently closed trades, newest first.
func (l *SQLite) RecentTrades(ctx context.Context, limit int) ([]Trade, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT `+tradeColumns+` FROM trades ORDER BY closed_at DESC, trade_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Trades returns every trade in close order, oldest first.
func (l *SQLite) Trades(ctx context.Context) ([]Trade, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT `+tradeColumns+` FROM trades ORDER BY closed_at ASC, trade_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// History returns the full balance history in append order.
func (l *SQLite) History(ctx context.Context) ([]BalanceEntry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT seq, time, delta, balance, reason, note
		FROM balance_history ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BalanceEntry
	for rows.Next() {
		var e BalanceEntry
		var reason string
		if err := rows.Scan(&e.Seq, &e.Time, &e.Delta, &e.Balance, &reason, &e.Note); err != nil {
			return nil, err
		}
		e.Reason = Reason(reason)
		out = append(out, e)
	}
	return out, rows.Err()
}

// HistorySince returns balance entries newer than the cutoff.
func (l *SQLite) HistorySince(ctx context.Context, cutoff time.Time) ([]BalanceEntry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT seq, time, delta, balance, reason, note
		FROM balance_history WHERE time >= ? ORDER BY seq ASC`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BalanceEntry
	for rows.Next() {
		var e BalanceEntry
		var reason string
		if err := rows.Scan(&e.Seq, &e.Time, &e.Delta, &e.Balance, &reason, &e.Note); err != nil {
			return nil, err
		}
		e.Reason = Reason(reason)
		out = append(out, e)
	}
	return out, rows.Err()
}
