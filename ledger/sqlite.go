package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/goldmacro/pkg/id"
	"github.com/rustyeddy/goldmacro/signal"
)

// SQLite is the on-disk ledger. All mutations run inside BEGIN IMMEDIATE
// transactions so the write lock is taken up front and held until commit or
// rollback.
type SQLite struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (or creates) the ledger at path. A fresh ledger is seeded with
// one RESET entry carrying the initial capital, so the fold-over-history
// invariant holds from the first row.
func Open(path string, initialCapital float64, log zerolog.Logger) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger schema: %w", err)
	}

	l := &SQLite{db: db, log: log.With().Str("component", "ledger").Logger()}

	if err := l.seed(initialCapital); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *SQLite) Close() error {
	return l.db.Close()
}

// seed initializes an empty ledger. An existing ledger is left untouched,
// including its configured initial capital.
func (l *SQLite) seed(initialCapital float64) error {
	return l.withTx(context.Background(), func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM balance_history`).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		now := time.Now().UTC()
		if _, err := tx.Exec(`INSERT OR IGNORE INTO meta (key, value) VALUES ('initial_capital', ?)`, initialCapital); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO balance_history (time, delta, balance, reason, note)
			VALUES (?, ?, ?, ?, ?)`,
			now, initialCapital, initialCapital, ReasonReset, "account initialized")
		if err != nil {
			return err
		}
		l.log.Info().Float64("initial_capital", initialCapital).Msg("ledger initialized")
		return nil
	})
}

// withTx runs fn inside an exclusive transaction. The rollback is deferred
// so the lock is released on every exit path, including panics and errors.
func (l *SQLite) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// currentTx folds the history deltas inside an open transaction. This is
// the only definition of "current balance" in the system.
func currentTx(tx *sql.Tx) (float64, error) {
	var cur float64
	err := tx.QueryRow(`SELECT COALESCE(SUM(delta), 0) FROM balance_history`).Scan(&cur)
	return cur, err
}

// RecordTrade computes the realized P&L for a closed trade, appends it to
// the trade log and the balance history atomically, and returns the stored
// record. closeReason is free text (target, stop, manual).
func (l *SQLite) RecordTrade(ctx context.Context, dir signal.Direction, entry, exit, quantity float64, openedAt, closedAt time.Time, closeReason string) (Trade, error) {
	if quantity <= 0 {
		return Trade{}, fmt.Errorf("%w: quantity %.4f must be positive", ErrInvalidTrade, quantity)
	}
	if entry <= 0 {
		return Trade{}, fmt.Errorf("%w: entry price %.4f must be positive", ErrInvalidTrade, entry)
	}
	var side float64
	switch dir {
	case signal.Long:
		side = 1
	case signal.Short:
		side = -1
	default:
		return Trade{}, fmt.Errorf("%w: signal must be LONG or SHORT, got %q", ErrInvalidTrade, dir)
	}
	if closeReason == "" {
		closeReason = "manual"
	}

	t := Trade{
		ID:          id.New(),
		Signal:      dir,
		EntryPrice:  entry,
		ExitPrice:   exit,
		Quantity:    quantity,
		OpenedAt:    openedAt.UTC(),
		ClosedAt:    closedAt.UTC(),
		RealizedPnl: (exit - entry) * quantity * side,
		Reason:      closeReason,
	}

	err := l.withTx(ctx, func(tx *sql.Tx) error {
		cur, err := currentTx(tx)
		if err != nil {
			return err
		}
		t.BalanceAfter = cur + t.RealizedPnl

		if _, err := tx.Exec(`
			INSERT INTO trades
			(trade_id, signal, entry_price, exit_price, quantity, opened_at, closed_at, realized_pnl, balance_after, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, string(t.Signal), t.EntryPrice, t.ExitPrice, t.Quantity,
			t.OpenedAt, t.ClosedAt, t.RealizedPnl, t.BalanceAfter, t.Reason,
		); err != nil {
			return err
		}

		note := fmt.Sprintf("trade %s closed (%s)", t.ID, t.Reason)
		_, err = tx.Exec(`
			INSERT INTO balance_history (time, delta, balance, reason, note)
			VALUES (?, ?, ?, ?, ?)`,
			t.ClosedAt, t.RealizedPnl, t.BalanceAfter, ReasonTrade, note)
		return err
	})
	if err != nil {
		return Trade{}, err
	}

	l.log.Info().
		Str("trade_id", t.ID).
		Str("signal", string(t.Signal)).
		Float64("pnl", t.RealizedPnl).
		Float64("balance", t.BalanceAfter).
		Msg("trade recorded")
	return t, nil
}

// AdjustBalance applies a deposit or withdrawal. A withdrawal that would
// drive the balance negative fails with ErrInsufficientFunds and leaves the
// history unchanged.
func (l *SQLite) AdjustBalance(ctx context.Context, amount float64, reason Reason, note string) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("adjust balance: amount %.2f must be positive", amount)
	}

	var delta float64
	switch reason {
	case ReasonDeposit:
		delta = amount
	case ReasonWithdrawal:
		delta = -amount
	default:
		return 0, fmt.Errorf("adjust balance: reason must be DEPOSIT or WITHDRAWAL, got %q", reason)
	}

	var after float64
	err := l.withTx(ctx, func(tx *sql.Tx) error {
		cur, err := currentTx(tx)
		if err != nil {
			return err
		}
		after = cur + delta
		if after < 0 {
			return fmt.Errorf("%w: balance %.2f cannot cover withdrawal %.2f", ErrInsufficientFunds, cur, amount)
		}
		_, err = tx.Exec(`
			INSERT INTO balance_history (time, delta, balance, reason, note)
			VALUES (?, ?, ?, ?, ?)`,
			time.Now().UTC(), delta, after, reason, note)
		return err
	})
	if err != nil {
		return 0, err
	}

	l.log.Info().
		Str("reason", string(reason)).
		Float64("amount", amount).
		Float64("balance", after).
		Msg("balance adjusted")
	return after, nil
}

// SetBalance resets the account to newAmount. The full prior history and
// trade log are copied to the archive tables under a reset ID inside the
// same transaction that truncates them, so no data is lost. A negative
// newAmount is accepted only as an explicit override and is logged loudly.
func (l *SQLite) SetBalance(ctx context.Context, newAmount float64) (string, error) {
	resetID := id.New()
	now := time.Now().UTC()

	err := l.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO archived_trades
			SELECT ?, trade_id, signal, entry_price, exit_price, quantity, opened_at, closed_at, realized_pnl, balance_after, reason
			FROM trades`, resetID); err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO archived_history
			SELECT ?, seq, time, delta, balance, reason, note
			FROM balance_history`, resetID); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM trades`); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM balance_history`); err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO meta (key, value) VALUES ('initial_capital', ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, newAmount); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO balance_history (time, delta, balance, reason, note)
			VALUES (?, ?, ?, ?, ?)`,
			now, newAmount, newAmount, ReasonReset, "account reset "+resetID)
		return err
	})
	if err != nil {
		return "", err
	}

	ev := l.log.Info()
	if newAmount < 0 {
		ev = l.log.Warn().Bool("negative_override", true)
	}
	ev.Str("reset_id", resetID).Float64("balance", newAmount).Msg("account reset, prior history archived")
	return resetID, nil
}

// SaveSnapshot records one day's fetched macro inputs.
func (l *SQLite) SaveSnapshot(ctx context.Context, s Snapshot) error {
	return l.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO snapshots (time, fed_rate, treasury_10y, cpi, gold_price, dxy_level)
			VALUES (?, ?, ?, ?, ?, ?)`,
			s.Time.UTC(), s.FedRate, s.Treasury, s.CPI, s.GoldPrice, s.DXY)
		return err
	})
}
