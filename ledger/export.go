package ledger

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// ExportCSV writes the trade log and balance history to two CSV files.
func (l *SQLite) ExportCSV(ctx context.Context, tradesPath, historyPath string) error {
	trades, err := l.Trades(ctx)
	if err != nil {
		return err
	}
	history, err := l.History(ctx)
	if err != nil {
		return err
	}

	tf, err := os.Create(tradesPath)
	if err != nil {
		return err
	}
	defer tf.Close()

	tw := csv.NewWriter(tf)
	if err := tw.Write([]string{"trade_id", "signal", "entry_price", "exit_price", "quantity", "opened_at", "closed_at", "realized_pnl", "balance_after", "reason"}); err != nil {
		return err
	}
	for _, t := range trades {
		if err := tw.Write([]string{
			t.ID,
			string(t.Signal),
			f(t.EntryPrice),
			f(t.ExitPrice),
			f(t.Quantity),
			t.OpenedAt.Format(time.RFC3339),
			t.ClosedAt.Format(time.RFC3339),
			f(t.RealizedPnl),
			f(t.BalanceAfter),
			t.Reason,
		}); err != nil {
			return err
		}
	}
	tw.Flush()
	if err := tw.Error(); err != nil {
		return err
	}

	hf, err := os.Create(historyPath)
	if err != nil {
		return err
	}
	defer hf.Close()

	hw := csv.NewWriter(hf)
	if err := hw.Write([]string{"seq", "time", "delta", "balance", "reason", "note"}); err != nil {
		return err
	}
	for _, e := range history {
		if err := hw.Write([]string{
			strconv.FormatInt(e.Seq, 10),
			e.Time.Format(time.RFC3339),
			f(e.Delta),
			f(e.Balance),
			string(e.Reason),
			e.Note,
		}); err != nil {
			return err
		}
	}
	hw.Flush()
	return hw.Error()
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
