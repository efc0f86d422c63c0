package ledger

import (
	"context"
)

// Statistics derives the performance snapshot from the trade log and the
// balance curve. It reads but never writes, so calling it twice with no
// intervening mutation yields identical results.
func (l *SQLite) Statistics(ctx context.Context) (Performance, error) {
	var p Performance

	initial, err := l.InitialCapital(ctx)
	if err != nil {
		return p, err
	}
	p.InitialCapital = initial

	trades, err := l.Trades(ctx)
	if err != nil {
		return p, err
	}
	for _, t := range trades {
		p.TradeCount++
		p.TotalPnl += t.RealizedPnl
		if t.RealizedPnl > 0 {
			p.Wins++
			if t.RealizedPnl > p.LargestWin {
				p.LargestWin = t.RealizedPnl
			}
		} else {
			p.Losses++
			if t.RealizedPnl < p.LargestLoss {
				p.LargestLoss = t.RealizedPnl
			}
		}
	}
	if p.TradeCount > 0 {
		p.WinRate = float64(p.Wins) / float64(p.TradeCount)
	}

	history, err := l.History(ctx)
	if err != nil {
		return p, err
	}

	// Rebuild the balance curve from deltas; the stored balance column is
	// display-only. Drawdown is the largest peak-to-trough percentage
	// decline along the curve.
	var running, peak, maxDD float64
	for _, e := range history {
		running += e.Delta
		if running > peak {
			peak = running
		}
		if peak > 0 {
			if dd := (peak - running) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	p.CurrentBalance = running
	p.PeakBalance = peak
	p.MaxDrawdownPct = maxDD * 100

	if initial > 0 {
		p.TotalReturnPct = (running - initial) / initial * 100
	}
	return p, nil
}
