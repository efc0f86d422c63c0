// Package ledger is the durable record of account balance and trade history.
//
// The balance history is strictly append-only and the current balance is
// always recomputed as a fold over the history deltas, never stored as an
// independent number, so the two cannot drift apart. Every mutation runs
// inside an exclusive SQLite transaction (BEGIN IMMEDIATE) so concurrent
// callers — say a manual CLI edit racing the scheduled daily run — cannot
// interleave a read-modify-write and lose an update.
package ledger

import (
	"errors"
	"time"

	"github.com/rustyeddy/goldmacro/signal"
)

var (
	// ErrInvalidTrade rejects trades with a non-positive quantity or entry
	// price. Ledger state is left unchanged.
	ErrInvalidTrade = errors.New("invalid trade")

	// ErrInsufficientFunds rejects withdrawals that would drive the balance
	// negative. There is no silent clamp; the history is left unchanged.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Reason tags a balance history entry with why the balance moved.
type Reason string

const (
	ReasonTrade      Reason = "TRADE"
	ReasonDeposit    Reason = "DEPOSIT"
	ReasonWithdrawal Reason = "WITHDRAWAL"
	ReasonReset      Reason = "RESET"
)

// Trade is one closed trade. Records are immutable once written; closing
// fields are set exactly once when the trade is recorded.
type Trade struct {
	ID           string
	Signal       signal.Direction
	EntryPrice   float64
	ExitPrice    float64
	Quantity     float64
	OpenedAt     time.Time
	ClosedAt     time.Time
	RealizedPnl  float64
	BalanceAfter float64
	Reason       string // why the trade was closed: target, stop, manual
}

// BalanceEntry is one append-only history row. Balance is the running
// balance after applying Delta; it is derived inside the same transaction
// that appends the row.
type BalanceEntry struct {
	Seq     int64
	Time    time.Time
	Delta   float64
	Balance float64
	Reason  Reason
	Note    string
}

// Snapshot is one day's fetched macro inputs, kept for record keeping.
type Snapshot struct {
	Time      time.Time
	FedRate   float64
	Treasury  float64
	CPI       float64
	GoldPrice float64
	DXY       float64
}

// Performance is derived on demand from the history and trade records; it
// is never stored.
type Performance struct {
	InitialCapital float64
	CurrentBalance float64
	PeakBalance    float64

	TradeCount  int
	Wins        int
	Losses      int
	WinRate     float64 // wins / closed trades, 0 when no trades
	TotalPnl    float64
	LargestWin  float64
	LargestLoss float64

	MaxDrawdownPct float64 // largest peak-to-trough decline of the balance curve
	TotalReturnPct float64 // (current - initial) / initial
}
