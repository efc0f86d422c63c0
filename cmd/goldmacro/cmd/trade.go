package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/goldmacro/report"
	"github.com/rustyeddy/goldmacro/signal"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Record and inspect closed trades",
}

var (
	trSignal   string
	trEntry    float64
	trExit     float64
	trQuantity float64
	trOpened   string
	trClosed   string
	trReason   string
)

var tradeRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a closed trade against the ledger",
	Long: `Record a closed trade. P&L is computed from entry, exit and quantity
and applied to the balance atomically.

Example:
  goldmacro trade record --signal LONG --entry 1950 --exit 1990 --quantity 10 --reason target`,
	Args: cobra.NoArgs,
	RunE: runTradeRecord,
}

var tradeListLimit int

var tradeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent trades",
	Args:  cobra.NoArgs,
	RunE:  runTradeList,
}

var tradeShowCmd = &cobra.Command{
	Use:   "show <trade-id>",
	Short: "Show one trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeShow,
}

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeRecordCmd)
	tradeCmd.AddCommand(tradeListCmd)
	tradeCmd.AddCommand(tradeShowCmd)

	tradeRecordCmd.Flags().StringVar(&trSignal, "signal", "", "LONG or SHORT")
	tradeRecordCmd.Flags().Float64Var(&trEntry, "entry", 0, "entry price")
	tradeRecordCmd.Flags().Float64Var(&trExit, "exit", 0, "exit price")
	tradeRecordCmd.Flags().Float64Var(&trQuantity, "quantity", 0, "position quantity in units")
	tradeRecordCmd.Flags().StringVar(&trOpened, "opened", "", "date opened (YYYY-MM-DD, default today)")
	tradeRecordCmd.Flags().StringVar(&trClosed, "closed", "", "date closed (YYYY-MM-DD, default today)")
	tradeRecordCmd.Flags().StringVar(&trReason, "reason", "manual", "close reason: target, stop, manual")
	tradeRecordCmd.MarkFlagRequired("signal")
	tradeRecordCmd.MarkFlagRequired("entry")
	tradeRecordCmd.MarkFlagRequired("exit")
	tradeRecordCmd.MarkFlagRequired("quantity")

	tradeListCmd.Flags().IntVarP(&tradeListLimit, "limit", "n", 10, "number of trades")
}

func runTradeRecord(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	l, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer l.Close()

	opened, err := parseDay(trOpened)
	if err != nil {
		return fmt.Errorf("opened: %w", err)
	}
	closed, err := parseDay(trClosed)
	if err != nil {
		return fmt.Errorf("closed: %w", err)
	}

	t, err := l.RecordTrade(context.Background(), signal.Direction(trSignal),
		trEntry, trExit, trQuantity, opened, closed, trReason)
	if err != nil {
		return err
	}

	fmt.Printf("Recorded trade %s: %s %.2f -> %.2f x %.2f, P&L %+.2f, balance %.2f\n",
		t.ID, t.Signal, t.EntryPrice, t.ExitPrice, t.Quantity, t.RealizedPnl, t.BalanceAfter)
	return nil
}

func runTradeList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	l, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer l.Close()

	trades, err := l.RecentTrades(context.Background(), tradeListLimit)
	if err != nil {
		return err
	}
	fmt.Print(report.Trades(trades))
	return nil
}

func runTradeShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	l, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer l.Close()

	t, err := l.GetTrade(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Trade %s\n", t.ID)
	fmt.Printf("  Signal:    %s\n", t.Signal)
	fmt.Printf("  Entry:     %.2f\n", t.EntryPrice)
	fmt.Printf("  Exit:      %.2f\n", t.ExitPrice)
	fmt.Printf("  Quantity:  %.2f\n", t.Quantity)
	fmt.Printf("  Opened:    %s\n", t.OpenedAt.Format("2006-01-02"))
	fmt.Printf("  Closed:    %s\n", t.ClosedAt.Format("2006-01-02"))
	fmt.Printf("  P&L:       %+.2f\n", t.RealizedPnl)
	fmt.Printf("  Balance:   %.2f\n", t.BalanceAfter)
	fmt.Printf("  Reason:    %s\n", t.Reason)
	return nil
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
