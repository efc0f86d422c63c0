package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/goldmacro/report"
)

var (
	repTrades  int
	repCSVOut  string
	repHistOut string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the full performance report, optionally exporting CSV",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().IntVarP(&repTrades, "trades", "n", 5, "recent trades to include")
	reportCmd.Flags().StringVar(&repCSVOut, "export-trades", "", "write the trade log to this CSV file")
	reportCmd.Flags().StringVar(&repHistOut, "export-history", "", "write the balance history to this CSV file")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	l, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer l.Close()

	ctx := context.Background()

	p, err := l.Statistics(ctx)
	if err != nil {
		return err
	}
	fmt.Print(report.Performance(p))

	trades, err := l.RecentTrades(ctx, repTrades)
	if err != nil {
		return err
	}
	fmt.Printf("\nRECENT TRADES (last %d)\n", repTrades)
	fmt.Print(report.Trades(trades))

	if repCSVOut != "" || repHistOut != "" {
		tp, hp := repCSVOut, repHistOut
		if tp == "" {
			tp = "trades.csv"
		}
		if hp == "" {
			hp = "history.csv"
		}
		if err := l.ExportCSV(ctx, tp, hp); err != nil {
			return err
		}
		fmt.Printf("\nExported %s and %s\n", tp, hp)
	}
	return nil
}
