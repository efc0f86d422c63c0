package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/goldmacro/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show performance statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	l, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer l.Close()

	p, err := l.Statistics(context.Background())
	if err != nil {
		return err
	}
	fmt.Print(report.Performance(p))
	return nil
}
