package cmd

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/goldmacro/config"
	"github.com/rustyeddy/goldmacro/ledger"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "goldmacro",
	Short: "Daily macro bias engine and capital ledger for gold",
	Long: `Goldmacro turns a handful of macro indicators (policy rate, dollar
index, inflation) into a daily LONG/SHORT/WAIT bias for gold, sizes the
trade against the account, and tracks the capital consequences of acting
on it.

Commands:
  run      - fetch today's data, compute the signal, send the report
  signal   - compute a signal from manually supplied indicator values
  trade    - record and inspect closed trades
  balance  - deposits, withdrawals, resets and history
  stats    - performance statistics
  report   - full performance report and CSV export`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; real deployments set the environment directly.
		_ = godotenv.Load()

		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).
			With().Timestamp().Logger()
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(cfgFile)
}

func openLedger(cfg *config.Config) (*ledger.SQLite, error) {
	return ledger.Open(cfg.Account.DBPath, cfg.Account.InitialBalance, log.Logger)
}
