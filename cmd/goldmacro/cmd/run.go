package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/goldmacro/ai"
	"github.com/rustyeddy/goldmacro/config"
	"github.com/rustyeddy/goldmacro/engine"
	"github.com/rustyeddy/goldmacro/fetch"
	"github.com/rustyeddy/goldmacro/mail"
	"github.com/rustyeddy/goldmacro/report"
	"github.com/rustyeddy/goldmacro/risk"
)

var (
	runDryRun     bool
	runEventHours float64
	runEventCount int
	runVolatility float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daily analysis: fetch data, compute signal, send report",
	Args:  cobra.NoArgs,
	RunE:  runDaily,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print the report instead of emailing it")
	runCmd.Flags().Float64Var(&runEventHours, "event-hours", -1, "hours until the next major scheduled event (-1 = none)")
	runCmd.Flags().IntVar(&runEventCount, "events", 0, "number of major events inside the near window")
	runCmd.Flags().Float64Var(&runVolatility, "vol", 0, "volatility proxy, e.g. ATR as a fraction of price")
}

func runDaily(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	l, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer l.Close()

	timeout := time.Duration(cfg.Fetch.TimeoutSecs) * time.Second
	fred := fetch.NewFRED(cfg.Fetch.FREDBaseURL, os.Getenv("FRED_API_KEY"), timeout)
	quotes := fetch.NewQuotes(cfg.Fetch.QuoteURL, timeout)
	fetcher := fetch.NewCombined(fred, quotes, cfg.Scoring.FreshnessHorizon(), log.Logger)

	var analyzer ai.Analyzer
	if cfg.AI.Enabled {
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			analyzer = ai.NewClaude(key, cfg.AI.Model, cfg.AI.MaxTokens)
		} else {
			log.Warn().Msg("ANTHROPIC_API_KEY not set, AI narrative disabled")
		}
	}

	eng := engine.New(cfg, l, fetcher, analyzer, log.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	da, err := eng.RunDaily(ctx, conditionsFromFlags())
	if err != nil {
		notifyFailure(cfg, err)
		return err
	}

	body := report.DailyBody(da)
	fmt.Println(body)

	if runDryRun || !cfg.Mail.Enabled {
		return nil
	}
	sender := newSender(cfg)
	if err := sender.Send(report.Subject(cfg.Mail.Subject, da), body); err != nil {
		return err
	}
	log.Info().Str("to", cfg.Mail.To).Msg("daily report sent")
	return nil
}

func conditionsFromFlags() risk.Conditions {
	cond := risk.Conditions{
		NextEvent:  -1,
		EventCount: runEventCount,
		Volatility: runVolatility,
	}
	if runEventHours >= 0 {
		cond.NextEvent = time.Duration(runEventHours * float64(time.Hour))
	}
	return cond
}

func newSender(cfg *config.Config) *mail.Sender {
	return &mail.Sender{
		Host:     cfg.Mail.SMTPHost,
		Port:     cfg.Mail.SMTPPort,
		From:     cfg.Mail.From,
		To:       cfg.Mail.To,
		Password: os.Getenv("EMAIL_PASSWORD"),
	}
}

// notifyFailure emails the operator when the daily run fails. Best effort;
// the original error is what matters.
func notifyFailure(cfg *config.Config, runErr error) {
	if !cfg.Mail.Enabled {
		return
	}
	subject := fmt.Sprintf("%s - ERROR", cfg.Mail.Subject)
	if err := newSender(cfg).Send(subject, report.ErrorBody(runErr)); err != nil {
		log.Warn().Err(err).Msg("failed to send error notification")
	}
}
