package cmd

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/goldmacro/engine"
	"github.com/rustyeddy/goldmacro/report"
	"github.com/rustyeddy/goldmacro/score"
)

var (
	sigFed       float64
	sigDXY       float64
	sigCPI       float64
	sigTreasury  float64
	sigGold      float64
	sigSentiment float64
)

var signalCmd = &cobra.Command{
	Use:   "signal",
	Short: "Compute a signal from manually supplied indicator values",
	Long: `Compute today's signal without touching any data provider. Indicators
you do not supply are treated as missing and degrade the assessment.

Example:
  goldmacro signal --fed 5.25 --dxy 103.5 --cpi 3.0`,
	Args: cobra.NoArgs,
	RunE: runSignal,
}

func init() {
	rootCmd.AddCommand(signalCmd)
	signalCmd.Flags().Float64Var(&sigFed, "fed", -1, "Fed funds rate in percent")
	signalCmd.Flags().Float64Var(&sigDXY, "dxy", -1, "dollar index level")
	signalCmd.Flags().Float64Var(&sigCPI, "cpi", -1, "CPI YoY in percent")
	signalCmd.Flags().Float64Var(&sigTreasury, "treasury", -1, "10Y treasury yield in percent")
	signalCmd.Flags().Float64Var(&sigGold, "gold", -1, "gold spot price")
	// Sentiment is the one indicator whose valid range includes negatives,
	// so -1 cannot mean "absent" here.
	signalCmd.Flags().Float64Var(&sigSentiment, "sentiment", math.NaN(), "market sentiment in [-1, 1]; weighted when scoring.weights includes sentiment")
}

func runSignal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	l, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer l.Close()

	now := time.Now()
	var readings []score.Reading
	add := func(name string, v float64) {
		if v >= 0 {
			readings = append(readings, score.Reading{Name: name, Value: v, Time: now})
		}
	}
	add(score.IndicatorFedRate, sigFed)
	add(score.IndicatorDXY, sigDXY)
	add(score.IndicatorCPI, sigCPI)
	add(score.IndicatorTreasury, sigTreasury)
	add(score.IndicatorGoldPrice, sigGold)
	if !math.IsNaN(sigSentiment) {
		readings = append(readings, score.Reading{Name: score.IndicatorSentiment, Value: sigSentiment, Time: now})
	}

	if len(readings) == 0 {
		return fmt.Errorf("supply at least one indicator value")
	}

	eng := engine.New(cfg, l, nil, nil, log.Logger)
	da, err := eng.Analyze(context.Background(), readings, conditionsFromFlags())
	if err != nil {
		return err
	}

	fmt.Println(report.DailyBody(da))
	return nil
}
