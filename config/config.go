// Package config loads and validates the engine configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfiguration marks fatal configuration problems: bad weights, inverted
// thresholds and the like. These must never silently fall back to defaults.
var ErrConfiguration = errors.New("invalid configuration")

// Mode selects how the daily bias is produced: the full weighted
// aggregation, or the simplified signal-matrix lookup. Both run through the
// same engine.
type Mode string

const (
	ModeWeighted Mode = "weighted"
	ModeMatrix   Mode = "matrix"
)

// Config is the complete engine configuration.
type Config struct {
	Engine  EngineConfig  `json:"engine" yaml:"engine"`
	Account AccountConfig `json:"account" yaml:"account"`
	Scoring ScoringConfig `json:"scoring" yaml:"scoring"`
	Risk    RiskConfig    `json:"risk" yaml:"risk"`
	Matrix  MatrixConfig  `json:"matrix" yaml:"matrix"`
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch"`
	AI      AIConfig      `json:"ai" yaml:"ai"`
	Mail    MailConfig    `json:"mail" yaml:"mail"`
}

type EngineConfig struct {
	Mode       Mode   `json:"mode" yaml:"mode"`
	Instrument string `json:"instrument" yaml:"instrument"`
}

type AccountConfig struct {
	Currency       string  `json:"currency" yaml:"currency"`
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
	DBPath         string  `json:"db_path" yaml:"db_path"`
}

type ScoringConfig struct {
	// Weights per indicator name; must sum to 1.0.
	Weights map[string]float64 `json:"weights" yaml:"weights"`

	// Composite thresholds bounding the neutral zone.
	BullishBelow float64 `json:"bullish_below" yaml:"bullish_below"`
	BearishAbove float64 `json:"bearish_above" yaml:"bearish_above"`

	// FreshnessHours is how old the most stale input may be before
	// confidence decays.
	FreshnessHours float64 `json:"freshness_hours" yaml:"freshness_hours"`
}

type RiskConfig struct {
	BaseRiskPct     float64            `json:"base_risk_pct" yaml:"base_risk_pct"`
	ConfidenceBonus float64            `json:"confidence_bonus" yaml:"confidence_bonus"`
	BonusThreshold  float64            `json:"bonus_threshold" yaml:"bonus_threshold"`
	Adjustments     map[string]float64 `json:"adjustments" yaml:"adjustments"`

	EventImminentHours float64 `json:"event_imminent_hours" yaml:"event_imminent_hours"`
	EventNearHours     float64 `json:"event_near_hours" yaml:"event_near_hours"`
	VolHigh            float64 `json:"vol_high" yaml:"vol_high"`
	VolMiddle          float64 `json:"vol_middle" yaml:"vol_middle"`

	// DefaultStopPct sizes the stop distance as a fraction of the
	// instrument price when the caller does not supply one.
	DefaultStopPct float64 `json:"default_stop_pct" yaml:"default_stop_pct"`
}

type MatrixConfig struct {
	FedDovishBelow  float64 `json:"fed_dovish_below" yaml:"fed_dovish_below"`
	FedHawkishAbove float64 `json:"fed_hawkish_above" yaml:"fed_hawkish_above"`
	DXYWeakBelow    float64 `json:"dxy_weak_below" yaml:"dxy_weak_below"`
	DXYStrongAbove  float64 `json:"dxy_strong_above" yaml:"dxy_strong_above"`
}

type FetchConfig struct {
	FREDBaseURL string `json:"fred_base_url" yaml:"fred_base_url"`
	QuoteURL    string `json:"quote_url" yaml:"quote_url"`
	TimeoutSecs int    `json:"timeout_secs" yaml:"timeout_secs"`
}

type AIConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Model     string `json:"model" yaml:"model"`
	MaxTokens int    `json:"max_tokens" yaml:"max_tokens"`
}

type MailConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	SMTPHost string `json:"smtp_host" yaml:"smtp_host"`
	SMTPPort int    `json:"smtp_port" yaml:"smtp_port"`
	From     string `json:"from" yaml:"from"`
	To       string `json:"to" yaml:"to"`
	Subject  string `json:"subject_prefix" yaml:"subject_prefix"`
}

// FreshnessHorizon converts the configured hours to a duration.
func (c ScoringConfig) FreshnessHorizon() time.Duration {
	return time.Duration(c.FreshnessHours * float64(time.Hour))
}

// Default returns a configuration matching the documented defaults:
// gold instrument, 2% base risk, +-0.15 composite thresholds and the
// Fed/DXY/CPI weight split.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Mode:       ModeWeighted,
			Instrument: "XAU_USD",
		},
		Account: AccountConfig{
			Currency:       "USD",
			InitialBalance: 10000,
			DBPath:         "./goldmacro.sqlite",
		},
		Scoring: ScoringConfig{
			Weights: map[string]float64{
				"fed_rate": 0.5,
				"dxy":      0.3,
				"cpi":      0.2,
			},
			BullishBelow: -0.15,
			BearishAbove: 0.15,
			// CPI and the 10Y series are monthly prints; 35 days keeps a
			// fresh monthly cycle from being penalized.
			FreshnessHours: 840,
		},
		Risk: RiskConfig{
			BaseRiskPct:     0.02,
			ConfidenceBonus: 0.15,
			BonusThreshold:  0.80,
			Adjustments: map[string]float64{
				"major_event":     -0.25,
				"high_volatility": -0.50,
				"multiple_events": -0.35,
			},
			EventImminentHours: 12,
			EventNearHours:     24,
			VolHigh:            0.020,
			VolMiddle:          0.010,
			DefaultStopPct:     0.01,
		},
		Matrix: MatrixConfig{
			FedDovishBelow:  3.0,
			FedHawkishAbove: 5.0,
			DXYWeakBelow:    100.0,
			DXYStrongAbove:  105.0,
		},
		Fetch: FetchConfig{
			FREDBaseURL: "https://api.stlouisfed.org/fred",
			QuoteURL:    "https://stooq.com/q/l/",
			TimeoutSecs: 30,
		},
		AI: AIConfig{
			Enabled:   true,
			Model:     "claude-sonnet-4-5",
			MaxTokens: 300,
		},
		Mail: MailConfig{
			SMTPHost: "smtp.gmail.com",
			SMTPPort: 587,
			Subject:  "Gold Signal",
		},
	}
}

// LoadFromFile reads a YAML or JSON config and validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToFile writes the config as YAML, or JSON when the extension asks for
// it.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the configuration. Failures wrap ErrConfiguration and are
// fatal: a bad weight table must stop the run, not default away.
func (c *Config) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
	}

	switch c.Engine.Mode {
	case ModeWeighted, ModeMatrix:
	default:
		return fail("engine.mode must be %q or %q, got %q", ModeWeighted, ModeMatrix, c.Engine.Mode)
	}
	if c.Account.InitialBalance <= 0 {
		return fail("account.initial_balance must be positive")
	}
	if c.Account.DBPath == "" {
		return fail("account.db_path is required")
	}

	if c.Engine.Mode == ModeWeighted {
		if len(c.Scoring.Weights) == 0 {
			return fail("scoring.weights is required in weighted mode")
		}
		var sum float64
		for name, w := range c.Scoring.Weights {
			if w < 0 || w > 1 {
				return fail("scoring.weights[%s] = %v outside [0, 1]", name, w)
			}
			sum += w
		}
		if math.Abs(sum-1.0) > 1e-6 {
			return fail("scoring.weights sum to %.6f, must sum to 1.0", sum)
		}
	}
	if c.Scoring.BullishBelow >= c.Scoring.BearishAbove {
		return fail("scoring.bullish_below must be less than scoring.bearish_above")
	}

	if c.Risk.BaseRiskPct <= 0 || c.Risk.BaseRiskPct > 0.5 {
		return fail("risk.base_risk_pct %v outside (0, 0.5]", c.Risk.BaseRiskPct)
	}
	if c.Risk.EventImminentHours > c.Risk.EventNearHours {
		return fail("risk.event_imminent_hours cannot exceed risk.event_near_hours")
	}
	if c.Risk.VolMiddle > c.Risk.VolHigh {
		return fail("risk.vol_middle cannot exceed risk.vol_high")
	}

	if c.Matrix.FedDovishBelow >= c.Matrix.FedHawkishAbove {
		return fail("matrix fed thresholds out of order")
	}
	if c.Matrix.DXYWeakBelow >= c.Matrix.DXYStrongAbove {
		return fail("matrix dxy thresholds out of order")
	}

	if c.Mail.Enabled && (c.Mail.From == "" || c.Mail.To == "") {
		return fail("mail.from and mail.to are required when mail is enabled")
	}
	return nil
}
