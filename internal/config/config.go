// Package config loads the YAML run configuration shared by all commands.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/analytics"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
)

const dayFormat = "2006-01-02"

// Config describes one analysis run: which markets to read, which day to
// measure, and how to build the reference statistics.
type Config struct {
	Environment string `yaml:"environment"`

	Log struct {
		Level  string `yaml:"level"`  // debug, info, warn, error
		Format string `yaml:"format"` // json or console
	} `yaml:"log"`

	// Span is the historical range feeding reference distributions,
	// inclusive calendar days in UTC.
	Span struct {
		Start string `yaml:"start"` // YYYY-MM-DD
		End   string `yaml:"end"`   // YYYY-MM-DD
	} `yaml:"span"`

	// TargetDay is the UTC calendar day being measured against history.
	TargetDay string `yaml:"target_day"` // YYYY-MM-DD

	// LiquidationWindow bounds the intraday event window, RFC3339 UTC.
	// Half-open: a bar contributes iff start <= open < end.
	LiquidationWindow struct {
		Start string `yaml:"start"`
		End   string `yaml:"end"`
	} `yaml:"liquidation_window"`

	Exchanges         []string `yaml:"exchanges"`
	ReferenceExchange string   `yaml:"reference_exchange"` // spot venue basis is measured against
	USDQuotes         []string `yaml:"usd_quotes"`

	Reference struct {
		Estimator        string  `yaml:"estimator"` // mad or stddev
		MinSamples       int     `yaml:"min_samples"`
		TrimFraction     float64 `yaml:"trim_fraction"`
		IncludeTargetDay bool    `yaml:"include_target_day"`
	} `yaml:"reference"`

	Ranking struct {
		TopN   int    `yaml:"top_n"`
		Metric string `yaml:"metric"` // drop_pct, pump_pct, range_pct, realized_vol
	} `yaml:"ranking"`

	Workers int `yaml:"workers"`

	// Contracts classifies derivative volume conventions. Exchanges listed
	// in linear_derivative_exchanges have quote-margined derivatives; every
	// other derivative market needs an explicit catalog entry.
	Contracts struct {
		LinearDerivativeExchanges []string       `yaml:"linear_derivative_exchanges"`
		Catalog                   []ContractSpec `yaml:"catalog"`
	} `yaml:"contracts"`

	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`

	Clickhouse struct {
		DSN string `yaml:"dsn"`
	} `yaml:"clickhouse"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"metrics"`
}

// ContractSpec is one catalog entry classifying a derivative market.
type ContractSpec struct {
	Exchange        string  `yaml:"exchange"`
	Base            string  `yaml:"base"`
	Quote           string  `yaml:"quote"`
	InstrumentType  string  `yaml:"instrument_type"`
	Kind            string  `yaml:"kind"` // LINEAR or INVERSE
	ContractSizeUSD float64 `yaml:"contract_size_usd"`
}

// Key returns the market key the spec applies to.
func (s ContractSpec) Key() domain.MarketKey {
	return domain.MarketKey{
		Exchange:       s.Exchange,
		Base:           s.Base,
		Quote:          s.Quote,
		InstrumentType: domain.InstrumentType(s.InstrumentType),
	}
}

// Convention returns the convention the spec declares.
func (s ContractSpec) Convention() (domain.ContractConvention, error) {
	switch domain.ConventionKind(s.Kind) {
	case domain.ConventionLinear:
		return domain.Linear(), nil
	case domain.ConventionInverse:
		if s.ContractSizeUSD <= 0 {
			return domain.ContractConvention{}, fmt.Errorf("contract %s/%s_%s: inverse requires positive contract_size_usd", s.Exchange, s.Base, s.Quote)
		}
		return domain.Inverse(s.ContractSizeUSD), nil
	default:
		return domain.ContractConvention{}, fmt.Errorf("contract %s/%s_%s: unknown kind %q", s.Exchange, s.Base, s.Quote, s.Kind)
	}
}

// Load reads and parses a YAML configuration file, fills defaults and
// validates.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// Default returns the built-in configuration for the October 10 2025 run,
// used when no config file is given.
func Default() *Config {
	c := &Config{}
	c.Span.Start = "2017-01-01"
	c.Span.End = "2025-10-11"
	c.TargetDay = "2025-10-10"
	c.LiquidationWindow.Start = "2025-10-10T21:09:00Z"
	c.LiquidationWindow.End = "2025-10-10T22:00:00Z"
	c.Exchanges = []string{"binance", "bybit", "okx", "kraken"}
	c.ReferenceExchange = "binance"
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.USDQuotes) == 0 {
		c.USDQuotes = []string{"usd", "usdt", "usdc", "eur"}
	}
	if c.Reference.Estimator == "" {
		c.Reference.Estimator = string(domain.DispersionMAD)
	}
	if c.Reference.MinSamples == 0 {
		c.Reference.MinSamples = 30
	}
	if c.Ranking.TopN == 0 {
		c.Ranking.TopN = 20
	}
	if c.Ranking.Metric == "" {
		c.Ranking.Metric = string(domain.MetricDrop)
	}
	if c.Workers == 0 {
		c.Workers = 8
	}
}

// Validate checks field consistency. Called by Load; exported for configs
// assembled in code.
func (c *Config) Validate() error {
	if _, err := c.SpanWindow(); err != nil {
		return err
	}
	if _, err := c.TargetWindow(); err != nil {
		return err
	}
	if _, err := c.EventWindow(); err != nil {
		return err
	}
	if len(c.Exchanges) == 0 {
		return fmt.Errorf("exchanges must not be empty")
	}

	switch domain.DispersionEstimator(c.Reference.Estimator) {
	case domain.DispersionMAD, domain.DispersionStddev:
	default:
		return fmt.Errorf("unknown estimator %q", c.Reference.Estimator)
	}

	if c.Reference.MinSamples < 1 {
		return fmt.Errorf("min_samples must be >= 1, got %d", c.Reference.MinSamples)
	}
	if c.Reference.TrimFraction < 0 || c.Reference.TrimFraction >= 0.5 {
		return fmt.Errorf("trim_fraction must be in [0, 0.5), got %g", c.Reference.TrimFraction)
	}

	switch domain.MetricKind(c.Ranking.Metric) {
	case domain.MetricDrop, domain.MetricPump, domain.MetricRange, domain.MetricRealizedVol:
	default:
		return fmt.Errorf("unknown ranking metric %q", c.Ranking.Metric)
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}

	for _, spec := range c.Contracts.Catalog {
		if _, err := spec.Convention(); err != nil {
			return err
		}
	}

	return nil
}

// SpanWindow returns the historical span as a window covering whole UTC
// days, end day inclusive.
func (c *Config) SpanWindow() (domain.Window, error) {
	start, err := time.Parse(dayFormat, c.Span.Start)
	if err != nil {
		return domain.Window{}, fmt.Errorf("parse span.start: %w", err)
	}
	end, err := time.Parse(dayFormat, c.Span.End)
	if err != nil {
		return domain.Window{}, fmt.Errorf("parse span.end: %w", err)
	}
	if !end.After(start) {
		return domain.Window{}, fmt.Errorf("span.end %s must be after span.start %s", c.Span.End, c.Span.Start)
	}
	return domain.NewWindow(start, end.Add(24*time.Hour)), nil
}

// TargetWindow returns the target day as a UTC day window.
func (c *Config) TargetWindow() (domain.Window, error) {
	day, err := time.Parse(dayFormat, c.TargetDay)
	if err != nil {
		return domain.Window{}, fmt.Errorf("parse target_day: %w", err)
	}
	return domain.Day(day), nil
}

// EventWindow returns the liquidation window.
func (c *Config) EventWindow() (domain.Window, error) {
	start, err := time.Parse(time.RFC3339, c.LiquidationWindow.Start)
	if err != nil {
		return domain.Window{}, fmt.Errorf("parse liquidation_window.start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, c.LiquidationWindow.End)
	if err != nil {
		return domain.Window{}, fmt.Errorf("parse liquidation_window.end: %w", err)
	}
	if !end.After(start) {
		return domain.Window{}, fmt.Errorf("liquidation_window.end must be after start")
	}
	return domain.NewWindow(start, end), nil
}

// DistributionOptions maps the reference section onto analytics options.
func (c *Config) DistributionOptions() analytics.DistributionOptions {
	return analytics.DistributionOptions{
		Estimator:    domain.DispersionEstimator(c.Reference.Estimator),
		MinSamples:   c.Reference.MinSamples,
		TrimFraction: c.Reference.TrimFraction,
	}
}
