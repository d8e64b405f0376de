package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
span:
  start: "2017-01-01"
  end: "2025-10-11"
target_day: "2025-10-10"
liquidation_window:
  start: "2025-10-10T21:09:00Z"
  end: "2025-10-10T22:00:00Z"
exchanges: [binance, bybit]
reference_exchange: binance
reference:
  estimator: mad
  min_samples: 30
  trim_fraction: 0.001
ranking:
  top_n: 10
  metric: drop_pct
workers: 4
contracts:
  linear_derivative_exchanges: [binance]
  catalog:
    - exchange: kraken
      base: btc
      quote: usd
      instrument_type: PERPETUAL
      kind: INVERSE
      contract_size_usd: 1
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"binance", "bybit"}, cfg.Exchanges)
	assert.Equal(t, "binance", cfg.ReferenceExchange)
	assert.Equal(t, 0.001, cfg.Reference.TrimFraction)
	assert.False(t, cfg.Reference.IncludeTargetDay)

	target, err := cfg.TargetWindow()
	require.NoError(t, err)
	assert.Equal(t, int64(86_400_000), target.EndMs-target.StartMs)

	event, err := cfg.EventWindow()
	require.NoError(t, err)
	assert.Equal(t, int64(51*60*1000), event.EndMs-event.StartMs)
	assert.True(t, target.Contains(event.StartMs))

	conv, err := cfg.Contracts.Catalog[0].Convention()
	require.NoError(t, err)
	assert.Equal(t, domain.ConventionInverse, conv.Kind)
	assert.Equal(t, 1.0, conv.ContractSizeUSD)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
span:
  start: "2020-01-01"
  end: "2020-12-31"
target_day: "2020-03-12"
liquidation_window:
  start: "2020-03-12T00:00:00Z"
  end: "2020-03-13T00:00:00Z"
exchanges: [binance]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, string(domain.DispersionMAD), cfg.Reference.Estimator)
	assert.Equal(t, 30, cfg.Reference.MinSamples)
	assert.Equal(t, []string{"usd", "usdt", "usdc", "eur"}, cfg.USDQuotes)
	assert.Equal(t, 20, cfg.Ranking.TopN)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "info", cfg.Log.Level)

	opts := cfg.DistributionOptions()
	assert.Equal(t, domain.DispersionMAD, opts.Estimator)
	assert.Equal(t, 30, opts.MinSamples)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad estimator", `
span: {start: "2020-01-01", end: "2020-12-31"}
target_day: "2020-03-12"
liquidation_window: {start: "2020-03-12T00:00:00Z", end: "2020-03-13T00:00:00Z"}
exchanges: [binance]
reference: {estimator: average}
`},
		{"span reversed", `
span: {start: "2020-12-31", end: "2020-01-01"}
target_day: "2020-03-12"
liquidation_window: {start: "2020-03-12T00:00:00Z", end: "2020-03-13T00:00:00Z"}
exchanges: [binance]
`},
		{"no exchanges", `
span: {start: "2020-01-01", end: "2020-12-31"}
target_day: "2020-03-12"
liquidation_window: {start: "2020-03-12T00:00:00Z", end: "2020-03-13T00:00:00Z"}
exchanges: []
`},
		{"inverse without size", `
span: {start: "2020-01-01", end: "2020-12-31"}
target_day: "2020-03-12"
liquidation_window: {start: "2020-03-12T00:00:00Z", end: "2020-03-13T00:00:00Z"}
exchanges: [binance]
contracts:
  catalog:
    - {exchange: kraken, base: btc, quote: usd, instrument_type: PERPETUAL, kind: INVERSE}
`},
		{"bad trim fraction", `
span: {start: "2020-01-01", end: "2020-12-31"}
target_day: "2020-03-12"
liquidation_window: {start: "2020-03-12T00:00:00Z", end: "2020-03-13T00:00:00Z"}
exchanges: [binance]
reference: {trim_fraction: 0.6}
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	span, err := cfg.SpanWindow()
	require.NoError(t, err)
	target, err := cfg.TargetWindow()
	require.NoError(t, err)

	// Target day sits inside the historical span.
	assert.True(t, span.Contains(target.StartMs))
}
