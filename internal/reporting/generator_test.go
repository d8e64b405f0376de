package reporting

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/aggregation"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/engine"
)

var fixedClock = func() time.Time {
	return time.Date(2025, 10, 12, 8, 0, 0, 0, time.UTC)
}

func sampleDayStats() *engine.DayStatsResult {
	key := domain.MarketKey{Exchange: "binance", Base: "btc", Quote: "usdt", InstrumentType: domain.InstrumentSpot}
	return &engine.DayStatsResult{
		Scores: []*domain.DeviationScore{
			{Key: key, MetricKind: domain.MetricDrop, Observed: -0.17, ZScore: -11.47, Direction: domain.DirectionBelow},
		},
		Distributions: map[string]map[domain.MetricKind]*domain.ReferenceDistribution{
			key.String(): {
				domain.MetricDrop: {MetricKind: domain.MetricDrop, N: 2800, Median: -0.015, Dispersion: 0.0135},
			},
		},
		Skipped: []domain.SkippedMarket{
			{Key: domain.MarketKey{Exchange: "okx", Base: "new", Quote: "usdt", InstrumentType: domain.InstrumentSpot}, Reason: "empty history"},
		},
	}
}

func TestGenerate_AssemblesSections(t *testing.T) {
	gen := NewGenerator("2025-10-10", "2017-01-01", "2025-10-11").WithClock(fixedClock)

	volume := &engine.WindowVolumeResult{
		Window: domain.Window{StartMs: 1_760_130_540_000, EndMs: 1_760_133_600_000},
		PerExchange: []aggregation.VolumeTotals{
			{Exchange: "binance", SpotUSD: 1e9, FuturesUSD: 4e9},
		},
		Grand: aggregation.GrandTotals{SpotUSD: 1e9, FuturesUSD: 4e9},
	}
	drops := &engine.TopDropsResult{
		Metric: domain.MetricDrop,
		Ranked: []domain.RankedMarket{
			{Key: domain.MarketKey{Exchange: "bybit", Base: "alt", Quote: "usdt", InstrumentType: domain.InstrumentPerpetual}, MetricValue: -0.45, Rank: 1},
		},
	}

	r := gen.Generate(sampleDayStats(), volume, drops)

	assert.Equal(t, fixedClock(), r.GeneratedAt)
	require.Len(t, r.Scores, 1)
	assert.Equal(t, "binance:btc_usdt:SPOT", r.Scores[0].Market)
	assert.Equal(t, 2800, r.Scores[0].Samples)
	assert.Equal(t, -0.015, r.Scores[0].Median)

	require.Len(t, r.Volumes, 1)
	assert.Equal(t, 5e9, r.GrandTotal.CombinedUSD)

	require.Len(t, r.Ranked, 1)
	assert.Equal(t, "drop_pct", r.RankingMetric)

	require.Len(t, r.Skipped, 1)
	assert.Equal(t, "daystats", r.Skipped[0].Pipeline)
}

func TestGenerate_Deterministic(t *testing.T) {
	gen := NewGenerator("2025-10-10", "2017-01-01", "2025-10-11").WithClock(fixedClock)

	a := RenderMarkdown(gen.Generate(sampleDayStats(), nil, nil))
	b := RenderMarkdown(gen.Generate(sampleDayStats(), nil, nil))
	assert.Equal(t, a, b)
}

func TestRenderScoresCSV(t *testing.T) {
	rows := []ScoreRow{
		{Market: "binance:btc_usdt:SPOT", Metric: "drop_pct", Observed: -0.17, ZScore: -11.47,
			Direction: "below", Samples: 2800, Median: -0.015, Dispersion: 0.0135},
	}

	out := RenderScoresCSV(rows)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "market,metric,observed,z_score,direction,samples,ref_median,ref_dispersion", lines[0])
	assert.Contains(t, lines[1], "binance:btc_usdt:SPOT,drop_pct,-0.170000")
	assert.Contains(t, lines[1], "below,2800")
}

func TestRenderVolumesCSV_IncludesTotal(t *testing.T) {
	out := RenderVolumesCSV(
		[]VolumeRow{{Exchange: "binance", SpotUSD: 100, FuturesUSD: 400, CombinedUSD: 500}},
		VolumeRow{Exchange: "TOTAL", SpotUSD: 100, FuturesUSD: 400, CombinedUSD: 500},
	)

	assert.Contains(t, out, "binance,100.00,400.00,500.00")
	assert.Contains(t, out, "TOTAL,100.00,400.00,500.00")
}

func TestRenderMarkdown_SpellsOutSentinel(t *testing.T) {
	r := &Report{
		GeneratedAt: fixedClock(),
		TargetDay:   "2025-10-10",
		Scores: []ScoreRow{
			{Market: "kraken:btc_usd:PERPETUAL", Metric: "drop_pct", Observed: -0.02,
				ZScore: math.Inf(-1), Direction: "below", Samples: 40},
		},
	}

	out := RenderMarkdown(r)
	assert.Contains(t, out, "-Inf (zero dispersion)")
	assert.Contains(t, out, "# Deviation Report: 2025-10-10")
	assert.Contains(t, out, "No markets were skipped.")
}

func TestRenderSeriesCSV(t *testing.T) {
	out := RenderSeriesCSV([]SeriesRow{
		{TimestampMs: 1000, Value: 1.5, MarketCount: 2},
		{TimestampMs: 2000, Value: 3.0, MarketCount: 1},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp_ms,value,market_count", lines[0])
	assert.Equal(t, "1000,1.500000,2", lines[1])
	assert.Equal(t, "2000,3.000000,1", lines[2])
}
