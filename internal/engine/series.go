package engine

import (
	"context"
	"time"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/aggregation"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/analytics"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/observability"
)

// DailySeriesResult is the output of the DailyMedianSeries pipeline.
type DailySeriesResult struct {
	Metric  domain.MetricKind
	Points  []domain.SeriesPoint
	Skipped []domain.SkippedMarket
}

// DailyMedianSeries builds the long-horizon volatility picture: for every
// UTC day in the span, the cross-market median of the chosen metric.
// exchange narrows the run to one venue; empty covers all configured
// exchanges. Days where a market has no bars get no contribution from it.
func (e *Engine) DailyMedianSeries(ctx context.Context, kind domain.MetricKind, exchange string) (*DailySeriesResult, error) {
	started := time.Now()

	keys, err := e.listMarkets(ctx)
	if err != nil {
		observability.RecordPipelineRun("daily_series", "error", time.Since(started).Seconds())
		return nil, err
	}
	if exchange != "" {
		var filtered []domain.MarketKey
		for _, key := range keys {
			if key.Exchange == exchange {
				filtered = append(filtered, key)
			}
		}
		keys = filtered
	}
	e.log.Info().Int("markets", len(keys)).Str("metric", string(kind)).Msg("daily series: fan-out")

	perMarket, skipped, err := forEachMarket(ctx, e, "daily_series", keys, e.marketDailyRecords)
	if err != nil {
		observability.RecordPipelineRun("daily_series", "error", time.Since(started).Seconds())
		return nil, err
	}

	var all []*domain.MetricRecord
	for _, records := range perMarket {
		all = append(all, records...)
	}
	points := aggregation.DailyMedians(all, kind)

	e.log.Info().
		Int("days", len(points)).
		Int("skipped", len(skipped)).
		Msg("daily series: done")
	observability.RecordPipelineRun("daily_series", "ok", time.Since(started).Seconds())

	return &DailySeriesResult{Metric: kind, Points: points, Skipped: skipped}, nil
}

func (e *Engine) marketDailyRecords(ctx context.Context, key domain.MarketKey) ([]*domain.MetricRecord, error) {
	candles, err := e.getRange(ctx, key, e.span)
	if err != nil {
		return nil, err
	}
	if err := analytics.ValidateSeries(candles); err != nil {
		return nil, err
	}
	records := analytics.ExtractDaily(candles)
	observability.DefaultMetrics.MetricRecordsExtracted.Add(float64(len(records)))
	return records, nil
}
