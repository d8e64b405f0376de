package engine

import (
	"context"
	"time"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/analytics"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/observability"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/ranking"
)

// TopDropsResult is the output of the TopDrops pipeline.
type TopDropsResult struct {
	Metric  domain.MetricKind
	Ranked  []domain.RankedMarket
	Skipped []domain.SkippedMarket
}

// TopDrops ranks every market by its target-day metric, most extreme
// first: most negative for drop, largest otherwise. Ties break
// lexicographically by market key. n <= 0 returns the full ranking.
func (e *Engine) TopDrops(ctx context.Context, kind domain.MetricKind, n int) (*TopDropsResult, error) {
	started := time.Now()

	keys, err := e.listMarkets(ctx)
	if err != nil {
		observability.RecordPipelineRun("top_drops", "error", time.Since(started).Seconds())
		return nil, err
	}
	e.log.Info().Int("markets", len(keys)).Str("metric", string(kind)).Msg("top drops: fan-out")

	records, skipped, err := forEachMarket(ctx, e, "top_drops", keys, e.marketTargetRecord)
	if err != nil {
		observability.RecordPipelineRun("top_drops", "error", time.Since(started).Seconds())
		return nil, err
	}

	ranked := ranking.TopN(records, kind, n)

	e.log.Info().
		Int("ranked", len(ranked)).
		Int("skipped", len(skipped)).
		Msg("top drops: done")
	observability.RecordPipelineRun("top_drops", "ok", time.Since(started).Seconds())

	return &TopDropsResult{Metric: kind, Ranked: ranked, Skipped: skipped}, nil
}

func (e *Engine) marketTargetRecord(ctx context.Context, key domain.MarketKey) (*domain.MetricRecord, error) {
	candles, err := e.getRange(ctx, key, e.targetDay)
	if err != nil {
		return nil, err
	}
	rec, err := analytics.ExtractMetrics(candles, e.targetDay)
	if err != nil {
		return nil, err
	}
	observability.DefaultMetrics.MetricRecordsExtracted.Inc()
	return rec, nil
}
