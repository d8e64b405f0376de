package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/analytics"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/observability"
)

// DayStatsResult is the output of the DayStats pipeline.
type DayStatsResult struct {
	// TargetRecords holds the target-day metric record per market, sorted
	// by market key.
	TargetRecords []*domain.MetricRecord

	// Scores holds one deviation score per (market, metric kind), sorted
	// by market key then metric kind.
	Scores []*domain.DeviationScore

	// Distributions holds the per-market reference distribution per metric
	// kind, keyed by MarketKey.String().
	Distributions map[string]map[domain.MetricKind]*domain.ReferenceDistribution

	Skipped []domain.SkippedMarket
}

// marketDayStats is one market's contribution.
type marketDayStats struct {
	target *domain.MetricRecord
	scores []*domain.DeviationScore
	dists  map[domain.MetricKind]*domain.ReferenceDistribution
	daily  []*domain.MetricRecord
}

// DayStats measures how extreme the target day was for every market: daily
// metric records over the historical span, a robust reference distribution
// per metric kind, and a standardized deviation score for the target day.
// Markets without enough history are skipped with a reason.
func (e *Engine) DayStats(ctx context.Context) (*DayStatsResult, error) {
	started := time.Now()

	keys, err := e.listMarkets(ctx)
	if err != nil {
		observability.RecordPipelineRun("daystats", "error", time.Since(started).Seconds())
		return nil, err
	}
	e.log.Info().Int("markets", len(keys)).Msg("daystats: fan-out")

	perMarket, skipped, err := forEachMarket(ctx, e, "daystats", keys, e.marketDayStats)
	if err != nil {
		observability.RecordPipelineRun("daystats", "error", time.Since(started).Seconds())
		return nil, err
	}

	result := &DayStatsResult{
		Distributions: make(map[string]map[domain.MetricKind]*domain.ReferenceDistribution),
		Skipped:       skipped,
	}
	var allDaily []*domain.MetricRecord
	for _, m := range perMarket {
		result.TargetRecords = append(result.TargetRecords, m.target)
		result.Scores = append(result.Scores, m.scores...)
		result.Distributions[m.target.Key.String()] = m.dists
		allDaily = append(allDaily, m.daily...)
	}

	sort.Slice(result.TargetRecords, func(i, j int) bool {
		return result.TargetRecords[i].Key.String() < result.TargetRecords[j].Key.String()
	})
	sort.Slice(result.Scores, func(i, j int) bool {
		a, b := result.Scores[i], result.Scores[j]
		if a.Key.String() != b.Key.String() {
			return a.Key.String() < b.Key.String()
		}
		return a.MetricKind < b.MetricKind
	})

	if err := e.persistDayStats(ctx, allDaily, result.Scores); err != nil {
		observability.RecordPipelineRun("daystats", "error", time.Since(started).Seconds())
		return nil, err
	}

	e.log.Info().
		Int("scored", len(result.TargetRecords)).
		Int("skipped", len(skipped)).
		Dur("elapsed", time.Since(started)).
		Msg("daystats: done")
	observability.RecordPipelineRun("daystats", "ok", time.Since(started).Seconds())
	return result, nil
}

func (e *Engine) marketDayStats(ctx context.Context, key domain.MarketKey) (*marketDayStats, error) {
	candles, err := e.getRange(ctx, key, e.span)
	if err != nil {
		return nil, err
	}
	if err := analytics.ValidateSeries(candles); err != nil {
		return nil, err
	}

	daily := analytics.ExtractDaily(candles)
	observability.DefaultMetrics.MetricRecordsExtracted.Add(float64(len(daily)))

	target, err := analytics.ExtractMetrics(candles, e.targetDay)
	if err != nil {
		return nil, fmt.Errorf("target day: %w", err)
	}

	reference := daily
	if !e.includeTarget {
		reference = make([]*domain.MetricRecord, 0, len(daily))
		for _, r := range daily {
			if r.Window.StartMs != e.targetDay.StartMs {
				reference = append(reference, r)
			}
		}
	}

	m := &marketDayStats{
		target: target,
		dists:  make(map[domain.MetricKind]*domain.ReferenceDistribution, len(e.kinds)),
		daily:  daily,
	}
	for _, kind := range e.kinds {
		dist, err := analytics.BuildDistribution(reference, kind, e.distOpts)
		if err != nil {
			return nil, fmt.Errorf("%s reference: %w", kind, err)
		}
		observability.DefaultMetrics.DistributionsBuilt.Inc()

		score := analytics.Score(target, dist)
		observability.RecordScore(score.Degenerate())

		m.dists[kind] = dist
		m.scores = append(m.scores, score)
	}
	return m, nil
}

// persistDayStats writes the historical corpus and scores when result
// stores are configured. Fixture and dry runs leave both nil.
func (e *Engine) persistDayStats(ctx context.Context, daily []*domain.MetricRecord, scores []*domain.DeviationScore) error {
	if e.records != nil {
		if err := e.records.InsertBulk(ctx, daily); err != nil {
			return fmt.Errorf("persist metric records: %w", err)
		}
	}
	if e.scores != nil {
		if err := e.scores.InsertBulk(ctx, scores); err != nil {
			return fmt.Errorf("persist deviation scores: %w", err)
		}
	}
	return nil
}
