// Package engine orchestrates the analysis pipelines: it fans per-market
// work out over a worker pool, folds results with commutative reductions,
// and isolates per-market failures so one bad series never aborts a
// cross-exchange run.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/analytics"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/normalization"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/observability"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/storage"
)

// DefaultWorkers bounds pipeline concurrency when Options leaves it unset.
const DefaultWorkers = 8

// Options configure an Engine.
type Options struct {
	// Candles is the required history accessor.
	Candles storage.CandleStore

	// MetricRecords and DeviationScores, when set, receive the DayStats
	// pipeline's outputs for later querying.
	MetricRecords   storage.MetricRecordStore
	DeviationScores storage.DeviationScoreStore

	// Normalizer converts volume to USD notional; required by WindowVolume.
	Normalizer *normalization.Normalizer

	// Exchanges enumerates the venues whose markets the run covers.
	Exchanges []string

	// ReferenceExchange is the spot venue basis is measured against.
	ReferenceExchange string

	// Span is the historical range feeding reference distributions.
	Span domain.Window

	// TargetDay is the UTC day being measured.
	TargetDay domain.Window

	// EventWindow is the intraday liquidation window.
	EventWindow domain.Window

	// Distribution configures reference statistics.
	Distribution analytics.DistributionOptions

	// IncludeTargetDay keeps the target day inside the reference corpus.
	// Off by default.
	IncludeTargetDay bool

	// MetricKinds defaults to drop, pump, range and realized vol.
	MetricKinds []domain.MetricKind

	Workers int
	Logger  zerolog.Logger
}

// Engine runs the analysis pipelines.
type Engine struct {
	candles       storage.CandleStore
	records       storage.MetricRecordStore
	scores        storage.DeviationScoreStore
	norm          *normalization.Normalizer
	exchanges     []string
	refExchange   string
	span          domain.Window
	targetDay     domain.Window
	eventWindow   domain.Window
	distOpts      analytics.DistributionOptions
	includeTarget bool
	kinds         []domain.MetricKind
	workers       int
	log           zerolog.Logger
}

// New creates an Engine.
func New(opts Options) *Engine {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	kinds := opts.MetricKinds
	if len(kinds) == 0 {
		kinds = []domain.MetricKind{
			domain.MetricDrop, domain.MetricPump,
			domain.MetricRange, domain.MetricRealizedVol,
		}
	}
	return &Engine{
		candles:       opts.Candles,
		records:       opts.MetricRecords,
		scores:        opts.DeviationScores,
		norm:          opts.Normalizer,
		exchanges:     opts.Exchanges,
		refExchange:   opts.ReferenceExchange,
		span:          opts.Span,
		targetDay:     opts.TargetDay,
		eventWindow:   opts.EventWindow,
		distOpts:      opts.Distribution,
		includeTarget: opts.IncludeTargetDay,
		kinds:         kinds,
		workers:       workers,
		log:           opts.Logger,
	}
}

// listMarkets enumerates every market across the configured exchanges,
// sorted for deterministic fan-out order.
func (e *Engine) listMarkets(ctx context.Context) ([]domain.MarketKey, error) {
	var keys []domain.MarketKey
	for _, exchange := range e.exchanges {
		exKeys, err := e.candles.ListMarkets(ctx, exchange)
		if err != nil {
			return nil, fmt.Errorf("list markets for %s: %w", exchange, err)
		}
		keys = append(keys, exKeys...)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	observability.DefaultMetrics.MarketsListed.Add(float64(len(keys)))
	return keys, nil
}

// getRange reads one series with read metrics attached.
func (e *Engine) getRange(ctx context.Context, key domain.MarketKey, window domain.Window) ([]*domain.Candle, error) {
	// Store bounds are inclusive; the window end is exclusive.
	candles, err := e.candles.GetRange(ctx, key, window.StartMs, window.EndMs-1)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNoSuchMarket):
			observability.RecordCandleReadError("no_such_market")
		case errors.Is(err, storage.ErrNoDataInRange):
			observability.RecordCandleReadError("no_data_in_range")
		default:
			observability.RecordCandleReadError("other")
		}
		return nil, err
	}
	observability.RecordCandlesRead(key.Exchange, len(candles))
	return candles, nil
}

// marketOutcome is one worker's result for one market.
type marketOutcome[T any] struct {
	key  domain.MarketKey
	val  T
	skip *domain.SkippedMarket
}

// forEachMarket fans fn out over keys on a bounded worker pool and collects
// results. A failing market becomes a SkippedMarket instead of aborting the
// run; only context cancellation is fatal. Output order follows the sorted
// input order regardless of worker scheduling.
func forEachMarket[T any](ctx context.Context, e *Engine, pipeline string, keys []domain.MarketKey, fn func(context.Context, domain.MarketKey) (T, error)) ([]T, []domain.SkippedMarket, error) {
	jobs := make(chan int)
	outcomes := make([]marketOutcome[T], len(keys))

	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				key := keys[i]
				val, err := fn(ctx, key)
				if err != nil {
					outcomes[i] = marketOutcome[T]{key: key, skip: &domain.SkippedMarket{
						Key:    key,
						Reason: err.Error(),
					}}
					continue
				}
				outcomes[i] = marketOutcome[T]{key: key, val: val}
			}
		}()
	}

feed:
	for i := range keys {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var values []T
	var skipped []domain.SkippedMarket
	for _, out := range outcomes {
		if out.skip != nil {
			skipped = append(skipped, *out.skip)
			observability.RecordMarketSkipped(pipeline)
			e.log.Warn().
				Str("pipeline", pipeline).
				Str("market", out.skip.Key.String()).
				Str("reason", out.skip.Reason).
				Msg("market skipped")
			continue
		}
		values = append(values, out.val)
		observability.RecordMarketProcessed(pipeline)
	}
	return values, skipped, nil
}
