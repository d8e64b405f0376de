package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/aggregation"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/observability"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/storage"
)

// ErrNoReferenceSpot is returned for markets whose base/quote pair has no
// spot series on the reference exchange to measure basis against.
var ErrNoReferenceSpot = errors.New("no reference spot series")

// BasisResult is the output of the Basis pipeline.
type BasisResult struct {
	Window  domain.Window
	Variant domain.BasisVariant

	// SeriesByExchange holds one representative series per exchange: the
	// per-timestamp median basis across that exchange's markets.
	SeriesByExchange map[string][]domain.SeriesPoint

	Skipped []domain.SkippedMarket
}

// marketBasis is one market's contribution.
type marketBasis struct {
	key    domain.MarketKey
	points []*domain.BasisPoint
}

// Basis measures how far each venue's prices deviated from reference-
// exchange spot inside the window: per-bar basis percentages joined on
// timestamps, folded into one median series per exchange. Reference-
// exchange spot markets measure themselves and are excluded.
func (e *Engine) Basis(ctx context.Context, variant domain.BasisVariant) (*BasisResult, error) {
	started := time.Now()

	keys, err := e.listMarkets(ctx)
	if err != nil {
		observability.RecordPipelineRun("basis", "error", time.Since(started).Seconds())
		return nil, err
	}

	// The join target never changes inside a run; fetch each reference
	// series once up front instead of per market.
	refSeries, err := e.referenceSpotSeries(ctx, keys)
	if err != nil {
		observability.RecordPipelineRun("basis", "error", time.Since(started).Seconds())
		return nil, err
	}

	var venueKeys []domain.MarketKey
	for _, key := range keys {
		if key.Exchange == e.refExchange && key.IsSpot() {
			continue
		}
		venueKeys = append(venueKeys, key)
	}
	e.log.Info().
		Int("markets", len(venueKeys)).
		Int("reference_series", len(refSeries)).
		Msg("basis: fan-out")

	perMarket, skipped, err := forEachMarket(ctx, e, "basis", venueKeys,
		func(ctx context.Context, key domain.MarketKey) (*marketBasis, error) {
			return e.marketBasis(ctx, key, refSeries)
		})
	if err != nil {
		observability.RecordPipelineRun("basis", "error", time.Since(started).Seconds())
		return nil, err
	}

	byExchange := make(map[string]map[string][]*domain.BasisPoint)
	for _, m := range perMarket {
		series, ok := byExchange[m.key.Exchange]
		if !ok {
			series = make(map[string][]*domain.BasisPoint)
			byExchange[m.key.Exchange] = series
		}
		series[m.key.String()] = m.points
	}

	result := &BasisResult{
		Window:           e.eventWindow,
		Variant:          variant,
		SeriesByExchange: make(map[string][]domain.SeriesPoint, len(byExchange)),
		Skipped:          skipped,
	}
	for exchange, series := range byExchange {
		result.SeriesByExchange[exchange] = aggregation.MedianSeries(series, variant)
	}

	e.log.Info().
		Int("exchanges", len(result.SeriesByExchange)).
		Int("skipped", len(skipped)).
		Msg("basis: done")
	observability.RecordPipelineRun("basis", "ok", time.Since(started).Seconds())
	return result, nil
}

// referenceSpotSeries loads the reference exchange's spot series for every
// base/quote pair present in keys, keyed by pair. Pairs without reference
// data are simply absent; dependent markets skip with ErrNoReferenceSpot.
func (e *Engine) referenceSpotSeries(ctx context.Context, keys []domain.MarketKey) (map[string][]*domain.Candle, error) {
	series := make(map[string][]*domain.Candle)
	for _, key := range keys {
		refKey := domain.MarketKey{
			Exchange:       e.refExchange,
			Base:           key.Base,
			Quote:          key.Quote,
			InstrumentType: domain.InstrumentSpot,
		}
		if _, done := series[refKey.Market()]; done {
			continue
		}
		candles, err := e.getRange(ctx, refKey, e.eventWindow)
		if err != nil {
			if errors.Is(err, storage.ErrNoSuchMarket) || errors.Is(err, storage.ErrNoDataInRange) {
				continue
			}
			return nil, fmt.Errorf("reference spot %s: %w", refKey, err)
		}
		series[refKey.Market()] = candles
	}
	return series, nil
}

func (e *Engine) marketBasis(ctx context.Context, key domain.MarketKey, refSeries map[string][]*domain.Candle) (*marketBasis, error) {
	refSpot, ok := refSeries[key.Market()]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s spot pair", ErrNoReferenceSpot, key, e.refExchange)
	}

	candles, err := e.getRange(ctx, key, e.eventWindow)
	if err != nil {
		return nil, err
	}

	points := aggregation.ComputeBasis(candles, refSpot, e.eventWindow)
	if len(points) == 0 {
		return nil, fmt.Errorf("no overlapping bars with %s spot", e.refExchange)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].TimestampMs < points[j].TimestampMs })
	return &marketBasis{key: key, points: points}, nil
}
