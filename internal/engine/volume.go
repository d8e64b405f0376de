package engine

import (
	"context"
	"sort"
	"time"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/aggregation"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/observability"
)

// WindowVolumeResult is the output of the WindowVolume pipeline.
type WindowVolumeResult struct {
	Window      domain.Window
	PerExchange []aggregation.VolumeTotals
	Grand       aggregation.GrandTotals

	// Flows holds the per-market USD notional, sorted by market key.
	Flows []*domain.NormalizedFlow

	Skipped []domain.SkippedMarket
}

// WindowVolume sums USD notional traded inside the liquidation window,
// per exchange split spot vs futures plus grand totals. Markets with an
// unknown contract convention or a non-USD quote are skipped, never
// silently counted with the wrong formula.
func (e *Engine) WindowVolume(ctx context.Context) (*WindowVolumeResult, error) {
	started := time.Now()

	keys, err := e.listMarkets(ctx)
	if err != nil {
		observability.RecordPipelineRun("window_volume", "error", time.Since(started).Seconds())
		return nil, err
	}
	e.log.Info().Int("markets", len(keys)).Msg("window volume: fan-out")

	flows, skipped, err := forEachMarket(ctx, e, "window_volume", keys, e.marketWindowFlow)
	if err != nil {
		observability.RecordPipelineRun("window_volume", "error", time.Since(started).Seconds())
		return nil, err
	}

	sort.Slice(flows, func(i, j int) bool {
		return flows[i].Key.String() < flows[j].Key.String()
	})
	perExchange, grand := aggregation.SumFlows(flows)

	e.log.Info().
		Int("markets", len(flows)).
		Int("skipped", len(skipped)).
		Float64("grand_usd", grand.CombinedUSD()).
		Msg("window volume: done")
	observability.RecordPipelineRun("window_volume", "ok", time.Since(started).Seconds())

	return &WindowVolumeResult{
		Window:      e.eventWindow,
		PerExchange: perExchange,
		Grand:       grand,
		Flows:       flows,
		Skipped:     skipped,
	}, nil
}

func (e *Engine) marketWindowFlow(ctx context.Context, key domain.MarketKey) (*domain.NormalizedFlow, error) {
	candles, err := e.getRange(ctx, key, e.eventWindow)
	if err != nil {
		return nil, err
	}
	flow, err := e.norm.WindowFlow(candles, e.eventWindow)
	if err != nil {
		return nil, err
	}
	flow.Key = key
	return flow, nil
}
