package reporting

import (
	"time"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/engine"
)

// Generator assembles a Report from pipeline results.
type Generator struct {
	targetDay string
	spanStart string
	spanEnd   string
	now       func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(targetDay, spanStart, spanEnd string) *Generator {
	return &Generator{
		targetDay: targetDay,
		spanStart: spanStart,
		spanEnd:   spanEnd,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate assembles a report from whichever pipeline results ran; nil
// sections are simply omitted.
func (g *Generator) Generate(stats *engine.DayStatsResult, volume *engine.WindowVolumeResult, drops *engine.TopDropsResult) *Report {
	r := &Report{
		GeneratedAt: g.now(),
		TargetDay:   g.targetDay,
		SpanStart:   g.spanStart,
		SpanEnd:     g.spanEnd,
	}

	if stats != nil {
		r.Scores = ScoreRows(stats)
		r.Skipped = append(r.Skipped, skippedRows("daystats", stats.Skipped)...)
	}
	if volume != nil {
		r.WindowStart = formatMs(volume.Window.StartMs)
		r.WindowEnd = formatMs(volume.Window.EndMs)
		r.Volumes, r.GrandTotal = VolumeRows(volume)
		r.Skipped = append(r.Skipped, skippedRows("window_volume", volume.Skipped)...)
	}
	if drops != nil {
		r.RankingMetric = string(drops.Metric)
		r.Ranked = RankedRows(drops.Ranked)
		r.Skipped = append(r.Skipped, skippedRows("top_drops", drops.Skipped)...)
	}

	return r
}

// ScoreRows flattens a DayStats result into renderable rows, attaching each
// score's reference statistics.
func ScoreRows(stats *engine.DayStatsResult) []ScoreRow {
	rows := make([]ScoreRow, 0, len(stats.Scores))
	for _, s := range stats.Scores {
		row := ScoreRow{
			Market:    s.Key.String(),
			Metric:    string(s.MetricKind),
			Observed:  s.Observed,
			ZScore:    s.ZScore,
			Direction: string(s.Direction),
		}
		if dists, ok := stats.Distributions[s.Key.String()]; ok {
			if dist, ok := dists[s.MetricKind]; ok {
				row.Samples = dist.N
				row.Median = dist.Median
				row.Dispersion = dist.Dispersion
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// VolumeRows flattens a WindowVolume result into renderable rows.
func VolumeRows(volume *engine.WindowVolumeResult) ([]VolumeRow, VolumeRow) {
	rows := make([]VolumeRow, 0, len(volume.PerExchange))
	for _, t := range volume.PerExchange {
		rows = append(rows, VolumeRow{
			Exchange:    t.Exchange,
			SpotUSD:     t.SpotUSD,
			FuturesUSD:  t.FuturesUSD,
			CombinedUSD: t.CombinedUSD(),
		})
	}
	grand := VolumeRow{
		Exchange:    "TOTAL",
		SpotUSD:     volume.Grand.SpotUSD,
		FuturesUSD:  volume.Grand.FuturesUSD,
		CombinedUSD: volume.Grand.CombinedUSD(),
	}
	return rows, grand
}

// RankedRows flattens a ranking into renderable rows.
func RankedRows(ranked []domain.RankedMarket) []RankedRow {
	rows := make([]RankedRow, 0, len(ranked))
	for _, m := range ranked {
		rows = append(rows, RankedRow{Rank: m.Rank, Market: m.Key.String(), Value: m.MetricValue})
	}
	return rows
}

// SeriesRows flattens an aggregated series into renderable rows.
func SeriesRows(points []domain.SeriesPoint) []SeriesRow {
	rows := make([]SeriesRow, 0, len(points))
	for _, p := range points {
		rows = append(rows, SeriesRow{TimestampMs: p.TimestampMs, Value: p.Value, MarketCount: p.MarketCount})
	}
	return rows
}

func skippedRows(pipeline string, skipped []domain.SkippedMarket) []SkippedRow {
	rows := make([]SkippedRow, 0, len(skipped))
	for _, s := range skipped {
		rows = append(rows, SkippedRow{Pipeline: pipeline, Market: s.Key.String(), Reason: s.Reason})
	}
	return rows
}

func formatMs(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
