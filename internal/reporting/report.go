// Package reporting renders analysis results as CSV and Markdown.
package reporting

import "time"

// Report is the renderable summary of one analysis run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	TargetDay   string
	SpanStart   string
	SpanEnd     string

	// Deviation scores (sorted by market, then metric kind)
	Scores []ScoreRow

	// Liquidation-window volume
	WindowStart string
	WindowEnd   string
	Volumes     []VolumeRow
	GrandTotal  VolumeRow

	// Target-day ranking
	RankingMetric string
	Ranked        []RankedRow

	// Markets skipped across pipelines, with reasons
	Skipped []SkippedRow
}

// ScoreRow is one deviation score with its reference statistics.
type ScoreRow struct {
	Market     string
	Metric     string
	Observed   float64
	ZScore     float64
	Direction  string
	Samples    int
	Median     float64
	Dispersion float64
}

// VolumeRow is one exchange's USD volume split by instrument kind.
type VolumeRow struct {
	Exchange    string
	SpotUSD     float64
	FuturesUSD  float64
	CombinedUSD float64
}

// RankedRow is one entry of the target-day ranking.
type RankedRow struct {
	Rank   int
	Market string
	Value  float64
}

// SeriesRow is one timestamp of an aggregated cross-market series.
type SeriesRow struct {
	TimestampMs int64
	Value       float64
	MarketCount int
}

// SkippedRow records one market excluded from a pipeline.
type SkippedRow struct {
	Pipeline string
	Market   string
	Reason   string
}
