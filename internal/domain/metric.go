package domain

import "math"

// MetricKind selects which per-period metric a record or distribution refers to.
type MetricKind string

const (
	MetricDrop        MetricKind = "drop_pct"
	MetricPump        MetricKind = "pump_pct"
	MetricRange       MetricKind = "range_pct"
	MetricRealizedVol MetricKind = "realized_vol"
)

// MetricRecord holds the summary metrics derived from one market's candles
// over one period (a UTC day or an arbitrary window).
//
// Invariants: DropPct <= 0 <= PumpPct and RangePct >= 0.
// RealizedVol is the sample stddev of log close-to-close returns inside the
// period, raw per-bar units (callers annualize if they need to; raw and
// annualized values are never mixed in one distribution).
type MetricRecord struct {
	Key         MarketKey
	Window      Window
	DropPct     float64 // low_min/period_open - 1
	PumpPct     float64 // high_max/period_open - 1
	RangePct    float64 // high_max/low_min - 1
	RealizedVol float64
	BarCount    int
}

// Metric returns the value selected by kind.
func (r *MetricRecord) Metric(kind MetricKind) float64 {
	switch kind {
	case MetricDrop:
		return r.DropPct
	case MetricPump:
		return r.PumpPct
	case MetricRange:
		return r.RangePct
	case MetricRealizedVol:
		return r.RealizedVol
	default:
		return math.NaN()
	}
}

// DispersionEstimator selects the robust spread statistic for a
// ReferenceDistribution.
type DispersionEstimator string

const (
	// DispersionMAD is the median absolute deviation scaled by the standard
	// normal consistency constant, the default robust estimator.
	DispersionMAD DispersionEstimator = "mad"

	// DispersionStddev is the plain sample standard deviation, opt-in.
	DispersionStddev DispersionEstimator = "stddev"
)

// MADConsistency scales MAD to approximate stddev under normality.
const MADConsistency = 1.4826

// ReferenceDistribution summarizes the long-horizon history of one metric
// for one market (or pooled across markets). Built once per run, read-only
// afterwards.
type ReferenceDistribution struct {
	MetricKind MetricKind
	Estimator  DispersionEstimator
	N          int
	Median     float64
	Dispersion float64
}

// Direction tells which side of the reference median an observation fell on.
type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

// DeviationScore expresses one observed metric as a standardized distance
// from its reference distribution. ZScore is +/-Inf when the reference
// dispersion is zero; that is an informational sentinel, not an error.
type DeviationScore struct {
	Key        MarketKey
	MetricKind MetricKind
	Observed   float64
	ZScore     float64
	Direction  Direction
}

// Degenerate reports whether the score carries the zero-dispersion sentinel.
func (s *DeviationScore) Degenerate() bool {
	return math.IsInf(s.ZScore, 0)
}
