package domain

// NormalizedFlow is one market's traded volume over a window converted to
// USD notional. USDVolume is always >= 0.
type NormalizedFlow struct {
	Key       MarketKey
	Window    Window
	USDVolume float64
	BarCount  int
}

// BasisPoint is one bar's percentage difference between a venue's price and
// the reference spot price, in mid/high/low variants.
type BasisPoint struct {
	Key         MarketKey
	TimestampMs int64
	MidPct      float64 // (fut_mid - spot_mid) / spot_mid * 100
	HighPct     float64
	LowPct      float64
}

// BasisVariant selects which basis component an aggregate series uses.
type BasisVariant string

const (
	BasisMid  BasisVariant = "mid"
	BasisHigh BasisVariant = "high"
	BasisLow  BasisVariant = "low"
)

// SeriesPoint is one timestamp of an aggregated cross-market series.
type SeriesPoint struct {
	TimestampMs int64
	Value       float64
	MarketCount int // markets contributing at this timestamp
}

// RankedMarket is one entry of a ranking result. Rank 1 is the most extreme
// market; ties on the metric are broken lexicographically by market key.
type RankedMarket struct {
	Key         MarketKey
	MetricValue float64
	Rank        int
}

// SkippedMarket records a per-market failure alongside successful results.
// One bad market never aborts a cross-exchange run; it is reported here.
type SkippedMarket struct {
	Key    MarketKey
	Reason string
}
