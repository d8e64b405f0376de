// Package aggregation folds normalized per-market quantities over a fixed
// UTC window into representative cross-venue series and totals.
package aggregation

import (
	"sort"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/analytics"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
)

// VolumeTotals is the USD volume aggregate for one exchange, split by
// instrument type.
type VolumeTotals struct {
	Exchange   string
	SpotUSD    float64
	FuturesUSD float64
}

// CombinedUSD returns spot plus futures volume.
func (t VolumeTotals) CombinedUSD() float64 {
	return t.SpotUSD + t.FuturesUSD
}

// GrandTotals sums VolumeTotals across exchanges.
type GrandTotals struct {
	SpotUSD    float64
	FuturesUSD float64
}

// CombinedUSD returns spot plus futures volume across all exchanges.
func (t GrandTotals) CombinedUSD() float64 {
	return t.SpotUSD + t.FuturesUSD
}

// SumFlows folds per-market flows into per-exchange totals plus a grand
// total. Addition is commutative, so the result never depends on the order
// the flows were produced in. Exchanges come back sorted by name.
func SumFlows(flows []*domain.NormalizedFlow) ([]VolumeTotals, GrandTotals) {
	byExchange := make(map[string]*VolumeTotals)
	var grand GrandTotals

	for _, f := range flows {
		totals, ok := byExchange[f.Key.Exchange]
		if !ok {
			totals = &VolumeTotals{Exchange: f.Key.Exchange}
			byExchange[f.Key.Exchange] = totals
		}
		if f.Key.IsSpot() {
			totals.SpotUSD += f.USDVolume
			grand.SpotUSD += f.USDVolume
		} else {
			totals.FuturesUSD += f.USDVolume
			grand.FuturesUSD += f.USDVolume
		}
	}

	names := make([]string, 0, len(byExchange))
	for name := range byExchange {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]VolumeTotals, 0, len(names))
	for _, name := range names {
		result = append(result, *byExchange[name])
	}
	return result, grand
}

// MedianSeries builds one representative series from many per-market basis
// series: for each timestamp the median across markets of the chosen basis
// variant. A market with no point at a timestamp contributes no value there,
// never a zero. The median, like the sum above, is order-independent.
func MedianSeries(series map[string][]*domain.BasisPoint, variant domain.BasisVariant) []domain.SeriesPoint {
	byTimestamp := make(map[int64][]float64)
	for _, points := range series {
		for _, p := range points {
			byTimestamp[p.TimestampMs] = append(byTimestamp[p.TimestampMs], basisValue(p, variant))
		}
	}

	timestamps := make([]int64, 0, len(byTimestamp))
	for ts := range byTimestamp {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	result := make([]domain.SeriesPoint, 0, len(timestamps))
	for _, ts := range timestamps {
		values := byTimestamp[ts]
		result = append(result, domain.SeriesPoint{
			TimestampMs: ts,
			Value:       analytics.Median(values),
			MarketCount: len(values),
		})
	}
	return result
}

func basisValue(p *domain.BasisPoint, variant domain.BasisVariant) float64 {
	switch variant {
	case domain.BasisHigh:
		return p.HighPct
	case domain.BasisLow:
		return p.LowPct
	default:
		return p.MidPct
	}
}

// DailyMedians groups metric records by UTC day window start and returns the
// per-day cross-market median of the chosen metric, sorted by day.
func DailyMedians(records []*domain.MetricRecord, kind domain.MetricKind) []domain.SeriesPoint {
	byDay := make(map[int64][]float64)
	for _, r := range records {
		byDay[r.Window.StartMs] = append(byDay[r.Window.StartMs], r.Metric(kind))
	}

	days := make([]int64, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	result := make([]domain.SeriesPoint, 0, len(days))
	for _, day := range days {
		values := byDay[day]
		result = append(result, domain.SeriesPoint{
			TimestampMs: day,
			Value:       analytics.Median(values),
			MarketCount: len(values),
		})
	}
	return result
}
