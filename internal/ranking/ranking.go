// Package ranking orders markets by a derived metric.
package ranking

import (
	"sort"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
)

// TopN ranks markets by the chosen metric, most extreme first, and returns
// at most n entries. Extremity means most negative for drop_pct and largest
// for every other metric. Ties are broken lexicographically by market key so
// identical input always yields identical output.
func TopN(records []*domain.MetricRecord, kind domain.MetricKind, n int) []domain.RankedMarket {
	ranked := make([]domain.RankedMarket, 0, len(records))
	for _, r := range records {
		ranked = append(ranked, domain.RankedMarket{
			Key:         r.Key,
			MetricValue: r.Metric(kind),
		})
	}

	moreExtreme := func(a, b float64) bool { return a > b }
	if kind == domain.MetricDrop {
		moreExtreme = func(a, b float64) bool { return a < b }
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].MetricValue != ranked[j].MetricValue {
			return moreExtreme(ranked[i].MetricValue, ranked[j].MetricValue)
		}
		return ranked[i].Key.String() < ranked[j].Key.String()
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
