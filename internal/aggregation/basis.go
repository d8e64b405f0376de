package aggregation

import (
	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
)

// ComputeBasis joins a venue series against a reference spot series on bar
// timestamps and returns per-bar basis percentages (mid/high/low variants).
// Only timestamps present in both series inside the window produce a point;
// unmatched bars are dropped, not zero-filled. Both inputs must be sorted
// ascending by timestamp.
func ComputeBasis(venue, refSpot []*domain.Candle, window domain.Window) []*domain.BasisPoint {
	spotByTs := make(map[int64]*domain.Candle, len(refSpot))
	for _, c := range refSpot {
		if window.Contains(c.TimestampMs) {
			spotByTs[c.TimestampMs] = c
		}
	}

	var points []*domain.BasisPoint
	for _, fut := range venue {
		if !window.Contains(fut.TimestampMs) {
			continue
		}
		spot, ok := spotByTs[fut.TimestampMs]
		if !ok {
			continue
		}
		if spot.Mid() == 0 || spot.High == 0 || spot.Low == 0 {
			continue
		}
		points = append(points, &domain.BasisPoint{
			Key:         fut.Key,
			TimestampMs: fut.TimestampMs,
			MidPct:      (fut.Mid() - spot.Mid()) / spot.Mid() * 100,
			HighPct:     (fut.High - spot.High) / spot.High * 100,
			LowPct:      (fut.Low - spot.Low) / spot.Low * 100,
		})
	}
	return points
}
