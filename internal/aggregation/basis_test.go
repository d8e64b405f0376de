package aggregation

import (
	"math"
	"testing"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
)

func TestComputeBasis_InnerJoinOnTimestamps(t *testing.T) {
	window := domain.Window{StartMs: 0, EndMs: 300_000}
	futKey := key("bybit", domain.InstrumentPerpetual)
	spotKey := key("binance", domain.InstrumentSpot)

	venue := []*domain.Candle{
		{Key: futKey, TimestampMs: 0, High: 101, Low: 99},
		{Key: futKey, TimestampMs: 60_000, High: 95, Low: 85}, // no matching spot bar
		{Key: futKey, TimestampMs: 120_000, High: 90, Low: 70},
	}
	refSpot := []*domain.Candle{
		{Key: spotKey, TimestampMs: 0, High: 100, Low: 98},
		{Key: spotKey, TimestampMs: 120_000, High: 100, Low: 100},
	}

	points := ComputeBasis(venue, refSpot, window)
	if len(points) != 2 {
		t.Fatalf("expected inner join with 2 points, got %d", len(points))
	}

	// ts 0: fut mid 100, spot mid 99 -> (100-99)/99*100
	wantMid := (100.0 - 99.0) / 99.0 * 100
	if math.Abs(points[0].MidPct-wantMid) > 1e-12 {
		t.Errorf("ts 0 mid basis: expected %f, got %f", wantMid, points[0].MidPct)
	}
	wantHigh := (101.0 - 100.0) / 100.0 * 100
	if math.Abs(points[0].HighPct-wantHigh) > 1e-12 {
		t.Errorf("ts 0 high basis: expected %f, got %f", wantHigh, points[0].HighPct)
	}

	// ts 120000: fut mid 80 vs spot mid 100 -> -20%
	if math.Abs(points[1].MidPct - -20) > 1e-12 {
		t.Errorf("ts 120000 mid basis: expected -20, got %f", points[1].MidPct)
	}
}

func TestComputeBasis_RespectsWindow(t *testing.T) {
	window := domain.Window{StartMs: 0, EndMs: 60_000}
	futKey := key("bybit", domain.InstrumentPerpetual)
	spotKey := key("binance", domain.InstrumentSpot)

	venue := []*domain.Candle{
		{Key: futKey, TimestampMs: 60_000, High: 101, Low: 99}, // at end: excluded
	}
	refSpot := []*domain.Candle{
		{Key: spotKey, TimestampMs: 60_000, High: 100, Low: 98},
	}

	if points := ComputeBasis(venue, refSpot, window); len(points) != 0 {
		t.Fatalf("expected no points outside [start, end), got %d", len(points))
	}
}
