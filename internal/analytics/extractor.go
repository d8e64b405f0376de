// Package analytics holds the pure statistics core: per-period metric
// extraction, reference distributions, and deviation scoring.
package analytics

import (
	"errors"
	"fmt"
	"math"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
)

// ErrInsufficientData is returned when a period holds no usable bars.
// Recoverable: callers skip the market and report it.
var ErrInsufficientData = errors.New("insufficient data: no bars fully inside window")

// ExtractMetrics derives one MetricRecord from a candle series and a period
// boundary. Only bars whose open timestamp satisfies start <= ts < end
// contribute. Bars with non-positive prices are dropped (bad rows exist in
// scraped history). Pure function of its input.
func ExtractMetrics(candles []*domain.Candle, window domain.Window) (*domain.MetricRecord, error) {
	var inWindow []*domain.Candle
	for _, c := range candles {
		if !window.Contains(c.TimestampMs) {
			continue
		}
		if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
			continue
		}
		inWindow = append(inWindow, c)
	}
	if len(inWindow) == 0 {
		return nil, ErrInsufficientData
	}

	periodOpen := inWindow[0].Open
	highMax := inWindow[0].High
	lowMin := inWindow[0].Low
	for _, c := range inWindow[1:] {
		if c.High > highMax {
			highMax = c.High
		}
		if c.Low < lowMin {
			lowMin = c.Low
		}
	}

	rec := &domain.MetricRecord{
		Key:         inWindow[0].Key,
		Window:      window,
		DropPct:     lowMin/periodOpen - 1,
		PumpPct:     highMax/periodOpen - 1,
		RangePct:    highMax/lowMin - 1,
		RealizedVol: realizedVol(inWindow),
		BarCount:    len(inWindow),
	}
	return rec, nil
}

// realizedVol is the sample stddev of log returns between consecutive bar
// closes, raw per-bar units.
func realizedVol(candles []*domain.Candle) float64 {
	if len(candles) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		returns = append(returns, math.Log(candles[i].Close/candles[i-1].Close))
	}
	return SampleStddev(returns)
}

// ExtractDaily splits a multi-year series into UTC calendar days and
// extracts one record per day that holds at least one bar. The series must
// be sorted ascending by timestamp.
func ExtractDaily(candles []*domain.Candle) []*domain.MetricRecord {
	var records []*domain.MetricRecord

	start := 0
	for start < len(candles) {
		window := domain.Day(candles[start].OpenTime())
		end := start
		for end < len(candles) && window.Contains(candles[end].TimestampMs) {
			end++
		}
		rec, err := ExtractMetrics(candles[start:end], window)
		if err == nil {
			records = append(records, rec)
		}
		if end == start {
			// Bar before the day it opened; cannot happen on sorted input.
			end++
		}
		start = end
	}
	return records
}

// ValidateSeries checks the accessor contract: ascending timestamps with no
// duplicates per key. Gaps are legal and left to the caller.
func ValidateSeries(candles []*domain.Candle) error {
	for i := 1; i < len(candles); i++ {
		if candles[i].TimestampMs <= candles[i-1].TimestampMs {
			return fmt.Errorf("series not strictly ascending at index %d (ts %d after %d)",
				i, candles[i].TimestampMs, candles[i-1].TimestampMs)
		}
	}
	return nil
}
