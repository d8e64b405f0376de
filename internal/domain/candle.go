package domain

import "time"

// InstrumentType classifies a market by contract kind.
type InstrumentType string

const (
	InstrumentSpot       InstrumentType = "SPOT"
	InstrumentPerpetual  InstrumentType = "PERPETUAL"
	InstrumentDerivative InstrumentType = "DERIVATIVE"
)

// MarketKey identifies one candle series: an instrument on one venue.
type MarketKey struct {
	Exchange       string         // lowercase venue identifier, e.g. "binance"
	Base           string         // lowercase base asset, e.g. "btc"
	Quote          string         // lowercase quote asset, e.g. "usdt"
	InstrumentType InstrumentType
}

// Market returns the base/quote pair identifier, e.g. "btc_usdt".
func (k MarketKey) Market() string {
	return k.Base + "_" + k.Quote
}

// String returns the full series identifier, e.g. "binance:btc_usdt:SPOT".
func (k MarketKey) String() string {
	return k.Exchange + ":" + k.Market() + ":" + string(k.InstrumentType)
}

// IsSpot reports whether the key refers to a spot market.
func (k MarketKey) IsSpot() bool {
	return k.InstrumentType == InstrumentSpot
}

// Candle is one OHLCV bar. TimestampMs is the bar-open instant (UTC, Unix
// milliseconds). Prices are in quote currency, Volume in base-asset units
// (or contract count for inverse contracts). Immutable once read; a series
// is strictly ordered by TimestampMs with no duplicates per MarketKey.
type Candle struct {
	Key         MarketKey
	TimestampMs int64
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
}

// OpenTime returns the bar-open instant in UTC.
func (c *Candle) OpenTime() time.Time {
	return time.UnixMilli(c.TimestampMs).UTC()
}

// Mid returns the bar's representative price, the high/low midpoint.
func (c *Candle) Mid() float64 {
	return (c.High + c.Low) / 2
}

// Window is a half-open UTC time range [StartMs, EndMs).
type Window struct {
	StartMs int64
	EndMs   int64
}

// NewWindow builds a window from two instants.
func NewWindow(start, end time.Time) Window {
	return Window{StartMs: start.UnixMilli(), EndMs: end.UnixMilli()}
}

// Day returns the window covering one UTC calendar day.
func Day(d time.Time) Window {
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return Window{StartMs: start.UnixMilli(), EndMs: start.Add(24 * time.Hour).UnixMilli()}
}

// Contains reports whether a bar-open timestamp falls inside the window.
// Bars are included iff start <= ts < end; no partial-bar interpolation.
func (w Window) Contains(tsMs int64) bool {
	return tsMs >= w.StartMs && tsMs < w.EndMs
}
