package normalization

import (
	"errors"
	"testing"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
)

var (
	spotKey = domain.MarketKey{
		Exchange: "binance", Base: "btc", Quote: "usdt",
		InstrumentType: domain.InstrumentSpot,
	}
	futKey = domain.MarketKey{
		Exchange: "bybit", Base: "btc", Quote: "usd",
		InstrumentType: domain.InstrumentPerpetual,
	}
)

func TestBarNotional_SpotUsesMidPrice(t *testing.T) {
	n := New(NewCatalogResolver(nil), nil)
	c := &domain.Candle{Key: spotKey, High: 110, Low: 90, Volume: 3}

	got, err := n.BarNotional(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 300 { // mid 100 * 3
		t.Errorf("expected 300, got %f", got)
	}
}

func TestBarNotional_InversePriceCancelsOut(t *testing.T) {
	resolver := NewCatalogResolver(nil)
	resolver.Add(futKey, domain.Inverse(100))
	n := New(resolver, nil)

	// 50 contracts * 100 USD each = 5000 regardless of price level
	lowPrice := &domain.Candle{Key: futKey, High: 11, Low: 9, Volume: 50}
	highPrice := &domain.Candle{Key: futKey, High: 110_000, Low: 90_000, Volume: 50}

	for _, c := range []*domain.Candle{lowPrice, highPrice} {
		got, err := n.BarNotional(c)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 5000 {
			t.Errorf("expected 5000 USD notional, got %f", got)
		}
	}
}

func TestBarNotional_UnknownConventionNeverDefaultsLinear(t *testing.T) {
	n := New(NewCatalogResolver(nil), nil)
	c := &domain.Candle{Key: futKey, High: 110, Low: 90, Volume: 3}

	_, err := n.BarNotional(c)
	if !errors.Is(err, ErrUnknownConvention) {
		t.Fatalf("expected ErrUnknownConvention, got %v", err)
	}
}

func TestBarNotional_LinearDerivativeExchange(t *testing.T) {
	n := New(NewCatalogResolver([]string{"bybit"}), nil)
	c := &domain.Candle{Key: futKey, High: 110, Low: 90, Volume: 3}

	got, err := n.BarNotional(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 300 {
		t.Errorf("expected linear notional 300, got %f", got)
	}
}

func TestBarNotional_RejectsNonUSDQuote(t *testing.T) {
	n := New(NewCatalogResolver(nil), nil)
	key := spotKey
	key.Quote = "btc"
	c := &domain.Candle{Key: key, High: 110, Low: 90, Volume: 3}

	_, err := n.BarNotional(c)
	if !errors.Is(err, ErrNonUSDQuote) {
		t.Fatalf("expected ErrNonUSDQuote, got %v", err)
	}
}

func TestWindowFlow_SumsOnlyBarsInsideWindow(t *testing.T) {
	n := New(NewCatalogResolver(nil), nil)
	window := domain.Window{StartMs: 60_000, EndMs: 180_000}
	candles := []*domain.Candle{
		{Key: spotKey, TimestampMs: 0, High: 110, Low: 90, Volume: 1},       // excluded
		{Key: spotKey, TimestampMs: 60_000, High: 110, Low: 90, Volume: 2}, // 200
		{Key: spotKey, TimestampMs: 120_000, High: 60, Low: 40, Volume: 4}, // 200
		{Key: spotKey, TimestampMs: 180_000, High: 110, Low: 90, Volume: 8}, // excluded (half-open)
	}

	flow, err := n.WindowFlow(candles, window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flow.USDVolume != 400 {
		t.Errorf("expected 400 USD volume, got %f", flow.USDVolume)
	}
	if flow.BarCount != 2 {
		t.Errorf("expected 2 bars, got %d", flow.BarCount)
	}
	if flow.USDVolume < 0 {
		t.Errorf("usd volume must be non-negative, got %f", flow.USDVolume)
	}
}
