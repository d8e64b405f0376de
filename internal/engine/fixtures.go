package engine

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/normalization"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/storage/memory"
)

// FixtureMarkets are the synthetic markets fixture runs operate on.
var FixtureMarkets = []domain.MarketKey{
	{Exchange: "binance", Base: "btc", Quote: "usdt", InstrumentType: domain.InstrumentSpot},
	{Exchange: "binance", Base: "eth", Quote: "usdt", InstrumentType: domain.InstrumentSpot},
	{Exchange: "binance", Base: "btc", Quote: "usdt", InstrumentType: domain.InstrumentPerpetual},
	{Exchange: "bybit", Base: "btc", Quote: "usdt", InstrumentType: domain.InstrumentSpot},
	{Exchange: "bybit", Base: "btc", Quote: "usdt", InstrumentType: domain.InstrumentPerpetual},
	{Exchange: "okx", Base: "eth", Quote: "usdt", InstrumentType: domain.InstrumentSpot},
	{Exchange: "kraken", Base: "btc", Quote: "usd", InstrumentType: domain.InstrumentPerpetual},
}

// fixtureBasePrice anchors each base asset's synthetic price level.
var fixtureBasePrice = map[string]float64{
	"btc": 60_000,
	"eth": 3_000,
}

// FixtureResolver classifies the fixture markets: every derivative linear
// except the kraken perpetual, which is inverse at 1 USD per contract.
func FixtureResolver() *normalization.CatalogResolver {
	resolver := normalization.NewCatalogResolver([]string{"binance", "bybit", "okx"})
	resolver.Add(
		domain.MarketKey{Exchange: "kraken", Base: "btc", Quote: "usd", InstrumentType: domain.InstrumentPerpetual},
		domain.Inverse(1),
	)
	return resolver
}

// LoadFixtures seeds a memory candle store with deterministic synthetic
// series: one daily bar per historical day across the span, and one-minute
// bars on the target day carrying a crash inside the 21:00 UTC hour. The
// same inputs always produce the same series.
func LoadFixtures(store *memory.CandleStore, span, targetDay domain.Window) {
	for _, key := range FixtureMarkets {
		rng := rand.New(rand.NewSource(int64(keySeed(key))))
		base := fixtureBasePrice[key.Base]
		if base == 0 {
			base = 100
		}

		var candles []*domain.Candle
		for dayStart := span.StartMs; dayStart < span.EndMs; dayStart += int64(24 * time.Hour / time.Millisecond) {
			if dayStart == targetDay.StartMs {
				candles = append(candles, targetDayMinutes(key, rng, base, targetDay)...)
				continue
			}
			candles = append(candles, dailyBar(key, rng, base, dayStart))
		}
		store.Load(key, candles)
	}
}

// dailyBar produces one ordinary day: a few percent of range around a
// slowly drifting level.
func dailyBar(key domain.MarketKey, rng *rand.Rand, base float64, dayStart int64) *domain.Candle {
	drift := 1 + 0.3*math.Sin(float64(dayStart)/(180*24*3.6e6))
	level := base * drift
	open := level * (1 + 0.01*rng.NormFloat64())
	spread := level * (0.01 + 0.01*rng.Float64())

	high := open + spread*rng.Float64()
	low := open - spread*rng.Float64()
	close := low + (high-low)*rng.Float64()

	volume := 500 + 300*rng.Float64()
	if key.Quote == "usd" { // inverse market: volume is a contract count
		volume = (500 + 300*rng.Float64()) * level
	}

	return &domain.Candle{
		Key:         key,
		TimestampMs: dayStart,
		Open:        open,
		High:        high,
		Low:         low,
		Close:       close,
		Volume:      volume,
	}
}

// targetDayMinutes produces 1440 one-minute bars with a deep liquidation
// cascade between 21:00 and 22:00 UTC: down roughly 20% at the trough with
// heavy volume, partially recovering into the close.
func targetDayMinutes(key domain.MarketKey, rng *rand.Rand, base float64, day domain.Window) []*domain.Candle {
	const minuteMs = int64(time.Minute / time.Millisecond)

	level := base
	candles := make([]*domain.Candle, 0, 1440)
	for i := 0; i < 1440; i++ {
		ts := day.StartMs + int64(i)*minuteMs
		minuteOfDay := i

		// Crash shape: plunge through 21:00-21:30, partial bounce after.
		factor := 1.0
		switch {
		case minuteOfDay >= 21*60 && minuteOfDay < 21*60+30:
			factor = 1 - 0.20*float64(minuteOfDay-21*60)/30
		case minuteOfDay >= 21*60+30:
			factor = 0.80 + 0.08*float64(minuteOfDay-21*60-30)/float64(1440-21*60-30)
		}

		open := level * factor * (1 + 0.001*rng.NormFloat64())
		spread := open * 0.002
		if factor < 1 {
			spread = open * 0.01 // crash bars are wide
		}
		high := open + spread*rng.Float64()
		low := open - spread*rng.Float64()
		close := low + (high-low)*rng.Float64()

		volume := 0.3 + 0.2*rng.Float64()
		if factor < 1 {
			volume *= 20
		}
		if key.Quote == "usd" {
			volume *= open // contract count for the inverse market
		}

		candles = append(candles, &domain.Candle{
			Key:         key,
			TimestampMs: ts,
			Open:        open,
			High:        high,
			Low:         low,
			Close:       close,
			Volume:      volume,
		})
	}
	return candles
}

func keySeed(key domain.MarketKey) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key.String()))
	return h.Sum32()
}
