package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/storage"
)

var btcSpot = domain.MarketKey{
	Exchange: "binance", Base: "btc", Quote: "usdt",
	InstrumentType: domain.InstrumentSpot,
}

func TestCandleStore_GetRange(t *testing.T) {
	ctx := context.Background()
	store := NewCandleStore()
	store.Load(btcSpot, []*domain.Candle{
		{TimestampMs: 120_000, Open: 3, High: 3, Low: 3, Close: 3},
		{TimestampMs: 0, Open: 1, High: 1, Low: 1, Close: 1},
		{TimestampMs: 60_000, Open: 2, High: 2, Low: 2, Close: 2},
	})

	candles, err := store.GetRange(ctx, btcSpot, 0, 60_000)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	// Sorted ascending regardless of load order.
	assert.Equal(t, int64(0), candles[0].TimestampMs)
	assert.Equal(t, int64(60_000), candles[1].TimestampMs)
	assert.Equal(t, btcSpot, candles[0].Key)
}

func TestCandleStore_UnknownMarket(t *testing.T) {
	store := NewCandleStore()

	_, err := store.GetRange(context.Background(), btcSpot, 0, 1)
	require.ErrorIs(t, err, storage.ErrNoSuchMarket)
}

func TestCandleStore_NoDataInRange(t *testing.T) {
	store := NewCandleStore()
	store.Load(btcSpot, []*domain.Candle{{TimestampMs: 0, Open: 1, High: 1, Low: 1, Close: 1}})

	_, err := store.GetRange(context.Background(), btcSpot, 1_000_000, 2_000_000)
	require.ErrorIs(t, err, storage.ErrNoDataInRange)
}

func TestCandleStore_ListMarketsFiltersByExchange(t *testing.T) {
	ctx := context.Background()
	store := NewCandleStore()
	ethSpot := domain.MarketKey{Exchange: "kraken", Base: "eth", Quote: "usd", InstrumentType: domain.InstrumentSpot}
	store.Load(btcSpot, nil)
	store.Load(ethSpot, nil)

	binance, err := store.ListMarkets(ctx, "binance")
	require.NoError(t, err)
	require.Len(t, binance, 1)
	assert.Equal(t, btcSpot, binance[0])

	all, err := store.ListMarkets(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCandleStore_GetRangeReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewCandleStore()
	store.Load(btcSpot, []*domain.Candle{{TimestampMs: 0, Open: 1, High: 1, Low: 1, Close: 1}})

	first, err := store.GetRange(ctx, btcSpot, 0, 1)
	require.NoError(t, err)
	first[0].Open = 999

	second, err := store.GetRange(ctx, btcSpot, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, second[0].Open, "stored bars must be immutable to callers")
}

func TestMetricRecordStore_DuplicateBatchRejected(t *testing.T) {
	ctx := context.Background()
	store := NewMetricRecordStore()
	rec := &domain.MetricRecord{Key: btcSpot, Window: domain.Window{StartMs: 0, EndMs: 1}}

	require.NoError(t, store.InsertBulk(ctx, []*domain.MetricRecord{rec}))
	err := store.InsertBulk(ctx, []*domain.MetricRecord{rec})
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestDeviationScoreStore_GetAllOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewDeviationScoreStore()
	ethSpot := domain.MarketKey{Exchange: "binance", Base: "eth", Quote: "usdt", InstrumentType: domain.InstrumentSpot}

	require.NoError(t, store.InsertBulk(ctx, []*domain.DeviationScore{
		{Key: ethSpot, MetricKind: domain.MetricRange, ZScore: 2},
		{Key: btcSpot, MetricKind: domain.MetricRange, ZScore: 8},
		{Key: btcSpot, MetricKind: domain.MetricDrop, ZScore: -8},
	}))

	scores, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Equal(t, "btc", scores[0].Key.Base)
	assert.Equal(t, domain.MetricDrop, scores[0].MetricKind)
	assert.Equal(t, "eth", scores[2].Key.Base)
}
