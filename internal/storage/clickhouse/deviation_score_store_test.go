package clickhouse_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/storage"
	chstore "github.com/Jamster187/oct10-black-swan-analysis/internal/storage/clickhouse"
)

func TestDeviationScoreStore_InsertBulkAndGetAll(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewDeviationScoreStore(conn)
	ctx := context.Background()

	binance := domain.MarketKey{
		Exchange:       "binance",
		Base:           "btc",
		Quote:          "usdt",
		InstrumentType: domain.InstrumentSpot,
	}
	bybit := domain.MarketKey{
		Exchange:       "bybit",
		Base:           "btc",
		Quote:          "usdt",
		InstrumentType: domain.InstrumentPerpetual,
	}

	require.NoError(t, store.InsertBulk(ctx, []*domain.DeviationScore{
		{Key: bybit, MetricKind: domain.MetricDrop, Observed: -0.18, ZScore: -9.4, Direction: domain.DirectionBelow},
		{Key: binance, MetricKind: domain.MetricRange, Observed: 0.21, ZScore: 7.2, Direction: domain.DirectionAbove},
		{Key: binance, MetricKind: domain.MetricDrop, Observed: -0.15, ZScore: -8.1, Direction: domain.DirectionBelow},
	}))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Ordered by market, then metric kind.
	assert.Equal(t, binance, got[0].Key)
	assert.Equal(t, domain.MetricDrop, got[0].MetricKind)
	assert.Equal(t, domain.MetricRange, got[1].MetricKind)
	assert.Equal(t, bybit, got[2].Key)

	assert.Equal(t, -8.1, got[0].ZScore)
	assert.Equal(t, domain.DirectionBelow, got[0].Direction)
}

func TestDeviationScoreStore_InfinitySentinelRoundTrip(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewDeviationScoreStore(conn)
	ctx := context.Background()

	key := domain.MarketKey{
		Exchange:       "okx",
		Base:           "eth",
		Quote:          "usdt",
		InstrumentType: domain.InstrumentSpot,
	}

	require.NoError(t, store.InsertBulk(ctx, []*domain.DeviationScore{
		{Key: key, MetricKind: domain.MetricDrop, Observed: -0.02, ZScore: math.Inf(-1), Direction: domain.DirectionBelow},
	}))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, math.IsInf(got[0].ZScore, -1))
	assert.True(t, got[0].Degenerate())
}

func TestDeviationScoreStore_InsertBulk_Duplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewDeviationScoreStore(conn)
	ctx := context.Background()

	key := domain.MarketKey{
		Exchange:       "kraken",
		Base:           "btc",
		Quote:          "usd",
		InstrumentType: domain.InstrumentSpot,
	}

	err := store.InsertBulk(ctx, []*domain.DeviationScore{
		{Key: key, MetricKind: domain.MetricDrop, Observed: -0.1, ZScore: -5, Direction: domain.DirectionBelow},
		{Key: key, MetricKind: domain.MetricDrop, Observed: -0.2, ZScore: -6, Direction: domain.DirectionBelow},
	})
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	require.NoError(t, store.InsertBulk(ctx, []*domain.DeviationScore{
		{Key: key, MetricKind: domain.MetricDrop, Observed: -0.1, ZScore: -5, Direction: domain.DirectionBelow},
	}))

	// Re-inserting the same (market, kind) fails against stored rows too.
	err = store.InsertBulk(ctx, []*domain.DeviationScore{
		{Key: key, MetricKind: domain.MetricDrop, Observed: -0.3, ZScore: -7, Direction: domain.DirectionBelow},
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}
