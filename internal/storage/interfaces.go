package storage

import (
	"context"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
)

// CandleStore is the read-only accessor over pre-recorded OHLCV history.
// Implementations return bars sorted ascending by open timestamp with no gap
// filling; gap detection is the caller's responsibility.
type CandleStore interface {
	// ListMarkets returns every market key recorded for an exchange.
	// Empty exchange lists all markets across exchanges.
	ListMarkets(ctx context.Context, exchange string) ([]domain.MarketKey, error)

	// GetRange retrieves bars for a series with open timestamps within
	// [startMs, endMs] inclusive. Returns ErrNoSuchMarket for an unknown
	// key and ErrNoDataInRange when the series holds no bars in range.
	GetRange(ctx context.Context, key domain.MarketKey, startMs, endMs int64) ([]*domain.Candle, error)
}

// MetricRecordStore persists per-period metric records (the historical
// corpus behind reference distributions).
type MetricRecordStore interface {
	// InsertBulk adds multiple records. Fails the entire batch on a
	// duplicate (market, window start) key.
	InsertBulk(ctx context.Context, records []*domain.MetricRecord) error

	// GetByMarket retrieves all records for a market, ordered by window
	// start ASC.
	GetByMarket(ctx context.Context, key domain.MarketKey) ([]*domain.MetricRecord, error)
}

// DeviationScoreStore persists target-day deviation scores.
type DeviationScoreStore interface {
	// InsertBulk adds multiple scores. Fails the entire batch on a
	// duplicate (market, metric kind) key.
	InsertBulk(ctx context.Context, scores []*domain.DeviationScore) error

	// GetAll retrieves all scores, ordered by market then metric kind.
	GetAll(ctx context.Context) ([]*domain.DeviationScore, error)
}
