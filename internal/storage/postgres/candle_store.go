package postgres

import (
	"context"
	"fmt"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/storage"
)

// CandleStore implements storage.CandleStore over a single candles table.
// One row per (exchange, base, quote, instrument_type, ts_ms) bar.
type CandleStore struct {
	pool *Pool
}

// NewCandleStore creates a new CandleStore.
func NewCandleStore(pool *Pool) *CandleStore {
	return &CandleStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

// Insert adds one bar. Returns ErrDuplicateKey when the bar already exists.
// Used by backfill tooling and tests; the analytics engine only reads.
func (s *CandleStore) Insert(ctx context.Context, c *domain.Candle) error {
	query := `
		INSERT INTO candles (
			exchange, base, quote, instrument_type, ts_ms, open, high, low, close, volume
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		c.Key.Exchange,
		c.Key.Base,
		c.Key.Quote,
		string(c.Key.InstrumentType),
		c.TimestampMs,
		c.Open,
		c.High,
		c.Low,
		c.Close,
		c.Volume,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert candle: %w", err)
	}
	return nil
}

// InsertBulk adds multiple bars atomically. Fails entire batch on any duplicate.
func (s *CandleStore) InsertBulk(ctx context.Context, candles []*domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO candles (
			exchange, base, quote, instrument_type, ts_ms, open, high, low, close, volume
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for _, c := range candles {
		_, err := tx.Exec(ctx, query,
			c.Key.Exchange,
			c.Key.Base,
			c.Key.Quote,
			string(c.Key.InstrumentType),
			c.TimestampMs,
			c.Open,
			c.High,
			c.Low,
			c.Close,
			c.Volume,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert candle in bulk: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ListMarkets returns every market key recorded for an exchange, sorted.
// Empty exchange lists all markets.
func (s *CandleStore) ListMarkets(ctx context.Context, exchange string) ([]domain.MarketKey, error) {
	query := `
		SELECT DISTINCT exchange, base, quote, instrument_type
		FROM candles
		WHERE $1 = '' OR exchange = $1
		ORDER BY exchange, base, quote, instrument_type
	`

	rows, err := s.pool.Query(ctx, query, exchange)
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}
	defer rows.Close()

	var keys []domain.MarketKey
	for rows.Next() {
		var key domain.MarketKey
		var instrumentType string
		if err := rows.Scan(&key.Exchange, &key.Base, &key.Quote, &instrumentType); err != nil {
			return nil, fmt.Errorf("scan market key: %w", err)
		}
		key.InstrumentType = domain.InstrumentType(instrumentType)
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate market keys: %w", err)
	}
	return keys, nil
}

// GetRange retrieves bars with open timestamps within [startMs, endMs],
// sorted ascending.
func (s *CandleStore) GetRange(ctx context.Context, key domain.MarketKey, startMs, endMs int64) ([]*domain.Candle, error) {
	exists, err := s.marketExists(ctx, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, storage.ErrNoSuchMarket
	}

	query := `
		SELECT ts_ms, open, high, low, close, volume
		FROM candles
		WHERE exchange = $1 AND base = $2 AND quote = $3 AND instrument_type = $4
		  AND ts_ms >= $5 AND ts_ms <= $6
		ORDER BY ts_ms ASC
	`

	rows, err := s.pool.Query(ctx, query,
		key.Exchange, key.Base, key.Quote, string(key.InstrumentType), startMs, endMs)
	if err != nil {
		return nil, fmt.Errorf("query candles: %w", err)
	}
	defer rows.Close()

	var candles []*domain.Candle
	for rows.Next() {
		c := &domain.Candle{Key: key}
		if err := rows.Scan(&c.TimestampMs, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candles: %w", err)
	}
	if len(candles) == 0 {
		return nil, storage.ErrNoDataInRange
	}
	return candles, nil
}

func (s *CandleStore) marketExists(ctx context.Context, key domain.MarketKey) (bool, error) {
	query := `
		SELECT 1 FROM candles
		WHERE exchange = $1 AND base = $2 AND quote = $3 AND instrument_type = $4
		LIMIT 1
	`

	var one int
	err := s.pool.QueryRow(ctx, query,
		key.Exchange, key.Base, key.Quote, string(key.InstrumentType)).Scan(&one)
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("check market exists: %w", err)
	}
	return true, nil
}
