package clickhouse

import (
	"context"
	"fmt"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/storage"
)

// MetricRecordStore implements storage.MetricRecordStore using ClickHouse.
type MetricRecordStore struct {
	conn *Conn
}

// NewMetricRecordStore creates a new MetricRecordStore.
func NewMetricRecordStore(conn *Conn) *MetricRecordStore {
	return &MetricRecordStore{conn: conn}
}

// Compile-time interface check.
var _ storage.MetricRecordStore = (*MetricRecordStore)(nil)

// InsertBulk adds multiple records. Fails entire batch on duplicate
// (market, window start).
func (s *MetricRecordStore) InsertBulk(ctx context.Context, records []*domain.MetricRecord) error {
	if len(records) == 0 {
		return nil
	}

	// Intra-batch duplicates; MergeTree does not enforce uniqueness.
	type recKey struct {
		market  string
		startMs int64
	}
	seen := make(map[recKey]struct{})
	for _, r := range records {
		k := recKey{r.Key.String(), r.Window.StartMs}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, r := range records {
		exists, err := s.exists(ctx, r.Key, r.Window.StartMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO metric_records (
			exchange, base, quote, instrument_type,
			window_start_ms, window_end_ms,
			drop_pct, pump_pct, range_pct, realized_vol, bar_count
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err = batch.Append(
			r.Key.Exchange, r.Key.Base, r.Key.Quote, string(r.Key.InstrumentType),
			r.Window.StartMs, r.Window.EndMs,
			r.DropPct, r.PumpPct, r.RangePct, r.RealizedVol, int32(r.BarCount),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByMarket retrieves all records for a market, ordered by window start ASC.
func (s *MetricRecordStore) GetByMarket(ctx context.Context, key domain.MarketKey) ([]*domain.MetricRecord, error) {
	query := `
		SELECT window_start_ms, window_end_ms,
		       drop_pct, pump_pct, range_pct, realized_vol, bar_count
		FROM metric_records
		WHERE exchange = ? AND base = ? AND quote = ? AND instrument_type = ?
		ORDER BY window_start_ms ASC
	`

	rows, err := s.conn.Query(ctx, query,
		key.Exchange, key.Base, key.Quote, string(key.InstrumentType))
	if err != nil {
		return nil, fmt.Errorf("query metric records: %w", err)
	}
	defer rows.Close()

	var records []*domain.MetricRecord
	for rows.Next() {
		r := &domain.MetricRecord{Key: key}
		var barCount int32
		if err := rows.Scan(
			&r.Window.StartMs, &r.Window.EndMs,
			&r.DropPct, &r.PumpPct, &r.RangePct, &r.RealizedVol, &barCount,
		); err != nil {
			return nil, fmt.Errorf("scan metric record: %w", err)
		}
		r.BarCount = int(barCount)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metric records: %w", err)
	}
	return records, nil
}

func (s *MetricRecordStore) exists(ctx context.Context, key domain.MarketKey, windowStartMs int64) (bool, error) {
	query := `
		SELECT count() FROM metric_records
		WHERE exchange = ? AND base = ? AND quote = ? AND instrument_type = ?
		  AND window_start_ms = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query,
		key.Exchange, key.Base, key.Quote, string(key.InstrumentType), windowStartMs,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
