package clickhouse

import (
	"context"
	"fmt"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/storage"
)

// DeviationScoreStore implements storage.DeviationScoreStore using ClickHouse.
type DeviationScoreStore struct {
	conn *Conn
}

// NewDeviationScoreStore creates a new DeviationScoreStore.
func NewDeviationScoreStore(conn *Conn) *DeviationScoreStore {
	return &DeviationScoreStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DeviationScoreStore = (*DeviationScoreStore)(nil)

// InsertBulk adds multiple scores. Fails entire batch on duplicate
// (market, metric kind).
func (s *DeviationScoreStore) InsertBulk(ctx context.Context, scores []*domain.DeviationScore) error {
	if len(scores) == 0 {
		return nil
	}

	type scKey struct {
		market string
		kind   domain.MetricKind
	}
	seen := make(map[scKey]struct{})
	for _, sc := range scores {
		k := scKey{sc.Key.String(), sc.MetricKind}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, sc := range scores {
		exists, err := s.exists(ctx, sc.Key, sc.MetricKind)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO deviation_scores (
			exchange, base, quote, instrument_type, metric_kind,
			observed, z_score, direction
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, sc := range scores {
		err = batch.Append(
			sc.Key.Exchange, sc.Key.Base, sc.Key.Quote, string(sc.Key.InstrumentType),
			string(sc.MetricKind), sc.Observed, sc.ZScore, string(sc.Direction),
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

// GetAll retrieves all scores, ordered by market then metric kind.
func (s *DeviationScoreStore) GetAll(ctx context.Context) ([]*domain.DeviationScore, error) {
	query := `
		SELECT exchange, base, quote, instrument_type, metric_kind,
		       observed, z_score, direction
		FROM deviation_scores
		ORDER BY exchange, base, quote, instrument_type, metric_kind
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query deviation scores: %w", err)
	}
	defer rows.Close()

	var scores []*domain.DeviationScore
	for rows.Next() {
		sc := &domain.DeviationScore{}
		var instrumentType, metricKind, direction string
		if err := rows.Scan(
			&sc.Key.Exchange, &sc.Key.Base, &sc.Key.Quote, &instrumentType,
			&metricKind, &sc.Observed, &sc.ZScore, &direction,
		); err != nil {
			return nil, fmt.Errorf("scan deviation score: %w", err)
		}
		sc.Key.InstrumentType = domain.InstrumentType(instrumentType)
		sc.MetricKind = domain.MetricKind(metricKind)
		sc.Direction = domain.Direction(direction)
		scores = append(scores, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deviation scores: %w", err)
	}
	return scores, nil
}

func (s *DeviationScoreStore) exists(ctx context.Context, key domain.MarketKey, kind domain.MetricKind) (bool, error) {
	query := `
		SELECT count() FROM deviation_scores
		WHERE exchange = ? AND base = ? AND quote = ? AND instrument_type = ?
		  AND metric_kind = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query,
		key.Exchange, key.Base, key.Quote, string(key.InstrumentType), string(kind),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
