// Package memory provides in-memory store implementations used by tests and
// fixture-backed CLI runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/storage"
)

// CandleStore is an in-memory implementation of storage.CandleStore.
type CandleStore struct {
	mu     sync.RWMutex
	series map[string][]*domain.Candle // keyed by MarketKey.String(), sorted ASC
	keys   map[string]domain.MarketKey
}

// NewCandleStore creates an empty in-memory candle store.
func NewCandleStore() *CandleStore {
	return &CandleStore{
		series: make(map[string][]*domain.Candle),
		keys:   make(map[string]domain.MarketKey),
	}
}

// Load replaces the series for a key with the given bars. Bars are copied
// and sorted ascending by timestamp.
func (s *CandleStore) Load(key domain.MarketKey, candles []*domain.Candle) {
	sorted := make([]*domain.Candle, len(candles))
	for i, c := range candles {
		candleCopy := *c
		candleCopy.Key = key
		sorted[i] = &candleCopy
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].TimestampMs < sorted[j].TimestampMs
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.series[key.String()] = sorted
	s.keys[key.String()] = key
}

// ListMarkets returns every market key recorded for an exchange, sorted for
// deterministic iteration. Empty exchange lists all markets.
func (s *CandleStore) ListMarkets(_ context.Context, exchange string) ([]domain.MarketKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.MarketKey
	for _, key := range s.keys {
		if exchange == "" || key.Exchange == exchange {
			result = append(result, key)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].String() < result[j].String()
	})
	return result, nil
}

// GetRange retrieves bars with open timestamps within [startMs, endMs].
func (s *CandleStore) GetRange(_ context.Context, key domain.MarketKey, startMs, endMs int64) ([]*domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.series[key.String()]
	if !ok {
		return nil, storage.ErrNoSuchMarket
	}

	var result []*domain.Candle
	for _, c := range series {
		if c.TimestampMs >= startMs && c.TimestampMs <= endMs {
			candleCopy := *c
			result = append(result, &candleCopy)
		}
	}
	if len(result) == 0 {
		return nil, storage.ErrNoDataInRange
	}
	return result, nil
}

var _ storage.CandleStore = (*CandleStore)(nil)
