package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/storage"
)

// MetricRecordStore is an in-memory implementation of storage.MetricRecordStore.
type MetricRecordStore struct {
	mu   sync.RWMutex
	data map[string]*domain.MetricRecord // keyed by (market, window start)
}

// NewMetricRecordStore creates a new in-memory metric record store.
func NewMetricRecordStore() *MetricRecordStore {
	return &MetricRecordStore{data: make(map[string]*domain.MetricRecord)}
}

func metricKey(key domain.MarketKey, windowStartMs int64) string {
	return fmt.Sprintf("%s|%d", key, windowStartMs)
}

// InsertBulk adds multiple records. Fails entire batch on duplicate.
func (s *MetricRecordStore) InsertBulk(_ context.Context, records []*domain.MetricRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.Key.Exchange == "" {
			return storage.ErrInvalidInput
		}
		k := metricKey(r.Key, r.Window.StartMs)
		if _, exists := s.data[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	for _, r := range records {
		recordCopy := *r
		s.data[metricKey(r.Key, r.Window.StartMs)] = &recordCopy
	}
	return nil
}

// GetByMarket retrieves all records for a market, ordered by window start ASC.
func (s *MetricRecordStore) GetByMarket(_ context.Context, key domain.MarketKey) ([]*domain.MetricRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MetricRecord
	for _, r := range s.data {
		if r.Key == key {
			recordCopy := *r
			result = append(result, &recordCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Window.StartMs < result[j].Window.StartMs
	})
	return result, nil
}

var _ storage.MetricRecordStore = (*MetricRecordStore)(nil)
