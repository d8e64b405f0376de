package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/storage"
)

// DeviationScoreStore is an in-memory implementation of storage.DeviationScoreStore.
type DeviationScoreStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DeviationScore // keyed by (market, metric kind)
}

// NewDeviationScoreStore creates a new in-memory deviation score store.
func NewDeviationScoreStore() *DeviationScoreStore {
	return &DeviationScoreStore{data: make(map[string]*domain.DeviationScore)}
}

func scoreKey(key domain.MarketKey, kind domain.MetricKind) string {
	return fmt.Sprintf("%s|%s", key, kind)
}

// InsertBulk adds multiple scores. Fails entire batch on duplicate.
func (s *DeviationScoreStore) InsertBulk(_ context.Context, scores []*domain.DeviationScore) error {
	if len(scores) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(scores))
	for _, sc := range scores {
		if sc == nil || sc.Key.Exchange == "" || sc.MetricKind == "" {
			return storage.ErrInvalidInput
		}
		k := scoreKey(sc.Key, sc.MetricKind)
		if _, exists := s.data[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	for _, sc := range scores {
		scoreCopy := *sc
		s.data[scoreKey(sc.Key, sc.MetricKind)] = &scoreCopy
	}
	return nil
}

// GetAll retrieves all scores, ordered by market then metric kind.
func (s *DeviationScoreStore) GetAll(_ context.Context) ([]*domain.DeviationScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.DeviationScore, 0, len(s.data))
	for _, sc := range s.data {
		scoreCopy := *sc
		result = append(result, &scoreCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Key.String() != result[j].Key.String() {
			return result[i].Key.String() < result[j].Key.String()
		}
		return result[i].MetricKind < result[j].MetricKind
	})
	return result, nil
}

var _ storage.DeviationScoreStore = (*DeviationScoreStore)(nil)
