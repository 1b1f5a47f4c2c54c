package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/storage"
)

// MarketRateHistoryStore is an in-memory implementation of storage.MarketRateHistoryStore.
type MarketRateHistoryStore struct {
	mu     sync.RWMutex
	byPair map[string][]*domain.MarketRate
}

// NewMarketRateHistoryStore creates a new in-memory tick history store.
func NewMarketRateHistoryStore() *MarketRateHistoryStore {
	return &MarketRateHistoryStore{
		byPair: make(map[string][]*domain.MarketRate),
	}
}

// InsertBulk appends ticks. The batch is rejected whole if any tick is invalid.
func (s *MarketRateHistoryStore) InsertBulk(_ context.Context, rates []*domain.MarketRate) error {
	if len(rates) == 0 {
		return nil
	}
	for _, r := range rates {
		if r == nil || r.CurrencyPairID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rates {
		rateCopy := *r
		s.byPair[r.CurrencyPairID] = append(s.byPair[r.CurrencyPairID], &rateCopy)
	}
	return nil
}

// GetByTimeRange returns ticks for a pair within [start, end] ordered by timestamp ASC.
func (s *MarketRateHistoryStore) GetByTimeRange(_ context.Context, pairID string, start, end time.Time) ([]*domain.MarketRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MarketRate
	for _, r := range s.byPair[pairID] {
		if r.Timestamp.Before(start) || r.Timestamp.After(end) {
			continue
		}
		rateCopy := *r
		result = append(result, &rateCopy)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

var _ storage.MarketRateHistoryStore = (*MarketRateHistoryStore)(nil)
