package memory

import (
	"context"
	"sync"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/storage"
)

type rateKey struct {
	pairID string
	source string
}

// MarketRateStore is an in-memory implementation of storage.MarketRateStore.
type MarketRateStore struct {
	mu     sync.RWMutex
	latest map[rateKey]*domain.MarketRate
}

// NewMarketRateStore creates a new in-memory market rate store.
func NewMarketRateStore() *MarketRateStore {
	return &MarketRateStore{
		latest: make(map[rateKey]*domain.MarketRate),
	}
}

// Upsert stores r unless a rate with a later timestamp is already held.
func (s *MarketRateStore) Upsert(_ context.Context, r *domain.MarketRate) error {
	if r == nil || r.CurrencyPairID == "" || r.Source == "" {
		return storage.ErrInvalidInput
	}

	key := rateKey{pairID: r.CurrencyPairID, source: r.Source}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.latest[key]; ok && cur.Timestamp.After(r.Timestamp) {
		return nil
	}
	rateCopy := *r
	s.latest[key] = &rateCopy
	return nil
}

// GetLatest returns the latest rate for (pair, source). Returns ErrNotFound if none.
func (s *MarketRateStore) GetLatest(_ context.Context, pairID, source string) (*domain.MarketRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.latest[rateKey{pairID: pairID, source: source}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	rateCopy := *r
	return &rateCopy, nil
}

var _ storage.MarketRateStore = (*MarketRateStore)(nil)
