package memory

import (
	"context"
	"sort"
	"sync"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/storage"
)

// OnTnRateStore is an in-memory implementation of storage.OnTnRateStore.
type OnTnRateStore struct {
	mu     sync.RWMutex
	byPair map[string][]*domain.OnTnRate
	ids    map[string]struct{}
}

// NewOnTnRateStore creates a new in-memory ON/TN rate store.
func NewOnTnRateStore() *OnTnRateStore {
	return &OnTnRateStore{
		byPair: make(map[string][]*domain.OnTnRate),
		ids:    make(map[string]struct{}),
	}
}

// Save appends a rate. Tenor must be ON or TN.
func (s *OnTnRateStore) Save(_ context.Context, r *domain.OnTnRate) error {
	if r == nil || r.ID == "" || r.CurrencyPairID == "" || !r.Tenor.IsPreSpot() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[r.ID]; exists {
		return storage.ErrDuplicateKey
	}

	rateCopy := *r
	s.ids[r.ID] = struct{}{}
	s.byPair[r.CurrencyPairID] = append(s.byPair[r.CurrencyPairID], &rateCopy)
	return nil
}

// GetByCurrencyPair returns all rows for a pair ordered by uploaded_at ASC.
func (s *OnTnRateStore) GetByCurrencyPair(_ context.Context, pairID string) ([]*domain.OnTnRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.byPair[pairID]
	result := make([]*domain.OnTnRate, 0, len(rows))
	for _, r := range rows {
		rateCopy := *r
		result = append(result, &rateCopy)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].UploadedAt.Before(result[j].UploadedAt)
	})
	return result, nil
}

var _ storage.OnTnRateStore = (*OnTnRateStore)(nil)
