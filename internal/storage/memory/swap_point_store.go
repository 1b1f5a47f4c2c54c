package memory

import (
	"context"
	"sort"
	"sync"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/storage"
)

// SwapPointStore is an in-memory implementation of storage.SwapPointStore.
type SwapPointStore struct {
	mu   sync.RWMutex
	ids  map[string]struct{}
	rows []*domain.SwapPoint // append order
}

// NewSwapPointStore creates a new in-memory swap point store.
func NewSwapPointStore() *SwapPointStore {
	return &SwapPointStore{
		ids: make(map[string]struct{}),
	}
}

// Save inserts p and supersedes the current row for the same (pair, tenor).
func (s *SwapPointStore) Save(_ context.Context, p *domain.SwapPoint) error {
	if p == nil || p.ID == "" || p.CurrencyPairID == "" || p.Tenor == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[p.ID]; exists {
		return storage.ErrDuplicateKey
	}

	for _, row := range s.rows {
		if row.CurrencyPairID == p.CurrencyPairID && row.Tenor == p.Tenor && row.SupersededAt == nil {
			at := p.UploadedAt
			row.SupersededAt = &at
		}
	}

	s.ids[p.ID] = struct{}{}
	s.rows = append(s.rows, copySwapPoint(p))
	return nil
}

// GetByCurrencyPair returns current rows for a pair ordered by settlement date ASC.
func (s *SwapPointStore) GetByCurrencyPair(_ context.Context, pairID string) ([]*domain.SwapPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SwapPoint
	for _, row := range s.rows {
		if row.CurrencyPairID == pairID && row.SupersededAt == nil {
			result = append(result, copySwapPoint(row))
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].SettlementDate.Before(result[j].SettlementDate)
	})
	return result, nil
}

// GetHistory returns every row for (pair, tenor) ordered by uploaded_at ASC.
func (s *SwapPointStore) GetHistory(_ context.Context, pairID string, tenor domain.Tenor) ([]*domain.SwapPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SwapPoint
	for _, row := range s.rows {
		if row.CurrencyPairID == pairID && row.Tenor == tenor {
			result = append(result, copySwapPoint(row))
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].UploadedAt.Before(result[j].UploadedAt)
	})
	return result, nil
}

func copySwapPoint(p *domain.SwapPoint) *domain.SwapPoint {
	c := *p
	if p.BidPrice != nil {
		v := *p.BidPrice
		c.BidPrice = &v
	}
	if p.AskPrice != nil {
		v := *p.AskPrice
		c.AskPrice = &v
	}
	if p.SupersededAt != nil {
		v := *p.SupersededAt
		c.SupersededAt = &v
	}
	return &c
}

var _ storage.SwapPointStore = (*SwapPointStore)(nil)
