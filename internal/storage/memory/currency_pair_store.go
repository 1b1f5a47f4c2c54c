package memory

import (
	"context"
	"sort"
	"sync"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/storage"
)

// CurrencyPairStore is an in-memory implementation of storage.CurrencyPairStore.
type CurrencyPairStore struct {
	mu       sync.RWMutex
	byID     map[string]*domain.CurrencyPair
	bySymbol map[string]*domain.CurrencyPair
}

// NewCurrencyPairStore creates a new in-memory currency pair store.
func NewCurrencyPairStore() *CurrencyPairStore {
	return &CurrencyPairStore{
		byID:     make(map[string]*domain.CurrencyPair),
		bySymbol: make(map[string]*domain.CurrencyPair),
	}
}

// Insert adds a new pair. Returns ErrDuplicateKey if id or symbol already exists.
func (s *CurrencyPairStore) Insert(_ context.Context, p *domain.CurrencyPair) error {
	if p == nil || p.ID == "" || p.Symbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[p.ID]; exists {
		return storage.ErrDuplicateKey
	}
	if _, exists := s.bySymbol[p.Symbol]; exists {
		return storage.ErrDuplicateKey
	}

	pairCopy := *p
	s.byID[p.ID] = &pairCopy
	s.bySymbol[p.Symbol] = &pairCopy
	return nil
}

// GetByID retrieves a pair by id. Returns ErrNotFound if not exists.
func (s *CurrencyPairStore) GetByID(_ context.Context, id string) (*domain.CurrencyPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.byID[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	pairCopy := *p
	return &pairCopy, nil
}

// GetBySymbol retrieves a pair by symbol. Returns ErrNotFound if not exists.
func (s *CurrencyPairStore) GetBySymbol(_ context.Context, symbol string) (*domain.CurrencyPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.bySymbol[symbol]
	if !exists {
		return nil, storage.ErrNotFound
	}
	pairCopy := *p
	return &pairCopy, nil
}

// ListActive returns active pairs ordered by symbol.
func (s *CurrencyPairStore) ListActive(_ context.Context) ([]*domain.CurrencyPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.CurrencyPair, 0, len(s.byID))
	for _, p := range s.byID {
		if !p.IsActive {
			continue
		}
		pairCopy := *p
		result = append(result, &pairCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})
	return result, nil
}

var _ storage.CurrencyPairStore = (*CurrencyPairStore)(nil)
