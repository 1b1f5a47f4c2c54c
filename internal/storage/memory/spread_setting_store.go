package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/storage"
)

// SpreadSettingStore is an in-memory implementation of storage.SpreadSettingStore.
type SpreadSettingStore struct {
	mu       sync.RWMutex
	settings map[string]*domain.SpreadSetting
}

// NewSpreadSettingStore creates a new in-memory spread setting store.
func NewSpreadSettingStore() *SpreadSettingStore {
	return &SpreadSettingStore{
		settings: make(map[string]*domain.SpreadSetting),
	}
}

// Insert adds a setting. Returns ErrDuplicateKey if id exists.
func (s *SpreadSettingStore) Insert(_ context.Context, setting *domain.SpreadSetting) error {
	if err := validateSpread(setting); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.settings[setting.ID]; exists {
		return storage.ErrDuplicateKey
	}
	s.settings[setting.ID] = copySpreadSetting(setting)
	return nil
}

// Update replaces a setting by id. Returns ErrNotFound if not exists.
func (s *SpreadSettingStore) Update(_ context.Context, setting *domain.SpreadSetting) error {
	if err := validateSpread(setting); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, exists := s.settings[setting.ID]
	if !exists {
		return storage.ErrNotFound
	}
	updated := copySpreadSetting(setting)
	updated.CreatedAt = cur.CreatedAt
	s.settings[setting.ID] = updated
	return nil
}

// GetActive returns active settings for (product, pair) ordered by created_at ASC.
func (s *SpreadSettingStore) GetActive(_ context.Context, product domain.ProductType, pairID string) ([]*domain.SpreadSetting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SpreadSetting
	for _, setting := range s.settings {
		if setting.IsActive && setting.ProductType == product && setting.CurrencyPairID == pairID {
			result = append(result, copySpreadSetting(setting))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func validateSpread(s *domain.SpreadSetting) error {
	if s == nil || s.ID == "" || s.CurrencyPairID == "" || !s.ProductType.IsValid() {
		return storage.ErrInvalidInput
	}
	return nil
}

func copySpreadSetting(s *domain.SpreadSetting) *domain.SpreadSetting {
	c := *s
	if s.GroupType != nil {
		v := *s.GroupType
		c.GroupType = &v
	}
	c.GroupValue = copyString(s.GroupValue)
	if s.TenorSpreads != nil {
		c.TenorSpreads = make(map[domain.Tenor]decimal.Decimal, len(s.TenorSpreads))
		for k, v := range s.TenorSpreads {
			c.TenorSpreads[k] = v
		}
	}
	return &c
}

var _ storage.SpreadSettingStore = (*SpreadSettingStore)(nil)
