package storage

import (
	"context"
	"time"

	"fx-forward-desk/internal/domain"
)

// CurrencyPairStore provides access to currency_pairs storage.
type CurrencyPairStore interface {
	// Insert adds a new pair. Returns ErrDuplicateKey if id or symbol exists.
	Insert(ctx context.Context, p *domain.CurrencyPair) error

	// GetByID retrieves a pair by id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.CurrencyPair, error)

	// GetBySymbol retrieves a pair by symbol such as "USD/KRW". Returns ErrNotFound if not exists.
	GetBySymbol(ctx context.Context, symbol string) (*domain.CurrencyPair, error)

	// ListActive returns active pairs ordered by symbol.
	ListActive(ctx context.Context) ([]*domain.CurrencyPair, error)
}

// UserStore provides read access to users for spread resolution.
type UserStore interface {
	// Insert adds a new user. Returns ErrDuplicateKey if id or username exists.
	Insert(ctx context.Context, u *domain.User) error

	// GetByID retrieves a user by id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// SwapPointStore provides access to swap_points storage.
// Rows are never deleted; saving a tenor supersedes the previous row for it.
type SwapPointStore interface {
	// Save inserts p and marks the current row for (pair, tenor) superseded at p.UploadedAt.
	Save(ctx context.Context, p *domain.SwapPoint) error

	// GetByCurrencyPair returns current rows for a pair ordered by settlement date ASC.
	GetByCurrencyPair(ctx context.Context, pairID string) ([]*domain.SwapPoint, error)

	// GetHistory returns every row for (pair, tenor), superseded ones included,
	// ordered by uploaded_at ASC.
	GetHistory(ctx context.Context, pairID string, tenor domain.Tenor) ([]*domain.SwapPoint, error)
}

// OnTnRateStore provides access to on_tn_rates storage.
type OnTnRateStore interface {
	// Save appends a rate. Tenor must be ON or TN.
	Save(ctx context.Context, r *domain.OnTnRate) error

	// GetByCurrencyPair returns all rows for a pair ordered by uploaded_at ASC.
	GetByCurrencyPair(ctx context.Context, pairID string) ([]*domain.OnTnRate, error)
}

// MarketRateStore holds the live base rate per (pair, source).
type MarketRateStore interface {
	// Upsert stores r as the latest rate for its (pair, source) unless a newer one is stored.
	Upsert(ctx context.Context, r *domain.MarketRate) error

	// GetLatest returns the latest rate for (pair, source). Returns ErrNotFound if none.
	GetLatest(ctx context.Context, pairID, source string) (*domain.MarketRate, error)
}

// SpreadSettingStore provides access to spread_settings storage.
type SpreadSettingStore interface {
	// Insert adds a setting. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, s *domain.SpreadSetting) error

	// Update replaces a setting by id. Returns ErrNotFound if not exists.
	Update(ctx context.Context, s *domain.SpreadSetting) error

	// GetActive returns active settings for (product, pair) ordered by created_at ASC.
	GetActive(ctx context.Context, product domain.ProductType, pairID string) ([]*domain.SpreadSetting, error)
}

// MarketRateHistoryStore keeps every consumed tick for charting and audit.
type MarketRateHistoryStore interface {
	// InsertBulk appends ticks.
	InsertBulk(ctx context.Context, rates []*domain.MarketRate) error

	// GetByTimeRange returns ticks for a pair within [start, end] ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, pairID string, start, end time.Time) ([]*domain.MarketRate, error)
}
