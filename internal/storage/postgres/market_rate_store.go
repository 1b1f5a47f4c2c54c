package postgres

import (
	"context"
	"fmt"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/storage"
)

// MarketRateStore implements storage.MarketRateStore using PostgreSQL.
// One row is kept per (pair, source).
type MarketRateStore struct {
	pool *Pool
}

// NewMarketRateStore creates a new MarketRateStore.
func NewMarketRateStore(pool *Pool) *MarketRateStore {
	return &MarketRateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MarketRateStore = (*MarketRateStore)(nil)

// Upsert stores r unless a newer rate for (pair, source) is already stored.
func (s *MarketRateStore) Upsert(ctx context.Context, r *domain.MarketRate) error {
	if r == nil || r.ID == "" || r.CurrencyPairID == "" || r.Source == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO market_rates (id, currency_pair_id, buy_rate, sell_rate, source, timestamp)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5, $6)
		ON CONFLICT (currency_pair_id, source) DO UPDATE SET
			id = EXCLUDED.id,
			buy_rate = EXCLUDED.buy_rate,
			sell_rate = EXCLUDED.sell_rate,
			timestamp = EXCLUDED.timestamp,
			updated_at = NOW()
		WHERE market_rates.timestamp <= EXCLUDED.timestamp
	`
	_, err := s.pool.Exec(ctx, query,
		r.ID, r.CurrencyPairID, numericArg(r.BuyRate), numericArg(r.SellRate), r.Source, r.Timestamp)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
		}
		return fmt.Errorf("upsert market rate: %w", err)
	}
	return nil
}

// GetLatest returns the latest rate for (pair, source). Returns ErrNotFound if none.
func (s *MarketRateStore) GetLatest(ctx context.Context, pairID, source string) (*domain.MarketRate, error) {
	query := `
		SELECT id, currency_pair_id, buy_rate::text, sell_rate::text, source, timestamp
		FROM market_rates
		WHERE currency_pair_id = $1 AND source = $2
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var (
		r         domain.MarketRate
		buy, sell string
	)
	err := s.pool.QueryRow(ctx, query, pairID, source).Scan(
		&r.ID, &r.CurrencyPairID, &buy, &sell, &r.Source, &r.Timestamp)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest market rate: %w", err)
	}

	if r.BuyRate, err = parseNumeric(buy); err != nil {
		return nil, err
	}
	if r.SellRate, err = parseNumeric(sell); err != nil {
		return nil, err
	}
	return &r, nil
}
