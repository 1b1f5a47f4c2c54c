package clickhouse

import (
	"context"
	"fmt"
	"time"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/storage"
)

// MarketRateHistoryStore implements storage.MarketRateHistoryStore using ClickHouse.
type MarketRateHistoryStore struct {
	conn *Conn
}

// NewMarketRateHistoryStore creates a new MarketRateHistoryStore.
func NewMarketRateHistoryStore(conn *Conn) *MarketRateHistoryStore {
	return &MarketRateHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.MarketRateHistoryStore = (*MarketRateHistoryStore)(nil)

// InsertBulk appends ticks in one batch. Ticks without a pair are rejected
// before anything is sent.
func (s *MarketRateHistoryStore) InsertBulk(ctx context.Context, rates []*domain.MarketRate) error {
	if len(rates) == 0 {
		return nil
	}
	for _, r := range rates {
		if r == nil || r.CurrencyPairID == "" || r.Timestamp.IsZero() {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO market_rate_history (
			id, currency_pair_id, buy_rate, sell_rate, source, ts
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rates {
		err = batch.Append(
			r.ID, r.CurrencyPairID, r.BuyRate, r.SellRate,
			r.Source, r.Timestamp.UTC(),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTimeRange returns ticks for a pair within [start, end] (inclusive), ordered by ts ASC.
func (s *MarketRateHistoryStore) GetByTimeRange(ctx context.Context, pairID string, start, end time.Time) ([]*domain.MarketRate, error) {
	query := `
		SELECT id, currency_pair_id, buy_rate, sell_rate, source, ts
		FROM market_rate_history
		WHERE currency_pair_id = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC
	`

	rows, err := s.conn.Query(ctx, query, pairID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanMarketRates(rows)
}

// chRows is the subset of driver.Rows the scanners need.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanMarketRates scans multiple rows. Decimal columns scan straight into
// decimal.Decimal.
func scanMarketRates(rows chRows) ([]*domain.MarketRate, error) {
	var rates []*domain.MarketRate

	for rows.Next() {
		var r domain.MarketRate
		err := rows.Scan(
			&r.ID, &r.CurrencyPairID, &r.BuyRate, &r.SellRate,
			&r.Source, &r.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan market rate row: %w", err)
		}
		r.Timestamp = r.Timestamp.UTC()
		rates = append(rates, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate market rate rows: %w", err)
	}

	return rates, nil
}
