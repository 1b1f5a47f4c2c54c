package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/storage"
)

// OnTnRateStore implements storage.OnTnRateStore using PostgreSQL.
type OnTnRateStore struct {
	pool *Pool
}

// NewOnTnRateStore creates a new OnTnRateStore.
func NewOnTnRateStore(pool *Pool) *OnTnRateStore {
	return &OnTnRateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.OnTnRateStore = (*OnTnRateStore)(nil)

// Save appends a rate. Tenor must be ON or TN.
func (s *OnTnRateStore) Save(ctx context.Context, r *domain.OnTnRate) error {
	if r == nil || r.ID == "" || r.CurrencyPairID == "" || !r.Tenor.IsPreSpot() {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO on_tn_rates (
			id, currency_pair_id, tenor, start_date, settlement_date,
			swap_point, bid_price, ask_price, uploaded_at
		) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8::numeric, $9)
	`
	_, err := s.pool.Exec(ctx, query,
		r.ID,
		r.CurrencyPairID,
		string(r.Tenor),
		nullableDate(r.StartDate),
		nullableDate(r.SettlementDate),
		numericArg(r.SwapPoint),
		nullableNumericArg(r.BidPrice),
		nullableNumericArg(r.AskPrice),
		r.UploadedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		if isConstraintError(err) {
			return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
		}
		return fmt.Errorf("insert on/tn rate: %w", err)
	}
	return nil
}

// GetByCurrencyPair returns all rows for a pair ordered by uploaded_at ASC.
func (s *OnTnRateStore) GetByCurrencyPair(ctx context.Context, pairID string) ([]*domain.OnTnRate, error) {
	query := `
		SELECT id, currency_pair_id, tenor, start_date, settlement_date,
			swap_point::text, bid_price::text, ask_price::text, uploaded_at
		FROM on_tn_rates
		WHERE currency_pair_id = $1
		ORDER BY uploaded_at ASC
	`

	rows, err := s.pool.Query(ctx, query, pairID)
	if err != nil {
		return nil, fmt.Errorf("query on/tn rates: %w", err)
	}
	defer rows.Close()

	var result []*domain.OnTnRate
	for rows.Next() {
		r, err := scanOnTnRate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan on/tn rate: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func scanOnTnRate(row pgx.Row) (*domain.OnTnRate, error) {
	var (
		r                 domain.OnTnRate
		tenor             string
		startDate, settle *time.Time
		swapPoint         string
		bid, ask          *string
	)

	err := row.Scan(&r.ID, &r.CurrencyPairID, &tenor, &startDate, &settle,
		&swapPoint, &bid, &ask, &r.UploadedAt)
	if err != nil {
		return nil, err
	}

	r.Tenor = domain.Tenor(tenor)
	if startDate != nil {
		r.StartDate = *startDate
	}
	if settle != nil {
		r.SettlementDate = *settle
	}
	if r.SwapPoint, err = parseNumeric(swapPoint); err != nil {
		return nil, err
	}
	if r.BidPrice, err = parseNullableNumeric(bid); err != nil {
		return nil, err
	}
	if r.AskPrice, err = parseNullableNumeric(ask); err != nil {
		return nil, err
	}
	return &r, nil
}
