package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/storage"
)

// SwapPointStore implements storage.SwapPointStore using PostgreSQL.
type SwapPointStore struct {
	pool *Pool
}

// NewSwapPointStore creates a new SwapPointStore.
func NewSwapPointStore(pool *Pool) *SwapPointStore {
	return &SwapPointStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SwapPointStore = (*SwapPointStore)(nil)

const swapPointColumns = `
	id, currency_pair_id, tenor, start_date, settlement_date, days_from_spot,
	swap_point::text, bid_price::text, ask_price::text, source, uploaded_at, superseded_at
`

// Save inserts p and supersedes the current row for (pair, tenor) in one transaction.
func (s *SwapPointStore) Save(ctx context.Context, p *domain.SwapPoint) error {
	if p == nil || p.ID == "" || p.CurrencyPairID == "" || p.Tenor == "" {
		return storage.ErrInvalidInput
	}

	return s.pool.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE swap_points
			SET superseded_at = $3
			WHERE currency_pair_id = $1 AND tenor = $2 AND superseded_at IS NULL
		`, p.CurrencyPairID, string(p.Tenor), p.UploadedAt)
		if err != nil {
			return fmt.Errorf("supersede swap point: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO swap_points (
				id, currency_pair_id, tenor, start_date, settlement_date, days_from_spot,
				swap_point, bid_price, ask_price, source, uploaded_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric, $9::numeric, $10, $11)
		`,
			p.ID,
			p.CurrencyPairID,
			string(p.Tenor),
			nullableDate(p.StartDate),
			p.SettlementDate,
			p.DaysFromSpot,
			numericArg(p.SwapPoint),
			nullableNumericArg(p.BidPrice),
			nullableNumericArg(p.AskPrice),
			p.Source,
			p.UploadedAt,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			if isConstraintError(err) {
				return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
			}
			return fmt.Errorf("insert swap point: %w", err)
		}
		return nil
	})
}

// GetByCurrencyPair returns current rows for a pair ordered by settlement date ASC.
func (s *SwapPointStore) GetByCurrencyPair(ctx context.Context, pairID string) ([]*domain.SwapPoint, error) {
	query := `SELECT ` + swapPointColumns + `
		FROM swap_points
		WHERE currency_pair_id = $1 AND superseded_at IS NULL
		ORDER BY settlement_date ASC, uploaded_at ASC
	`
	return s.query(ctx, query, pairID)
}

// GetHistory returns every row for (pair, tenor) ordered by uploaded_at ASC.
func (s *SwapPointStore) GetHistory(ctx context.Context, pairID string, tenor domain.Tenor) ([]*domain.SwapPoint, error) {
	query := `SELECT ` + swapPointColumns + `
		FROM swap_points
		WHERE currency_pair_id = $1 AND tenor = $2
		ORDER BY uploaded_at ASC
	`
	return s.query(ctx, query, pairID, string(tenor))
}

func (s *SwapPointStore) query(ctx context.Context, query string, args ...any) ([]*domain.SwapPoint, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query swap points: %w", err)
	}
	defer rows.Close()

	var result []*domain.SwapPoint
	for rows.Next() {
		p, err := scanSwapPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swap point: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func scanSwapPoint(row pgx.Row) (*domain.SwapPoint, error) {
	var (
		p         domain.SwapPoint
		tenor     string
		startDate *time.Time
		swapPoint string
		bid, ask  *string
	)

	err := row.Scan(
		&p.ID,
		&p.CurrencyPairID,
		&tenor,
		&startDate,
		&p.SettlementDate,
		&p.DaysFromSpot,
		&swapPoint,
		&bid,
		&ask,
		&p.Source,
		&p.UploadedAt,
		&p.SupersededAt,
	)
	if err != nil {
		return nil, err
	}

	p.Tenor = domain.Tenor(tenor)
	if startDate != nil {
		p.StartDate = *startDate
	}
	if p.SwapPoint, err = parseNumeric(swapPoint); err != nil {
		return nil, err
	}
	if p.BidPrice, err = parseNullableNumeric(bid); err != nil {
		return nil, err
	}
	if p.AskPrice, err = parseNullableNumeric(ask); err != nil {
		return nil, err
	}
	return &p, nil
}

func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
