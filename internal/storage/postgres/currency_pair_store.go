package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/storage"
)

// CurrencyPairStore implements storage.CurrencyPairStore using PostgreSQL.
type CurrencyPairStore struct {
	pool *Pool
}

// NewCurrencyPairStore creates a new CurrencyPairStore.
func NewCurrencyPairStore(pool *Pool) *CurrencyPairStore {
	return &CurrencyPairStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CurrencyPairStore = (*CurrencyPairStore)(nil)

const currencyPairColumns = `id, symbol, base_currency, quote_currency, is_active`

// Insert adds a new pair. Returns ErrDuplicateKey if id or symbol exists.
func (s *CurrencyPairStore) Insert(ctx context.Context, p *domain.CurrencyPair) error {
	if p == nil || p.ID == "" || p.Symbol == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO currency_pairs (` + currencyPairColumns + `)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.pool.Exec(ctx, query, p.ID, p.Symbol, p.BaseCurrency, p.QuoteCurrency, p.IsActive)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert currency pair: %w", err)
	}
	return nil
}

// GetByID retrieves a pair by id. Returns ErrNotFound if not exists.
func (s *CurrencyPairStore) GetByID(ctx context.Context, id string) (*domain.CurrencyPair, error) {
	query := `SELECT ` + currencyPairColumns + ` FROM currency_pairs WHERE id = $1`

	p, err := scanCurrencyPair(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get currency pair by id: %w", err)
	}
	return p, nil
}

// GetBySymbol retrieves a pair by symbol. Returns ErrNotFound if not exists.
func (s *CurrencyPairStore) GetBySymbol(ctx context.Context, symbol string) (*domain.CurrencyPair, error) {
	query := `SELECT ` + currencyPairColumns + ` FROM currency_pairs WHERE symbol = $1`

	p, err := scanCurrencyPair(s.pool.QueryRow(ctx, query, symbol))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get currency pair by symbol: %w", err)
	}
	return p, nil
}

// ListActive returns active pairs ordered by symbol.
func (s *CurrencyPairStore) ListActive(ctx context.Context) ([]*domain.CurrencyPair, error) {
	query := `SELECT ` + currencyPairColumns + ` FROM currency_pairs WHERE is_active ORDER BY symbol`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list currency pairs: %w", err)
	}
	defer rows.Close()

	var result []*domain.CurrencyPair
	for rows.Next() {
		p, err := scanCurrencyPair(rows)
		if err != nil {
			return nil, fmt.Errorf("scan currency pair: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func scanCurrencyPair(row pgx.Row) (*domain.CurrencyPair, error) {
	var p domain.CurrencyPair
	if err := row.Scan(&p.ID, &p.Symbol, &p.BaseCurrency, &p.QuoteCurrency, &p.IsActive); err != nil {
		return nil, err
	}
	return &p, nil
}
