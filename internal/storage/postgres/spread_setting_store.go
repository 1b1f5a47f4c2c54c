package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/storage"
)

// SpreadSettingStore implements storage.SpreadSettingStore using PostgreSQL.
type SpreadSettingStore struct {
	pool *Pool
}

// NewSpreadSettingStore creates a new SpreadSettingStore.
func NewSpreadSettingStore(pool *Pool) *SpreadSettingStore {
	return &SpreadSettingStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SpreadSettingStore = (*SpreadSettingStore)(nil)

// Insert adds a setting. Returns ErrDuplicateKey if id exists.
func (s *SpreadSettingStore) Insert(ctx context.Context, setting *domain.SpreadSetting) error {
	if setting == nil || setting.ID == "" || !setting.ProductType.IsValid() {
		return storage.ErrInvalidInput
	}
	tenors, err := encodeTenorSpreads(setting.TenorSpreads)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO spread_settings (
			id, product_type, currency_pair_id, group_type, group_value,
			base_spread, tenor_spreads, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::jsonb, $8,
			COALESCE($9, NOW()), COALESCE($9, NOW()))
	`
	_, err = s.pool.Exec(ctx, query,
		setting.ID,
		string(setting.ProductType),
		setting.CurrencyPairID,
		groupTypeArg(setting.GroupType),
		setting.GroupValue,
		numericArg(setting.BaseSpread),
		tenors,
		setting.IsActive,
		nullableDate(setting.CreatedAt),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		if isConstraintError(err) {
			return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
		}
		return fmt.Errorf("insert spread setting: %w", err)
	}
	return nil
}

// Update replaces a setting by id. Returns ErrNotFound if not exists.
func (s *SpreadSettingStore) Update(ctx context.Context, setting *domain.SpreadSetting) error {
	if setting == nil || setting.ID == "" || !setting.ProductType.IsValid() {
		return storage.ErrInvalidInput
	}
	tenors, err := encodeTenorSpreads(setting.TenorSpreads)
	if err != nil {
		return err
	}

	query := `
		UPDATE spread_settings SET
			product_type = $2,
			currency_pair_id = $3,
			group_type = $4,
			group_value = $5,
			base_spread = $6::numeric,
			tenor_spreads = $7::jsonb,
			is_active = $8,
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query,
		setting.ID,
		string(setting.ProductType),
		setting.CurrencyPairID,
		groupTypeArg(setting.GroupType),
		setting.GroupValue,
		numericArg(setting.BaseSpread),
		tenors,
		setting.IsActive,
	)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
		}
		return fmt.Errorf("update spread setting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetActive returns active settings for (product, pair) ordered by created_at ASC.
func (s *SpreadSettingStore) GetActive(ctx context.Context, product domain.ProductType, pairID string) ([]*domain.SpreadSetting, error) {
	query := `
		SELECT id, product_type, currency_pair_id, group_type, group_value,
			base_spread::text, tenor_spreads, is_active, created_at, updated_at
		FROM spread_settings
		WHERE product_type = $1 AND currency_pair_id = $2 AND is_active
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, string(product), pairID)
	if err != nil {
		return nil, fmt.Errorf("query spread settings: %w", err)
	}
	defer rows.Close()

	var result []*domain.SpreadSetting
	for rows.Next() {
		setting, err := scanSpreadSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spread setting: %w", err)
		}
		result = append(result, setting)
	}
	return result, rows.Err()
}

func scanSpreadSetting(row pgx.Row) (*domain.SpreadSetting, error) {
	var (
		s          domain.SpreadSetting
		product    string
		groupType  *string
		baseSpread string
		tenors     []byte
	)

	err := row.Scan(&s.ID, &product, &s.CurrencyPairID, &groupType, &s.GroupValue,
		&baseSpread, &tenors, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	s.ProductType = domain.ProductType(product)
	if groupType != nil {
		gt := domain.GroupType(*groupType)
		s.GroupType = &gt
	}
	if s.BaseSpread, err = parseNumeric(baseSpread); err != nil {
		return nil, err
	}
	if s.TenorSpreads, err = decodeTenorSpreads(tenors); err != nil {
		return nil, err
	}
	return &s, nil
}

func groupTypeArg(gt *domain.GroupType) *string {
	if gt == nil {
		return nil
	}
	v := string(*gt)
	return &v
}

// encodeTenorSpreads writes bps values as JSON numbers keyed by tenor.
func encodeTenorSpreads(m map[domain.Tenor]decimal.Decimal) (*string, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(map[string]json.Number, len(m))
	for k, v := range m {
		out[string(k)] = json.Number(v.String())
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode tenor spreads: %w", err)
	}
	s := string(data)
	return &s, nil
}

func decodeTenorSpreads(data []byte) (map[domain.Tenor]decimal.Decimal, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var raw map[string]decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode tenor spreads: %w", err)
	}
	m := make(map[domain.Tenor]decimal.Decimal, len(raw))
	for k, v := range raw {
		m[domain.Tenor(k)] = v
	}
	return m, nil
}
