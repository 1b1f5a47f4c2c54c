package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/storage"
)

func tick(id string, ts time.Time, buy, sell string) *domain.MarketRate {
	return &domain.MarketRate{
		ID:             id,
		CurrencyPairID: "usdkrw",
		BuyRate:        decimal.RequireFromString(buy),
		SellRate:       decimal.RequireFromString(sell),
		Source:         domain.RateSourceInfomax,
		Timestamp:      ts,
	}
}

func TestMarketRateHistoryStore_InsertBulk(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMarketRateHistoryStore(conn)
	ctx := context.Background()

	// Test empty insert
	err := store.InsertBulk(ctx, nil)
	assert.NoError(t, err)

	t0 := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	err = store.InsertBulk(ctx, []*domain.MarketRate{
		tick("t2", t0.Add(2*time.Second), "1385.2", "1383.1"),
		tick("t1", t0.Add(time.Second), "1385.125", "1383.05"),
		tick("t3", t0.Add(time.Hour), "1386", "1384"),
	})
	require.NoError(t, err)

	got, err := store.GetByTimeRange(ctx, "usdkrw", t0, t0.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
	assert.True(t, got[0].BuyRate.Equal(decimal.RequireFromString("1385.125")), "buy %s", got[0].BuyRate)
	assert.True(t, got[0].SellRate.Equal(decimal.RequireFromString("1383.05")), "sell %s", got[0].SellRate)
	assert.Equal(t, domain.RateSourceInfomax, got[0].Source)
	assert.True(t, got[0].Timestamp.Equal(t0.Add(time.Second)))
	assert.Equal(t, "t2", got[1].ID)

	other, err := store.GetByTimeRange(ctx, "eurkrw", t0, t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestMarketRateHistoryStore_InsertBulk_Invalid(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMarketRateHistoryStore(conn)
	bad := tick("t1", time.Time{}, "1", "1")

	err := store.InsertBulk(context.Background(), []*domain.MarketRate{bad})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestParseDSN(t *testing.T) {
	opts, err := parseDSN("clickhouse://user:pw@ch.local:9440/fxdesk?dial_timeout=3s")
	require.NoError(t, err)
	assert.Equal(t, []string{"ch.local:9440"}, opts.Addr)
	assert.Equal(t, "user", opts.Auth.Username)
	assert.Equal(t, "pw", opts.Auth.Password)
	assert.Equal(t, "fxdesk", opts.Auth.Database)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)

	opts, err = parseDSN("clickhouse://localhost")
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost:9000"}, opts.Addr)
	assert.Empty(t, opts.Auth.Database)

	_, err = parseDSN("http://localhost:8123/db")
	assert.Error(t, err)
}
