package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/storage"
)

func TestCurrencyPairStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCurrencyPairStore(pool)

	createTestPair(t, ctx, pool, "usdkrw", "USD/KRW")
	createTestPair(t, ctx, pool, "eurkrw", "EUR/KRW")
	require.NoError(t, store.Insert(ctx, &domain.CurrencyPair{
		ID: "jpykrw", Symbol: "JPY/KRW", BaseCurrency: "JPY", QuoteCurrency: "KRW", IsActive: false,
	}))

	got, err := store.GetBySymbol(ctx, "USD/KRW")
	require.NoError(t, err)
	assert.Equal(t, "usdkrw", got.ID)
	assert.Equal(t, "USD", got.BaseCurrency)

	_, err = store.GetByID(ctx, "gbpkrw")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = store.Insert(ctx, &domain.CurrencyPair{ID: "dup", Symbol: "USD/KRW"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	active, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "EUR/KRW", active[0].Symbol)
}

func TestUserStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewUserStore(pool)

	u := &domain.User{
		ID: "u1", Username: "kim", Role: "client",
		MajorGroup: ptr("corporate"), SubGroup: ptr("client-7"), IsActive: true,
	}
	require.NoError(t, store.Insert(ctx, u))

	got, err := store.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "corporate", got.Group(domain.GroupMajor))
	assert.Nil(t, got.MidGroup)
	assert.Equal(t, "client-7", got.Group(domain.GroupSub))

	assert.ErrorIs(t, store.Insert(ctx, u), storage.ErrDuplicateKey)

	_, err = store.GetByID(ctx, "u2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
