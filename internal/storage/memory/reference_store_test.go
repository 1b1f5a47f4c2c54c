package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/storage"
)

func TestUserStore_InsertAndGet(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()
	sub := "client-7"

	u := &domain.User{ID: "u1", Username: "kim", SubGroup: &sub, IsActive: true}
	if err := store.Insert(ctx, u); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	sub = "changed"

	got, err := store.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.SubGroup == nil || *got.SubGroup != "client-7" {
		t.Errorf("SubGroup = %v, want client-7", got.SubGroup)
	}

	if err := store.Insert(ctx, &domain.User{ID: "u1", Username: "lee"}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("duplicate id: got %v, want ErrDuplicateKey", err)
	}
	if err := store.Insert(ctx, &domain.User{ID: "u2", Username: "kim"}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("duplicate username: got %v, want ErrDuplicateKey", err)
	}
	if err := store.Insert(ctx, &domain.User{ID: "u3"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("missing username: got %v, want ErrInvalidInput", err)
	}
	if _, err := store.GetByID(ctx, "nobody"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("unknown id: got %v, want ErrNotFound", err)
	}
}

func TestOnTnRateStore_SaveAndList(t *testing.T) {
	store := NewOnTnRateStore()
	ctx := context.Background()
	t0 := time.Date(2025, 1, 2, 1, 0, 0, 0, time.UTC)

	rows := []*domain.OnTnRate{
		{ID: "tn", CurrencyPairID: "usdkrw", Tenor: domain.TenorTN, SwapPoint: decimal.NewFromInt(3), UploadedAt: t0.Add(time.Minute)},
		{ID: "on", CurrencyPairID: "usdkrw", Tenor: domain.TenorON, SwapPoint: decimal.NewFromInt(2), UploadedAt: t0},
	}
	for _, r := range rows {
		if err := store.Save(ctx, r); err != nil {
			t.Fatalf("Save %s failed: %v", r.ID, err)
		}
	}

	got, err := store.GetByCurrencyPair(ctx, "usdkrw")
	if err != nil {
		t.Fatalf("GetByCurrencyPair failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "on" || got[1].ID != "tn" {
		t.Fatalf("unexpected order: %+v", got)
	}

	if err := store.Save(ctx, rows[0]); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("duplicate: got %v, want ErrDuplicateKey", err)
	}
	bad := &domain.OnTnRate{ID: "1m", CurrencyPairID: "usdkrw", Tenor: domain.Tenor1M}
	if err := store.Save(ctx, bad); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("1M row: got %v, want ErrInvalidInput", err)
	}

	empty, err := store.GetByCurrencyPair(ctx, "eurkrw")
	if err != nil || len(empty) != 0 {
		t.Errorf("unknown pair: got %v, %v", empty, err)
	}
}

func TestMarketRateHistoryStore_Range(t *testing.T) {
	store := NewMarketRateHistoryStore()
	ctx := context.Background()
	t0 := time.Date(2025, 1, 2, 1, 0, 0, 0, time.UTC)

	batch := []*domain.MarketRate{
		{ID: "c", CurrencyPairID: "usdkrw", Timestamp: t0.Add(2 * time.Second)},
		{ID: "a", CurrencyPairID: "usdkrw", Timestamp: t0},
		{ID: "b", CurrencyPairID: "usdkrw", Timestamp: t0.Add(time.Second)},
		{ID: "x", CurrencyPairID: "eurkrw", Timestamp: t0},
	}
	if err := store.InsertBulk(ctx, batch); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByTimeRange(ctx, "usdkrw", t0, t0.Add(time.Second))
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected range: %+v", got)
	}

	invalid := []*domain.MarketRate{{ID: "ok", CurrencyPairID: "usdkrw"}, {ID: "bad"}}
	if err := store.InsertBulk(ctx, invalid); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("invalid batch: got %v, want ErrInvalidInput", err)
	}
	all, _ := store.GetByTimeRange(ctx, "usdkrw", t0.Add(-time.Hour), t0.Add(time.Hour))
	if len(all) != 3 {
		t.Errorf("rejected batch must not be stored, have %d rows", len(all))
	}

	if err := store.InsertBulk(ctx, nil); err != nil {
		t.Errorf("empty batch: %v", err)
	}
}
