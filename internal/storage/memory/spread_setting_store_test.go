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

func TestSpreadSettingStore_GetActive(t *testing.T) {
	store := NewSpreadSettingStore()
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sub := domain.GroupSub
	client := "client-7"

	settings := []*domain.SpreadSetting{
		{ID: "s2", ProductType: domain.ProductForward, CurrencyPairID: "usdkrw", GroupType: &sub, GroupValue: &client,
			BaseSpread: decimal.NewFromInt(5), IsActive: true, CreatedAt: t0.Add(time.Hour),
			TenorSpreads: map[domain.Tenor]decimal.Decimal{domain.Tenor1M: decimal.NewFromInt(8)}},
		{ID: "s1", ProductType: domain.ProductForward, CurrencyPairID: "usdkrw",
			BaseSpread: decimal.NewFromInt(20), IsActive: true, CreatedAt: t0},
		{ID: "s3", ProductType: domain.ProductSpot, CurrencyPairID: "usdkrw", IsActive: true, CreatedAt: t0},
		{ID: "s4", ProductType: domain.ProductForward, CurrencyPairID: "usdkrw", IsActive: false, CreatedAt: t0},
	}
	for _, s := range settings {
		if err := store.Insert(ctx, s); err != nil {
			t.Fatalf("Insert %s failed: %v", s.ID, err)
		}
	}

	got, err := store.GetActive(ctx, domain.ProductForward, "usdkrw")
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 settings, got %d", len(got))
	}
	if got[0].ID != "s1" || got[1].ID != "s2" {
		t.Errorf("Expected created_at order s1, s2; got %s, %s", got[0].ID, got[1].ID)
	}

	// returned maps are copies
	got[1].TenorSpreads[domain.Tenor1M] = decimal.Zero
	again, _ := store.GetActive(ctx, domain.ProductForward, "usdkrw")
	if !again[1].TenorSpreads[domain.Tenor1M].Equal(decimal.NewFromInt(8)) {
		t.Error("Stored tenor spreads mutated through returned map")
	}
}

func TestSpreadSettingStore_Update(t *testing.T) {
	store := NewSpreadSettingStore()
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	s := &domain.SpreadSetting{ID: "s1", ProductType: domain.ProductSwap, CurrencyPairID: "usdkrw",
		BaseSpread: decimal.NewFromInt(10), IsActive: true, CreatedAt: created}
	if err := store.Insert(ctx, s); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, s); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	updated := *s
	updated.BaseSpread = decimal.NewFromInt(15)
	updated.CreatedAt = time.Time{}
	if err := store.Update(ctx, &updated); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := store.GetActive(ctx, domain.ProductSwap, "usdkrw")
	if !got[0].BaseSpread.Equal(decimal.NewFromInt(15)) {
		t.Errorf("BaseSpread = %s, want 15", got[0].BaseSpread)
	}
	if !got[0].CreatedAt.Equal(created) {
		t.Error("Update must keep created_at")
	}

	missing := updated
	missing.ID = "nope"
	if err := store.Update(ctx, &missing); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := store.Insert(ctx, &domain.SpreadSetting{ID: "bad", CurrencyPairID: "usdkrw", ProductType: "Option"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
