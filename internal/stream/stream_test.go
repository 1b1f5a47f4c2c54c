package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/observability"
	"fx-forward-desk/internal/pricing"
	"fx-forward-desk/internal/storage/memory"
)

var clock = time.Date(2025, 1, 2, 1, 0, 0, 0, time.UTC)

func newTestHub(t *testing.T) (*Hub, *observability.Metrics) {
	t.Helper()
	m := observability.NewMetrics("test", prometheus.NewRegistry())
	h := NewHub(nil, m)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h, m
}

// newTestSource prices USD/KRW at 1385/1383 and lists EUR/KRW without a rate.
func newTestSource(t *testing.T) *pricing.Service {
	t.Helper()
	ctx := context.Background()

	pairs := memory.NewCurrencyPairStore()
	require.NoError(t, pairs.Insert(ctx, &domain.CurrencyPair{ID: "usdkrw", Symbol: "USD/KRW", BaseCurrency: "USD", QuoteCurrency: "KRW", IsActive: true}))
	require.NoError(t, pairs.Insert(ctx, &domain.CurrencyPair{ID: "eurkrw", Symbol: "EUR/KRW", BaseCurrency: "EUR", QuoteCurrency: "KRW", IsActive: true}))

	rates := memory.NewMarketRateStore()
	require.NoError(t, rates.Upsert(ctx, &domain.MarketRate{
		ID: "r1", CurrencyPairID: "usdkrw",
		BuyRate: decimal.RequireFromString("1385"), SellRate: decimal.RequireFromString("1383"),
		Source: domain.RateSourceInfomax, Timestamp: clock,
	}))

	return pricing.New(pricing.Options{
		CurrencyPairs:  pairs,
		Users:          memory.NewUserStore(),
		SwapPoints:     memory.NewSwapPointStore(),
		OnTnRates:      memory.NewOnTnRateStore(),
		MarketRates:    rates,
		SpreadSettings: memory.NewSpreadSettingStore(),
		Now:            func() time.Time { return clock },
	})
}

func TestBroadcaster_Snapshot(t *testing.T) {
	b := NewBroadcaster(BroadcasterOptions{Source: newTestSource(t), Now: func() time.Time { return clock }})

	snap, err := b.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "rates", snap.Type)
	assert.True(t, snap.AsOf.Equal(clock))
	require.Len(t, snap.Rates, 2)

	eur := snap.Rates[0]
	assert.Equal(t, "EUR/KRW", eur.Symbol)
	assert.False(t, eur.Available)
	assert.Nil(t, eur.Buy)
	assert.Nil(t, eur.Sell)

	usd := snap.Rates[1]
	assert.Equal(t, "USD/KRW", usd.Symbol)
	require.True(t, usd.Available)
	assert.True(t, usd.Buy.Equal(decimal.RequireFromString("1385.10")), "buy=%s", usd.Buy)
	assert.True(t, usd.Sell.Equal(decimal.RequireFromString("1382.90")), "sell=%s", usd.Sell)
	assert.True(t, usd.SpreadBps.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, domain.RateSourceInfomax, usd.Source)
}

func TestBroadcaster_TriggerPublishes(t *testing.T) {
	h, m := newTestHub(t)
	c := &Client{hub: h, send: make(chan []byte, 4), id: "screen"}
	require.True(t, h.join(c))

	b := NewBroadcaster(BroadcasterOptions{
		Hub:      h,
		Source:   newTestSource(t),
		Interval: time.Hour,
		Now:      func() time.Time { return clock },
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	b.OnRate(domain.MarketRate{CurrencyPairID: "usdkrw"})

	select {
	case msg := <-c.send:
		var snap Snapshot
		require.NoError(t, json.Unmarshal(msg, &snap))
		require.Len(t, snap.Rates, 2)
		assert.True(t, snap.Rates[1].Available)
		assert.Contains(t, string(msg), `"available":false`)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after trigger")
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WSBroadcasts))
}

func TestBroadcaster_TriggerCoalesces(t *testing.T) {
	b := NewBroadcaster(BroadcasterOptions{})
	b.Trigger()
	b.Trigger()
	b.Trigger()
	assert.Len(t, b.trigger, 1)
	assert.Equal(t, DefaultInterval, b.interval)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h, m := newTestHub(t)
	slow := &Client{hub: h, send: make(chan []byte, 1), id: "slow"}
	require.True(t, h.join(slow))
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.Broadcast([]byte("one"))
	h.Broadcast([]byte("two"))

	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WSDroppedSlow))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.WSClients))

	// The buffered message is still delivered before the channel closes.
	msg, ok := <-slow.send
	assert.True(t, ok)
	assert.Equal(t, "one", string(msg))
	_, ok = <-slow.send
	assert.False(t, ok)
}

func dial(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(h, w, r)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServeWs_ReceivesBroadcast(t *testing.T) {
	h, m := newTestHub(t)
	conn := dial(t, h)

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WSClients))

	h.Broadcast([]byte(`{"type":"rates"}`))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	typ, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, typ)
	assert.JSONEq(t, `{"type":"rates"}`, string(msg))
}

func TestServeWs_ReplaysLastSnapshot(t *testing.T) {
	h, m := newTestHub(t)
	h.Broadcast([]byte(`{"seq":1}`))
	require.Eventually(t, func() bool { return testutil.ToFloat64(m.WSBroadcasts) == 1 }, time.Second, 5*time.Millisecond)

	conn := dial(t, h)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"seq":1}`, string(msg))
}

func TestServeWs_ClientDisconnectUnregisters(t *testing.T) {
	h, _ := newTestHub(t)
	conn := dial(t, h)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*time.Second, 5*time.Millisecond)
}
