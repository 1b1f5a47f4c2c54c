package ratefeed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/idgen"
	"fx-forward-desk/internal/observability"
	"fx-forward-desk/internal/storage"
)

// Handler stores ticks and fans them out to subscribers.
// The latest rate is upserted immediately; history is buffered and written
// in batches of HistoryBatch.
type Handler struct {
	pairs   storage.CurrencyPairStore
	rates   storage.MarketRateStore
	history storage.MarketRateHistoryStore
	batch   int
	logger  *zap.Logger
	metrics *observability.Metrics

	mu          sync.Mutex
	pending     []*domain.MarketRate
	pairIDs     map[string]string
	subscribers []func(domain.MarketRate)
}

// HandlerOptions for creating Handler.
type HandlerOptions struct {
	CurrencyPairs storage.CurrencyPairStore
	MarketRates   storage.MarketRateStore
	History       storage.MarketRateHistoryStore // optional
	HistoryBatch  int                            // default 1
	Logger        *zap.Logger
	Metrics       *observability.Metrics
}

// NewHandler creates a new Handler.
func NewHandler(opts HandlerOptions) *Handler {
	h := &Handler{
		pairs:   opts.CurrencyPairs,
		rates:   opts.MarketRates,
		history: opts.History,
		batch:   opts.HistoryBatch,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		pairIDs: make(map[string]string),
	}
	if h.batch < 1 {
		h.batch = 1
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.metrics == nil {
		h.metrics = observability.DefaultMetrics
	}
	h.logger = h.logger.Named("ratefeed")
	return h
}

// Subscribe registers fn to run after each stored tick.
func (h *Handler) Subscribe(fn func(domain.MarketRate)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers = append(h.subscribers, fn)
}

// Handle stores one tick. Unknown pairs are reported as ErrBadTick.
func (h *Handler) Handle(ctx context.Context, t Tick) error {
	pairID, err := h.resolvePair(ctx, t.Pair)
	if err != nil {
		h.metrics.RecordTickError("unknown_pair")
		return err
	}

	rate := &domain.MarketRate{
		ID:             idgen.TickID(pairID, t.Source, t.TS),
		CurrencyPairID: pairID,
		BuyRate:        t.Buy,
		SellRate:       t.Sell,
		Source:         t.Source,
		Timestamp:      t.TS,
	}
	if err := h.rates.Upsert(ctx, rate); err != nil {
		h.metrics.RecordTickError("store")
		return fmt.Errorf("upsert market rate: %w", err)
	}
	h.metrics.RecordTick(t.Source, pairID, t.TS.Unix())

	h.mu.Lock()
	h.pending = append(h.pending, rate)
	flush := len(h.pending) >= h.batch
	subs := h.subscribers
	h.mu.Unlock()

	if flush {
		if err := h.Flush(ctx); err != nil {
			// the live rate is stored; history loss is logged, not retried
			h.logger.Warn("history flush failed", zap.Error(err))
		}
	}

	for _, fn := range subs {
		fn(*rate)
	}
	return nil
}

// Flush writes buffered history rows.
func (h *Handler) Flush(ctx context.Context) error {
	h.mu.Lock()
	rows := h.pending
	h.pending = nil
	h.mu.Unlock()

	if h.history == nil || len(rows) == 0 {
		return nil
	}
	if err := h.history.InsertBulk(ctx, rows); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	h.logger.Debug("history flushed", zap.Int("rows", len(rows)))
	return nil
}

// resolvePair maps a symbol or id onto a pair id, caching hits.
func (h *Handler) resolvePair(ctx context.Context, ref string) (string, error) {
	h.mu.Lock()
	id, ok := h.pairIDs[ref]
	h.mu.Unlock()
	if ok {
		return id, nil
	}

	p, err := h.pairs.GetBySymbol(ctx, ref)
	if errors.Is(err, storage.ErrNotFound) {
		p, err = h.pairs.GetByID(ctx, ref)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("%w: unknown pair %q", ErrBadTick, ref)
	}
	if err != nil {
		return "", fmt.Errorf("resolve pair %q: %w", ref, err)
	}

	h.mu.Lock()
	h.pairIDs[ref] = p.ID
	h.mu.Unlock()
	return p.ID, nil
}
