package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/pricing"
	"fx-forward-desk/internal/quote"
)

// DefaultInterval is the snapshot period when none is configured.
const DefaultInterval = time.Second

// RateSource prices the pairs a snapshot covers. *pricing.Service satisfies it.
type RateSource interface {
	ActivePairs(ctx context.Context) ([]*domain.CurrencyPair, error)
	CustomerRate(ctx context.Context, req pricing.CustomerRateRequest) (*pricing.Quote, error)
}

// PairRate is one row of a snapshot. Unavailable rows carry no rates and
// are rendered as "--" by screens.
type PairRate struct {
	PairID    string           `json:"pairId"`
	Symbol    string           `json:"symbol"`
	Available bool             `json:"available"`
	Buy       *decimal.Decimal `json:"buy,omitempty"`
	Sell      *decimal.Decimal `json:"sell,omitempty"`
	SpreadBps *decimal.Decimal `json:"spreadBps,omitempty"`
	Source    string           `json:"source,omitempty"`
	RateTime  *time.Time       `json:"rateTime,omitempty"`
}

// Snapshot is the message pushed to every client.
type Snapshot struct {
	Type  string     `json:"type"`
	AsOf  time.Time  `json:"asOf"`
	Rates []PairRate `json:"rates"`
}

// BroadcasterOptions configures a Broadcaster.
type BroadcasterOptions struct {
	Hub      *Hub
	Source   RateSource
	Interval time.Duration
	Now      func() time.Time
	Logger   *zap.Logger
}

// Broadcaster prices anonymous spot customer rates for all active pairs and
// pushes them to the hub on a timer and whenever Trigger is called.
type Broadcaster struct {
	hub      *Hub
	source   RateSource
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
	trigger  chan struct{}
}

// NewBroadcaster creates a Broadcaster.
func NewBroadcaster(opts BroadcasterOptions) *Broadcaster {
	b := &Broadcaster{
		hub:      opts.Hub,
		source:   opts.Source,
		interval: opts.Interval,
		now:      opts.Now,
		logger:   opts.Logger,
		trigger:  make(chan struct{}, 1),
	}
	if b.interval <= 0 {
		b.interval = DefaultInterval
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	b.logger = b.logger.Named("broadcaster")
	return b
}

// Trigger requests an immediate snapshot. Calls coalesce while one is pending.
func (b *Broadcaster) Trigger() {
	select {
	case b.trigger <- struct{}{}:
	default:
	}
}

// OnRate adapts Trigger to the rate feed subscriber signature.
func (b *Broadcaster) OnRate(domain.MarketRate) {
	b.Trigger()
}

// Run publishes snapshots until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	b.logger.Info("broadcaster started", zap.Duration("interval", b.interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-b.trigger:
		}
		if err := b.publish(ctx); err != nil && ctx.Err() == nil {
			b.logger.Warn("snapshot failed", zap.Error(err))
		}
	}
}

func (b *Broadcaster) publish(ctx context.Context) error {
	snap, err := b.Snapshot(ctx)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	b.hub.Broadcast(msg)
	return nil
}

// Snapshot prices every active pair. A pair without a base rate is reported
// unavailable; any other pricing error aborts the snapshot.
func (b *Broadcaster) Snapshot(ctx context.Context) (*Snapshot, error) {
	pairs, err := b.source.ActivePairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pairs: %w", err)
	}

	snap := &Snapshot{
		Type:  "rates",
		AsOf:  b.now().UTC(),
		Rates: make([]PairRate, 0, len(pairs)),
	}
	for _, p := range pairs {
		row := PairRate{PairID: p.ID, Symbol: p.Symbol}

		q, err := b.source.CustomerRate(ctx, pricing.CustomerRateRequest{
			Product: domain.ProductSpot,
			PairID:  p.ID,
		})
		switch {
		case errors.Is(err, quote.ErrNoMarketRate):
		case err != nil:
			return nil, fmt.Errorf("price %s: %w", p.Symbol, err)
		default:
			buy, sell, bps := q.Rate.BuyRate, q.Rate.SellRate, q.Rate.SpreadBps
			ts := q.Rate.Base.Timestamp
			row.Available = true
			row.Buy, row.Sell, row.SpreadBps = &buy, &sell, &bps
			row.Source = q.Rate.Base.Source
			row.RateTime = &ts
		}
		snap.Rates = append(snap.Rates, row)
	}
	return snap, nil
}
