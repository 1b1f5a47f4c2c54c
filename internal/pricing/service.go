// Package pricing answers forward and customer-rate questions for a currency
// pair by combining the stores with the settlement, forward and quote
// packages. Every call rebuilds the SPOT anchor from the clock, so nothing
// computed against yesterday's trade date leaks into today's answers.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fx-forward-desk/internal/calendar"
	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/forward"
	"fx-forward-desk/internal/observability"
	"fx-forward-desk/internal/settlement"
	"fx-forward-desk/internal/storage"
)

// DefaultLocation is the trade-date zone when none is configured.
var DefaultLocation = time.FixedZone("KST", 9*60*60)

// Service prices forwards and customer quotes.
type Service struct {
	// Stores
	pairs          storage.CurrencyPairStore
	users          storage.UserStore
	swapPoints     storage.SwapPointStore
	onTnRates      storage.OnTnRateStore
	marketRates    storage.MarketRateStore
	spreadSettings storage.SpreadSettingStore

	calc     *settlement.Calculator
	source   string
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// Options for creating Service.
type Options struct {
	// Required stores
	CurrencyPairs  storage.CurrencyPairStore
	Users          storage.UserStore
	SwapPoints     storage.SwapPointStore
	OnTnRates      storage.OnTnRateStore
	MarketRates    storage.MarketRateStore
	SpreadSettings storage.SpreadSettingStore

	// Calculator defaults to the built-in KR and US tables.
	Calculator *settlement.Calculator

	MarketSource string         // base-rate source, default infomax
	Location     *time.Location // trade-date zone, default KST
	Now          func() time.Time
	Logger       *zap.Logger
	Metrics      *observability.Metrics
}

// New creates a new Service.
func New(opts Options) *Service {
	s := &Service{
		pairs:          opts.CurrencyPairs,
		users:          opts.Users,
		swapPoints:     opts.SwapPoints,
		onTnRates:      opts.OnTnRates,
		marketRates:    opts.MarketRates,
		spreadSettings: opts.SpreadSettings,
		calc:           opts.Calculator,
		source:         opts.MarketSource,
		location:       opts.Location,
		now:            opts.Now,
		logger:         opts.Logger,
		metrics:        opts.Metrics,
	}
	if s.calc == nil {
		s.calc = settlement.Default()
	}
	if s.source == "" {
		s.source = domain.RateSourceInfomax
	}
	if s.location == nil {
		s.location = DefaultLocation
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = observability.DefaultMetrics
	}
	s.logger = s.logger.Named("pricing")
	return s
}

// Calculator returns the settlement calculator the service prices with.
func (s *Service) Calculator() *settlement.Calculator {
	return s.calc
}

// Today is the current trade date in the service's zone.
func (s *Service) Today() time.Time {
	return calendar.Date(s.now().In(s.location))
}

// SpotAnchor returns the anchor for the current trade date.
func (s *Service) SpotAnchor() settlement.SpotAnchor {
	return s.calc.Anchor(s.Today())
}

// TenorLadder resolves the standard tenors against the current anchor.
func (s *Service) TenorLadder() ([]settlement.TenorDate, error) {
	return s.calc.Ladder(s.SpotAnchor(), nil)
}

// ActivePairs lists the pairs quotes are published for.
func (s *Service) ActivePairs(ctx context.Context) ([]*domain.CurrencyPair, error) {
	pairs, err := s.pairs.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active pairs: %w", err)
	}
	return pairs, nil
}

// Target selects a point on the curve, by settlement date or by days from SPOT.
// A non-zero Date takes precedence.
type Target struct {
	Date time.Time
	Days int
}

// AtDate targets a settlement date.
func AtDate(d time.Time) Target { return Target{Date: calendar.Date(d)} }

// AtDays targets a day count from SPOT.
func AtDays(n int) Target { return Target{Days: n} }

// Curve returns the pair's SPOT-anchored curve for the current trade date.
func (s *Service) Curve(ctx context.Context, pairID string) ([]forward.CurvePoint, error) {
	return s.curve(ctx, s.SpotAnchor(), pairID)
}

func (s *Service) curve(ctx context.Context, a settlement.SpotAnchor, pairID string) ([]forward.CurvePoint, error) {
	rows, err := s.swapPoints.GetByCurrencyPair(ctx, pairID)
	if err != nil {
		return nil, fmt.Errorf("load swap points: %w", err)
	}
	return forward.BuildCurve(a, values(rows)), nil
}

// chain returns nil without error when the pair has no ON or TN row, leaving
// the caller to report ErrMissingOnTnData only if a pre-SPOT date is asked for.
func (s *Service) chain(ctx context.Context, a settlement.SpotAnchor, pairID string) (*forward.OnTnChain, error) {
	rows, err := s.onTnRates.GetByCurrencyPair(ctx, pairID)
	if err != nil {
		return nil, fmt.Errorf("load on/tn rates: %w", err)
	}
	c, err := forward.NewOnTnChain(a, values(rows), s.calc)
	if errors.Is(err, forward.ErrMissingOnTnData) {
		return nil, nil
	}
	return c, err
}

// InterpolateForPair returns the pair's swap point at target.
func (s *Service) InterpolateForPair(ctx context.Context, pairID string, target Target) (forward.Result, error) {
	a := s.SpotAnchor()
	res, err := s.swapPointAt(ctx, a, pairID, target)
	s.record(pairID, res, err)
	return res, err
}

// TheoreticalForwardRate prices spotRate forward to target along the pair's curve.
func (s *Service) TheoreticalForwardRate(ctx context.Context, pairID string, spotRate decimal.Decimal, target Target) (forward.Result, error) {
	res, err := s.InterpolateForPair(ctx, pairID, target)
	if err != nil {
		return forward.Result{}, err
	}
	res.ForwardRate = forward.Rate(spotRate, res.SwapPoint)
	return res, nil
}

func (s *Service) swapPointAt(ctx context.Context, a settlement.SpotAnchor, pairID string, target Target) (forward.Result, error) {
	curve, err := s.curve(ctx, a, pairID)
	if err != nil {
		return forward.Result{}, err
	}

	if target.Date.IsZero() {
		return forward.Interpolate(target.Days, curve)
	}

	var chain *forward.OnTnChain
	if calendar.Date(target.Date).Before(a.Spot) {
		if chain, err = s.chain(ctx, a, pairID); err != nil {
			return forward.Result{}, err
		}
	}
	return forward.SwapPointForDate(a, target.Date, curve, chain)
}

func (s *Service) record(pairID string, res forward.Result, err error) {
	if err != nil {
		s.metrics.RecordForward("error")
		s.logger.Debug("swap point unavailable", zap.String("pair", pairID), zap.Error(err))
		return
	}
	s.metrics.RecordForward(string(res.Method))
	if res.Method == forward.MethodExtrapolated {
		s.logger.Info("swap point extrapolated",
			zap.String("pair", pairID),
			zap.Int("days", res.Days),
			zap.Int("lower_days", res.Lower.Days),
			zap.Int("upper_days", res.Upper.Days),
		)
	}
}

func values[T any](ptrs []*T) []T {
	out := make([]T, 0, len(ptrs))
	for _, p := range ptrs {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}
