package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fx-forward-desk/internal/calendar"
	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/forward"
	"fx-forward-desk/internal/quote"
	"fx-forward-desk/internal/settlement"
	"fx-forward-desk/internal/storage"
)

// Quote is a priced customer rate for one product.
type Quote struct {
	Product        domain.ProductType
	PairID         string
	Tenor          domain.Tenor
	SettlementDate time.Time // zero for spot quotes
	Method         forward.Method
	Rate           quote.CustomerRate
	Spread         quote.Spread
	QuotedAt       time.Time
}

// CustomerRateRequest asks for a customer rate. Tenor only selects a tenor
// spread override and may be empty.
type CustomerRateRequest struct {
	Product domain.ProductType
	PairID  string
	UserID  string // empty for an anonymous quote
	Tenor   domain.Tenor
}

// CustomerRate composes the base market rate with the user's spread.
// Returns quote.ErrNoMarketRate when the pair has no base rate yet.
func (s *Service) CustomerRate(ctx context.Context, req CustomerRateRequest) (*Quote, error) {
	if !req.Product.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProduct, req.Product)
	}
	tenor, err := optionalTenor(req.Tenor)
	if err != nil {
		return nil, err
	}

	base, spread, err := s.baseAndSpread(ctx, req.Product, req.PairID, req.UserID, tenor)
	if err != nil {
		return nil, err
	}

	return &Quote{
		Product:  req.Product,
		PairID:   req.PairID,
		Tenor:    tenor,
		Rate:     quote.Compose(*base, spread.Bps),
		Spread:   spread,
		QuotedAt: s.now(),
	}, nil
}

// ForwardQuoteRequest asks for an outright forward quote, by tenor or by
// settlement date. A non-zero Date wins over Tenor.
type ForwardQuoteRequest struct {
	PairID string
	UserID string
	Tenor  domain.Tenor
	Date   time.Time
}

// ForwardQuote prices an outright forward for the customer.
func (s *Service) ForwardQuote(ctx context.Context, req ForwardQuoteRequest) (*Quote, error) {
	a := s.SpotAnchor()
	tenor, settle, err := s.resolveLeg(a, req.Tenor, req.Date)
	if err != nil {
		return nil, err
	}

	base, spread, err := s.baseAndSpread(ctx, domain.ProductForward, req.PairID, req.UserID, tenor)
	if err != nil {
		return nil, err
	}

	res, err := s.swapPointAt(ctx, a, req.PairID, AtDate(settle))
	s.record(req.PairID, res, err)
	if err != nil {
		return nil, err
	}

	return &Quote{
		Product:        domain.ProductForward,
		PairID:         req.PairID,
		Tenor:          tenor,
		SettlementDate: settle,
		Method:         res.Method,
		Rate:           quote.ForwardCustomerRate(*base, res.SwapPoint, spread.Bps),
		Spread:         spread,
		QuotedAt:       s.now(),
	}, nil
}

// SwapQuoteRequest asks for an FX swap. Each leg is given by tenor or date.
type SwapQuoteRequest struct {
	PairID    string
	UserID    string
	NearTenor domain.Tenor
	NearDate  time.Time
	FarTenor  domain.Tenor
	FarDate   time.Time
}

// SwapQuote is a priced FX swap.
type SwapQuote struct {
	PairID     string
	NearTenor  domain.Tenor
	NearDate   time.Time
	NearMethod forward.Method
	FarTenor   domain.Tenor
	FarDate    time.Time
	FarMethod  forward.Method
	Legs       quote.SwapQuote
	Spread     quote.Spread
	QuotedAt   time.Time
}

// SwapQuote prices both legs of a swap. The spread is resolved for the far
// tenor and charged on the far leg only.
func (s *Service) SwapQuote(ctx context.Context, req SwapQuoteRequest) (*SwapQuote, error) {
	a := s.SpotAnchor()
	nearTenor, nearDate, err := s.resolveLeg(a, req.NearTenor, req.NearDate)
	if err != nil {
		return nil, fmt.Errorf("near leg: %w", err)
	}
	farTenor, farDate, err := s.resolveLeg(a, req.FarTenor, req.FarDate)
	if err != nil {
		return nil, fmt.Errorf("far leg: %w", err)
	}
	if !farDate.After(nearDate) {
		return nil, fmt.Errorf("%w: far date %s not after near date %s",
			ErrInvalidTarget, farDate.Format(calendar.DateLayout), nearDate.Format(calendar.DateLayout))
	}

	base, spread, err := s.baseAndSpread(ctx, domain.ProductSwap, req.PairID, req.UserID, farTenor)
	if err != nil {
		return nil, err
	}

	near, err := s.swapPointAt(ctx, a, req.PairID, AtDate(nearDate))
	s.record(req.PairID, near, err)
	if err != nil {
		return nil, fmt.Errorf("near leg: %w", err)
	}
	far, err := s.swapPointAt(ctx, a, req.PairID, AtDate(farDate))
	s.record(req.PairID, far, err)
	if err != nil {
		return nil, fmt.Errorf("far leg: %w", err)
	}

	return &SwapQuote{
		PairID:     req.PairID,
		NearTenor:  nearTenor,
		NearDate:   nearDate,
		NearMethod: near.Method,
		FarTenor:   farTenor,
		FarDate:    farDate,
		FarMethod:  far.Method,
		Legs:       quote.SwapLegs(*base, near.SwapPoint, far.SwapPoint, spread.Bps),
		Spread:     spread,
		QuotedAt:   s.now(),
	}, nil
}

// resolveLeg turns a tenor or date into a settlement date. A date wins; a
// tenor alone is resolved against the anchor.
func (s *Service) resolveLeg(a settlement.SpotAnchor, tenor domain.Tenor, date time.Time) (domain.Tenor, time.Time, error) {
	t, err := optionalTenor(tenor)
	if err != nil {
		return "", time.Time{}, err
	}
	if !date.IsZero() {
		return t, calendar.Date(date), nil
	}
	if t == "" {
		return "", time.Time{}, fmt.Errorf("%w: tenor or date required", ErrInvalidTarget)
	}
	settle, err := s.calc.SettlementDate(a, t)
	if err != nil {
		return "", time.Time{}, err
	}
	return t, settle, nil
}

func (s *Service) baseAndSpread(ctx context.Context, product domain.ProductType, pairID, userID string, tenor domain.Tenor) (*domain.MarketRate, quote.Spread, error) {
	base, err := s.marketRates.GetLatest(ctx, pairID, s.source)
	if errors.Is(err, storage.ErrNotFound) {
		s.metrics.RecordQuote(string(product), false)
		return nil, quote.Spread{}, fmt.Errorf("%w: %s/%s", quote.ErrNoMarketRate, pairID, s.source)
	}
	if err != nil {
		return nil, quote.Spread{}, fmt.Errorf("load market rate: %w", err)
	}

	var user *domain.User
	if userID != "" {
		if user, err = s.users.GetByID(ctx, userID); err != nil {
			return nil, quote.Spread{}, fmt.Errorf("user %s: %w", userID, err)
		}
	}

	settings, err := s.spreadSettings.GetActive(ctx, product, pairID)
	if err != nil {
		return nil, quote.Spread{}, fmt.Errorf("load spread settings: %w", err)
	}

	spread := quote.ResolveSpread(values(settings), user, tenor)
	if spread.Source == quote.SourceFallback {
		s.logger.Debug("no spread setting matched",
			zap.String("product", string(product)),
			zap.String("pair", pairID),
			zap.String("user", userID),
		)
	}
	s.metrics.RecordQuote(string(product), true)
	return base, spread, nil
}

func optionalTenor(t domain.Tenor) (domain.Tenor, error) {
	if t == "" {
		return "", nil
	}
	return domain.ParseTenor(string(t))
}
