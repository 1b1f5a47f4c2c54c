package pricing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/forward"
	"fx-forward-desk/internal/idgen"
	"fx-forward-desk/internal/settlement"
	"fx-forward-desk/internal/storage"
)

// SwapPointInput is one uploaded quote for a tenor.
type SwapPointInput struct {
	PairID    string
	Tenor     domain.Tenor
	SwapPoint decimal.Decimal
	Bid       *decimal.Decimal
	Ask       *decimal.Decimal
	Source    string // manual when empty
}

// SaveSwapPoint stores a curve point. Its dates and day count are computed
// from the current anchor and the previous point for the tenor is superseded.
func (s *Service) SaveSwapPoint(ctx context.Context, in SwapPointInput) (*domain.SwapPoint, error) {
	tenor, err := domain.ParseTenor(string(in.Tenor))
	if err != nil {
		return nil, err
	}
	if tenor.IsPreSpot() {
		return nil, fmt.Errorf("%w: %s", ErrPreSpotTenor, tenor)
	}
	if tenor == domain.TenorSpot {
		return nil, fmt.Errorf("%w: SPOT is fixed at zero", storage.ErrInvalidInput)
	}
	if _, err := s.pairs.GetByID(ctx, in.PairID); err != nil {
		return nil, fmt.Errorf("currency pair %s: %w", in.PairID, err)
	}

	a := s.SpotAnchor()
	start, settle, days, err := s.tenorDates(a, tenor)
	if err != nil {
		return nil, err
	}

	source := in.Source
	if source == "" {
		source = "manual"
	}
	uploadedAt := s.now().UTC()

	p := &domain.SwapPoint{
		ID:             idgen.SwapPointID(in.PairID, tenor, uploadedAt),
		CurrencyPairID: in.PairID,
		Tenor:          tenor,
		StartDate:      start,
		SettlementDate: settle,
		DaysFromSpot:   days,
		SwapPoint:      in.SwapPoint,
		BidPrice:       in.Bid,
		AskPrice:       in.Ask,
		Source:         source,
		UploadedAt:     uploadedAt,
	}
	if err := s.swapPoints.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save swap point: %w", err)
	}

	s.metrics.SwapPointSaves.WithLabelValues("curve").Inc()
	s.logger.Info("swap point saved",
		zap.String("pair", in.PairID),
		zap.String("tenor", string(tenor)),
		zap.Int("days_from_spot", days),
		zap.String("swap_point", in.SwapPoint.String()),
	)
	return p, nil
}

// SaveOnTnRate stores an ON or TN point with its dates for the current anchor.
func (s *Service) SaveOnTnRate(ctx context.Context, in SwapPointInput) (*domain.OnTnRate, error) {
	tenor, err := domain.ParseTenor(string(in.Tenor))
	if err != nil {
		return nil, err
	}
	if !tenor.IsPreSpot() {
		return nil, fmt.Errorf("%w: %s is not ON or TN", storage.ErrInvalidInput, tenor)
	}
	if _, err := s.pairs.GetByID(ctx, in.PairID); err != nil {
		return nil, fmt.Errorf("currency pair %s: %w", in.PairID, err)
	}

	a := s.SpotAnchor()
	start, settle, _, err := s.tenorDates(a, tenor)
	if err != nil {
		return nil, err
	}
	uploadedAt := s.now().UTC()

	r := &domain.OnTnRate{
		ID:             idgen.SwapPointID(in.PairID, tenor, uploadedAt),
		CurrencyPairID: in.PairID,
		Tenor:          tenor,
		StartDate:      start,
		SettlementDate: settle,
		SwapPoint:      in.SwapPoint,
		BidPrice:       in.Bid,
		AskPrice:       in.Ask,
		UploadedAt:     uploadedAt,
	}
	if err := s.onTnRates.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("save on/tn rate: %w", err)
	}

	s.metrics.SwapPointSaves.WithLabelValues("on_tn").Inc()
	s.logger.Info("on/tn rate saved",
		zap.String("pair", in.PairID),
		zap.String("tenor", string(tenor)),
		zap.String("swap_point", in.SwapPoint.String()),
	)
	return r, nil
}

// CurrentSwapPoints returns the pair's current rows with DaysFromSpot
// recomputed for today, ordered by settlement date.
func (s *Service) CurrentSwapPoints(ctx context.Context, pairID string) ([]*domain.SwapPoint, error) {
	rows, err := s.swapPoints.GetByCurrencyPair(ctx, pairID)
	if err != nil {
		return nil, fmt.Errorf("load swap points: %w", err)
	}
	a := s.SpotAnchor()
	for _, r := range rows {
		r.DaysFromSpot = settlement.DaysFromSpotDate(a, r.SettlementDate)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].SettlementDate.Before(rows[j].SettlementDate)
	})
	return rows, nil
}

func (s *Service) tenorDates(a settlement.SpotAnchor, tenor domain.Tenor) (start, settle time.Time, days int, err error) {
	if start, err = s.calc.StartDate(a, tenor); err != nil {
		return
	}
	if settle, err = s.calc.SettlementDate(a, tenor); err != nil {
		return
	}
	days, err = s.calc.DaysFromSpot(a, tenor)
	return
}

// CalculateRequest drives the admin forward calculator: an explicit spot
// rate and a tenor grid rather than stored data.
type CalculateRequest struct {
	Today    time.Time // trade date; zero means the current one
	SpotRate decimal.Decimal
	Points   map[domain.Tenor]decimal.Decimal
	Target   Target
}

// Calculation is the calculator's answer plus the grid it used.
type Calculation struct {
	Anchor settlement.SpotAnchor
	Curve  []forward.CurvePoint
	Result forward.Result
}

// Calculate prices SpotRate forward to Target over the given grid. ON, TN and
// SPOT entries in the grid are ignored; the SPOT point is always zero.
func (s *Service) Calculate(req CalculateRequest) (*Calculation, error) {
	a := s.SpotAnchor()
	if !req.Today.IsZero() {
		a = s.calc.Anchor(req.Today)
	}

	curve := []forward.CurvePoint{forward.SpotPoint()}
	for raw, sp := range req.Points {
		tenor, err := domain.ParseTenor(string(raw))
		if err != nil {
			return nil, fmt.Errorf("tenor %q: %w", raw, err)
		}
		if tenor.IsPreSpot() || tenor == domain.TenorSpot {
			continue
		}
		days, err := s.calc.DaysFromSpot(a, tenor)
		if err != nil {
			return nil, err
		}
		curve = append(curve, forward.CurvePoint{Tenor: tenor, Days: days, SwapPoint: sp})
	}
	sort.Slice(curve, func(i, j int) bool {
		return curve[i].Days < curve[j].Days
	})

	days := req.Target.Days
	if !req.Target.Date.IsZero() {
		days = settlement.DaysFromSpotDate(a, req.Target.Date)
	}

	res, err := forward.TheoreticalForwardRate(req.SpotRate, days, curve)
	if err != nil {
		s.metrics.RecordForward("error")
		return nil, err
	}
	s.metrics.RecordForward(string(res.Method))
	return &Calculation{Anchor: a, Curve: curve, Result: res}, nil
}
