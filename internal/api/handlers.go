package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fx-forward-desk/internal/calendar"
	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/pricing"
	"fx-forward-desk/internal/quote"
	"fx-forward-desk/internal/settlement"
)

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// optionalDate parses a YYYY-MM-DD query value; empty yields the zero time.
func optionalDate(c *gin.Context, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, nil
	}
	d, err := calendar.ParseDate(raw)
	if err != nil {
		return time.Time{}, badRequest("%s: %v", key, err)
	}
	return d, nil
}

// anchor uses ?today= when present, otherwise the current trade date.
func (s *Server) anchor(c *gin.Context) (settlement.SpotAnchor, error) {
	today, err := optionalDate(c, "today")
	if err != nil {
		return settlement.SpotAnchor{}, err
	}
	if today.IsZero() {
		return s.svc.SpotAnchor(), nil
	}
	return s.svc.Calculator().Anchor(today), nil
}

// target reads exactly one of ?date= and ?days=.
func target(c *gin.Context) (pricing.Target, error) {
	date, err := optionalDate(c, "date")
	if err != nil {
		return pricing.Target{}, err
	}
	rawDays := c.Query("days")
	switch {
	case !date.IsZero() && rawDays != "":
		return pricing.Target{}, badRequest("date and days are exclusive")
	case !date.IsZero():
		return pricing.AtDate(date), nil
	case rawDays != "":
		n, err := strconv.Atoi(rawDays)
		if err != nil {
			return pricing.Target{}, badRequest("days: %v", err)
		}
		return pricing.AtDays(n), nil
	}
	return pricing.Target{}, badRequest("date or days is required")
}

func optionalTenor(c *gin.Context, key string) (domain.Tenor, error) {
	raw := c.Query(key)
	if raw == "" {
		return "", nil
	}
	return domain.ParseTenor(raw)
}

func parseProduct(raw string) (domain.ProductType, error) {
	for _, p := range []domain.ProductType{domain.ProductSpot, domain.ProductForward, domain.ProductSwap, domain.ProductMAR} {
		if strings.EqualFold(raw, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", pricing.ErrUnknownProduct, raw)
}

func (s *Server) listPairs(c *gin.Context) {
	pairs, err := s.svc.ActivePairs(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]PairResponse, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, PairResponse{ID: p.ID, Symbol: p.Symbol, BaseCurrency: p.BaseCurrency, QuoteCurrency: p.QuoteCurrency})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) spotDate(c *gin.Context) {
	a, err := s.anchor(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, SpotResponse{
		Today:     dateString(a.Today),
		Overnight: dateString(s.svc.Calculator().OvernightDate(a)),
		Spot:      dateString(a.Spot),
	})
}

func (s *Server) tenorLadder(c *gin.Context) {
	a, err := s.anchor(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	rows, err := s.svc.Calculator().Ladder(a, nil)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newLadderResponse(a, rows))
}

func (s *Server) convert(c *gin.Context) {
	a, err := s.anchor(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	t, err := target(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := ConvertResponse{Today: dateString(a.Today), Spot: dateString(a.Spot)}
	if !t.Date.IsZero() {
		resp.Date = dateString(t.Date)
		resp.DaysFromSpot = settlement.DaysFromSpotDate(a, t.Date)
	} else {
		resp.Date = dateString(settlement.DateFromSpot(a, t.Days))
		resp.DaysFromSpot = t.Days
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) calculate(c *gin.Context) {
	var body CalculateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, badRequest("%v", err))
		return
	}

	req := pricing.CalculateRequest{SpotRate: body.SpotRate, Points: body.Points}
	if body.Today != "" {
		d, err := calendar.ParseDate(body.Today)
		if err != nil {
			s.fail(c, badRequest("today: %v", err))
			return
		}
		req.Today = d
	}
	switch {
	case body.TargetDate != "" && body.TargetDays != nil:
		s.fail(c, badRequest("targetDate and targetDays are exclusive"))
		return
	case body.TargetDate != "":
		d, err := calendar.ParseDate(body.TargetDate)
		if err != nil {
			s.fail(c, badRequest("targetDate: %v", err))
			return
		}
		req.Target = pricing.AtDate(d)
	case body.TargetDays != nil:
		req.Target = pricing.AtDays(*body.TargetDays)
	default:
		s.fail(c, badRequest("targetDate or targetDays is required"))
		return
	}

	calc, err := s.svc.Calculate(req)
	if err != nil {
		s.fail(c, err)
		return
	}
	spot := body.SpotRate
	c.JSON(http.StatusOK, CalculateResponse{
		Today:  dateString(calc.Anchor.Today),
		Spot:   dateString(calc.Anchor.Spot),
		Curve:  newCurvePoints(calc.Curve),
		Result: newForwardResponse(calc.Anchor, "", &spot, calc.Result),
	})
}

// forwardRate returns the swap point at the target and, with ?spot=, the
// theoretical forward rate.
func (s *Server) forwardRate(c *gin.Context) {
	pairID := c.Param("pair")
	t, err := target(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	a := s.svc.SpotAnchor()

	var spot *decimal.Decimal
	if raw := c.Query("spot"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			s.fail(c, badRequest("spot: %v", err))
			return
		}
		spot = &v
	}

	ctx := c.Request.Context()
	if spot != nil {
		res, err := s.svc.TheoreticalForwardRate(ctx, pairID, *spot, t)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, newForwardResponse(a, pairID, spot, res))
		return
	}
	res, err := s.svc.InterpolateForPair(ctx, pairID, t)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newForwardResponse(a, pairID, nil, res))
}

func (s *Server) customerRate(c *gin.Context) {
	product, err := parseProduct(c.Param("product"))
	if err != nil {
		s.fail(c, err)
		return
	}
	pairID := c.Param("pair")

	q, err := s.svc.CustomerRate(c.Request.Context(), pricing.CustomerRateRequest{
		Product: product,
		PairID:  pairID,
		UserID:  c.GetHeader(UserHeader),
		Tenor:   domain.Tenor(c.Query("tenor")),
	})
	if errors.Is(err, quote.ErrNoMarketRate) {
		c.JSON(http.StatusOK, QuoteResponse{Available: false, Product: product, PairID: pairID})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newQuoteResponse(q))
}

// forwardQuote prices an outright forward by ?tenor= or ?date=.
func (s *Server) forwardQuote(c *gin.Context) {
	pairID := c.Param("pair")
	tenor, err := optionalTenor(c, "tenor")
	if err != nil {
		s.fail(c, err)
		return
	}
	date, err := optionalDate(c, "date")
	if err != nil {
		s.fail(c, err)
		return
	}
	if tenor == "" && date.IsZero() {
		s.fail(c, badRequest("tenor or date is required"))
		return
	}

	q, err := s.svc.ForwardQuote(c.Request.Context(), pricing.ForwardQuoteRequest{
		PairID: pairID,
		UserID: c.GetHeader(UserHeader),
		Tenor:  tenor,
		Date:   date,
	})
	if errors.Is(err, quote.ErrNoMarketRate) {
		c.JSON(http.StatusOK, QuoteResponse{Available: false, Product: domain.ProductForward, PairID: pairID})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newQuoteResponse(q))
}

// swapQuote prices a swap; each leg is ?near=/?far= tenors or
// ?nearDate=/?farDate= dates.
func (s *Server) swapQuote(c *gin.Context) {
	pairID := c.Param("pair")
	req := pricing.SwapQuoteRequest{PairID: pairID, UserID: c.GetHeader(UserHeader)}

	var err error
	if req.NearTenor, err = optionalTenor(c, "near"); err != nil {
		s.fail(c, err)
		return
	}
	if req.FarTenor, err = optionalTenor(c, "far"); err != nil {
		s.fail(c, err)
		return
	}
	if req.NearDate, err = optionalDate(c, "nearDate"); err != nil {
		s.fail(c, err)
		return
	}
	if req.FarDate, err = optionalDate(c, "farDate"); err != nil {
		s.fail(c, err)
		return
	}
	if (req.NearTenor == "" && req.NearDate.IsZero()) || (req.FarTenor == "" && req.FarDate.IsZero()) {
		s.fail(c, badRequest("both legs need a tenor or a date"))
		return
	}

	q, err := s.svc.SwapQuote(c.Request.Context(), req)
	if errors.Is(err, quote.ErrNoMarketRate) {
		c.JSON(http.StatusOK, SwapQuoteResponse{Available: false, PairID: pairID})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newSwapQuoteResponse(q))
}

func bindSwapPoint(c *gin.Context) (pricing.SwapPointInput, error) {
	var body SwapPointBody
	if err := c.ShouldBindJSON(&body); err != nil {
		return pricing.SwapPointInput{}, badRequest("%v", err)
	}
	tenor, err := domain.ParseTenor(body.Tenor)
	if err != nil {
		return pricing.SwapPointInput{}, err
	}
	return pricing.SwapPointInput{
		PairID:    c.Param("pair"),
		Tenor:     tenor,
		SwapPoint: body.SwapPoint,
		Bid:       body.Bid,
		Ask:       body.Ask,
		Source:    body.Source,
	}, nil
}

func (s *Server) saveSwapPoint(c *gin.Context) {
	in, err := bindSwapPoint(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	p, err := s.svc.SaveSwapPoint(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSwapPointResponse(p))
}

func (s *Server) listSwapPoints(c *gin.Context) {
	points, err := s.svc.CurrentSwapPoints(c.Request.Context(), c.Param("pair"))
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]SwapPointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, newSwapPointResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) saveOnTn(c *gin.Context) {
	in, err := bindSwapPoint(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	r, err := s.svc.SaveOnTnRate(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newOnTnResponse(r))
}
