package api

import (
	"time"

	"github.com/shopspring/decimal"

	"fx-forward-desk/internal/calendar"
	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/forward"
	"fx-forward-desk/internal/pricing"
	"fx-forward-desk/internal/settlement"
)

// Dates travel as YYYY-MM-DD strings; rates and points as decimal strings.

func dateString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(calendar.DateLayout)
}

type PairResponse struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	BaseCurrency  string `json:"baseCurrency"`
	QuoteCurrency string `json:"quoteCurrency"`
}

type SpotResponse struct {
	Today     string `json:"today"`
	Overnight string `json:"overnight"`
	Spot      string `json:"spot"`
}

type TenorRow struct {
	Tenor          domain.Tenor `json:"tenor"`
	StartDate      string       `json:"startDate"`
	SettlementDate string       `json:"settlementDate"`
	DaysFromSpot   int          `json:"daysFromSpot"`
}

type LadderResponse struct {
	Today  string     `json:"today"`
	Spot   string     `json:"spot"`
	Tenors []TenorRow `json:"tenors"`
}

func newLadderResponse(a settlement.SpotAnchor, rows []settlement.TenorDate) LadderResponse {
	resp := LadderResponse{
		Today:  dateString(a.Today),
		Spot:   dateString(a.Spot),
		Tenors: make([]TenorRow, 0, len(rows)),
	}
	for _, r := range rows {
		resp.Tenors = append(resp.Tenors, TenorRow{
			Tenor:          r.Tenor,
			StartDate:      dateString(r.StartDate),
			SettlementDate: dateString(r.SettlementDate),
			DaysFromSpot:   r.DaysFromSpot,
		})
	}
	return resp
}

type ConvertResponse struct {
	Today        string `json:"today"`
	Spot         string `json:"spot"`
	Date         string `json:"date"`
	DaysFromSpot int    `json:"daysFromSpot"`
}

type CurvePointDTO struct {
	Tenor     domain.Tenor    `json:"tenor"`
	Days      int             `json:"days"`
	SwapPoint decimal.Decimal `json:"swapPoint"`
}

func newCurvePoints(points []forward.CurvePoint) []CurvePointDTO {
	out := make([]CurvePointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, CurvePointDTO{Tenor: p.Tenor, Days: p.Days, SwapPoint: p.SwapPoint})
	}
	return out
}

// ForwardResponse is a swap point, and a forward rate when a spot was given.
type ForwardResponse struct {
	PairID         string           `json:"pairId,omitempty"`
	SettlementDate string           `json:"settlementDate"`
	DaysFromSpot   int              `json:"daysFromSpot"`
	SwapPoint      decimal.Decimal  `json:"swapPoint"`
	SpotRate       *decimal.Decimal `json:"spotRate,omitempty"`
	ForwardRate    *decimal.Decimal `json:"forwardRate,omitempty"`
	Method         forward.Method   `json:"method"`
	Lower          *CurvePointDTO   `json:"lower,omitempty"`
	Upper          *CurvePointDTO   `json:"upper,omitempty"`
}

func newForwardResponse(a settlement.SpotAnchor, pairID string, spot *decimal.Decimal, res forward.Result) ForwardResponse {
	resp := ForwardResponse{
		PairID:         pairID,
		SettlementDate: dateString(settlement.DateFromSpot(a, res.Days)),
		DaysFromSpot:   res.Days,
		SwapPoint:      res.SwapPoint,
		Method:         res.Method,
	}
	if spot != nil {
		fwd := res.ForwardRate
		resp.SpotRate, resp.ForwardRate = spot, &fwd
	}
	if res.Method == forward.MethodInterpolated || res.Method == forward.MethodExtrapolated {
		resp.Lower = &CurvePointDTO{Tenor: res.Lower.Tenor, Days: res.Lower.Days, SwapPoint: res.Lower.SwapPoint}
		resp.Upper = &CurvePointDTO{Tenor: res.Upper.Tenor, Days: res.Upper.Days, SwapPoint: res.Upper.SwapPoint}
	}
	return resp
}

// CalculateBody is the admin calculator input. Exactly one of TargetDate
// and TargetDays must be set.
type CalculateBody struct {
	Today      string                           `json:"today"`
	SpotRate   decimal.Decimal                  `json:"spotRate"`
	Points     map[domain.Tenor]decimal.Decimal `json:"points"`
	TargetDate string                           `json:"targetDate"`
	TargetDays *int                             `json:"targetDays"`
}

type CalculateResponse struct {
	Today  string          `json:"today"`
	Spot   string          `json:"spot"`
	Curve  []CurvePointDTO `json:"curve"`
	Result ForwardResponse `json:"result"`
}

// QuoteResponse is a customer quote. When Available is false the pair has no
// base rate and every rate field is omitted.
type QuoteResponse struct {
	Available      bool               `json:"available"`
	Product        domain.ProductType `json:"product"`
	PairID         string             `json:"pairId"`
	Tenor          domain.Tenor       `json:"tenor,omitempty"`
	SettlementDate string             `json:"settlementDate,omitempty"`
	Method         forward.Method     `json:"method,omitempty"`
	Buy            *decimal.Decimal   `json:"buy,omitempty"`
	Sell           *decimal.Decimal   `json:"sell,omitempty"`
	SwapPoint      *decimal.Decimal   `json:"swapPoint,omitempty"`
	SpreadBps      *decimal.Decimal   `json:"spreadBps,omitempty"`
	SpreadSource   string             `json:"spreadSource,omitempty"`
	BaseBuy        *decimal.Decimal   `json:"baseBuy,omitempty"`
	BaseSell       *decimal.Decimal   `json:"baseSell,omitempty"`
	RateSource     string             `json:"rateSource,omitempty"`
	QuotedAt       *time.Time         `json:"quotedAt,omitempty"`
}

func newQuoteResponse(q *pricing.Quote) QuoteResponse {
	r := q.Rate
	buy, sell, sp, bps := r.BuyRate, r.SellRate, r.SwapPoint, r.SpreadBps
	baseBuy, baseSell := r.Base.BuyRate, r.Base.SellRate
	quotedAt := q.QuotedAt
	resp := QuoteResponse{
		Available:      true,
		Product:        q.Product,
		PairID:         q.PairID,
		Tenor:          q.Tenor,
		SettlementDate: dateString(q.SettlementDate),
		Method:         q.Method,
		Buy:            &buy,
		Sell:           &sell,
		SpreadBps:      &bps,
		SpreadSource:   string(q.Spread.Source),
		BaseBuy:        &baseBuy,
		BaseSell:       &baseSell,
		RateSource:     r.Base.Source,
		QuotedAt:       &quotedAt,
	}
	if q.Product != domain.ProductSpot && q.Product != domain.ProductMAR {
		resp.SwapPoint = &sp
	}
	return resp
}

type SwapLegResponse struct {
	Tenor          domain.Tenor    `json:"tenor,omitempty"`
	SettlementDate string          `json:"settlementDate"`
	Method         forward.Method  `json:"method"`
	SwapPoint      decimal.Decimal `json:"swapPoint"`
	Buy            decimal.Decimal `json:"buy"`
	Sell           decimal.Decimal `json:"sell"`
}

type SwapQuoteResponse struct {
	Available    bool             `json:"available"`
	PairID       string           `json:"pairId"`
	Near         *SwapLegResponse `json:"near,omitempty"`
	Far          *SwapLegResponse `json:"far,omitempty"`
	SpreadBps    *decimal.Decimal `json:"spreadBps,omitempty"`
	SpreadSource string           `json:"spreadSource,omitempty"`
	QuotedAt     *time.Time       `json:"quotedAt,omitempty"`
}

func newSwapQuoteResponse(q *pricing.SwapQuote) SwapQuoteResponse {
	bps := q.Spread.Bps
	quotedAt := q.QuotedAt
	return SwapQuoteResponse{
		Available: true,
		PairID:    q.PairID,
		Near: &SwapLegResponse{
			Tenor:          q.NearTenor,
			SettlementDate: dateString(q.NearDate),
			Method:         q.NearMethod,
			SwapPoint:      q.Legs.Near.SwapPoint,
			Buy:            q.Legs.Near.BuyRate,
			Sell:           q.Legs.Near.SellRate,
		},
		Far: &SwapLegResponse{
			Tenor:          q.FarTenor,
			SettlementDate: dateString(q.FarDate),
			Method:         q.FarMethod,
			SwapPoint:      q.Legs.Far.SwapPoint,
			Buy:            q.Legs.Far.BuyRate,
			Sell:           q.Legs.Far.SellRate,
		},
		SpreadBps:    &bps,
		SpreadSource: string(q.Spread.Source),
		QuotedAt:     &quotedAt,
	}
}

// SwapPointBody is an uploaded swap point or ON/TN rate.
type SwapPointBody struct {
	Tenor     string           `json:"tenor" binding:"required"`
	SwapPoint decimal.Decimal  `json:"swapPoint"`
	Bid       *decimal.Decimal `json:"bid"`
	Ask       *decimal.Decimal `json:"ask"`
	Source    string           `json:"source"`
}

type SwapPointResponse struct {
	ID             string           `json:"id"`
	PairID         string           `json:"pairId"`
	Tenor          domain.Tenor     `json:"tenor"`
	StartDate      string           `json:"startDate,omitempty"`
	SettlementDate string           `json:"settlementDate"`
	DaysFromSpot   *int             `json:"daysFromSpot,omitempty"`
	SwapPoint      decimal.Decimal  `json:"swapPoint"`
	Bid            *decimal.Decimal `json:"bid,omitempty"`
	Ask            *decimal.Decimal `json:"ask,omitempty"`
	Source         string           `json:"source,omitempty"`
	UploadedAt     time.Time        `json:"uploadedAt"`
}

func newSwapPointResponse(p *domain.SwapPoint) SwapPointResponse {
	days := p.DaysFromSpot
	return SwapPointResponse{
		ID:             p.ID,
		PairID:         p.CurrencyPairID,
		Tenor:          p.Tenor,
		StartDate:      dateString(p.StartDate),
		SettlementDate: dateString(p.SettlementDate),
		DaysFromSpot:   &days,
		SwapPoint:      p.SwapPoint,
		Bid:            p.BidPrice,
		Ask:            p.AskPrice,
		Source:         p.Source,
		UploadedAt:     p.UploadedAt,
	}
}

func newOnTnResponse(r *domain.OnTnRate) SwapPointResponse {
	return SwapPointResponse{
		ID:             r.ID,
		PairID:         r.CurrencyPairID,
		Tenor:          r.Tenor,
		StartDate:      dateString(r.StartDate),
		SettlementDate: dateString(r.SettlementDate),
		SwapPoint:      r.SwapPoint,
		Bid:            r.BidPrice,
		Ask:            r.AskPrice,
		UploadedAt:     r.UploadedAt,
	}
}
