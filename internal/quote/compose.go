package quote

import (
	"errors"

	"github.com/shopspring/decimal"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/forward"
)

// ErrNoMarketRate is returned when no base rate exists for a pair and source.
// Callers show the quote as unavailable rather than inventing a number.
var ErrNoMarketRate = errors.New("no market rate available")

var bpsPerUnit = decimal.NewFromInt(100)

// CustomerRate is a two-way quote shown to a customer.
type CustomerRate struct {
	BuyRate   decimal.Decimal
	SellRate  decimal.Decimal
	SpreadBps decimal.Decimal
	SwapPoint decimal.Decimal // zero for spot quotes
	Base      domain.MarketRate
}

// SpreadDelta converts a spread in bps to a rate delta.
func SpreadDelta(bps decimal.Decimal) decimal.Decimal {
	return bps.Div(bpsPerUnit)
}

// Compose widens the base rate by the spread: buy moves up, sell moves down.
func Compose(base domain.MarketRate, spreadBps decimal.Decimal) CustomerRate {
	delta := SpreadDelta(spreadBps)
	return CustomerRate{
		BuyRate:   base.BuyRate.Add(delta),
		SellRate:  base.SellRate.Sub(delta),
		SpreadBps: spreadBps,
		SwapPoint: decimal.Zero,
		Base:      base,
	}
}

// ForwardCustomerRate composes an outright forward quote: the spread-adjusted
// spot quote shifted by swapPoint/100 on both sides.
func ForwardCustomerRate(base domain.MarketRate, swapPoint, spreadBps decimal.Decimal) CustomerRate {
	r := Compose(base, spreadBps)
	r.BuyRate = forward.Rate(r.BuyRate, swapPoint)
	r.SellRate = forward.Rate(r.SellRate, swapPoint)
	r.SwapPoint = swapPoint
	return r
}

// SwapQuote holds both legs of an FX swap.
type SwapQuote struct {
	Near CustomerRate
	Far  CustomerRate
}

// SwapLegs prices a swap. The spread is charged once, on the far leg; the
// near leg is the base rate shifted by its own swap points.
func SwapLegs(base domain.MarketRate, nearSwapPoint, farSwapPoint, spreadBps decimal.Decimal) SwapQuote {
	return SwapQuote{
		Near: ForwardCustomerRate(base, nearSwapPoint, decimal.Zero),
		Far:  ForwardCustomerRate(base, farSwapPoint, spreadBps),
	}
}
