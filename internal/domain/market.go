package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Market rate sources.
const (
	RateSourceInfomax   = "infomax"
	RateSourceBloomberg = "bloomberg"
	RateSourceManual    = "manual"
)

// CurrencyPair is a tradable pair such as USD/KRW.
type CurrencyPair struct {
	ID            string
	Symbol        string // e.g. "USD/KRW"
	BaseCurrency  string
	QuoteCurrency string
	IsActive      bool
}

// MarketRate is a base two-way rate for a pair from one source.
// The most recent row per (pair, source) is the live spot rate.
type MarketRate struct {
	ID             string
	CurrencyPairID string
	BuyRate        decimal.Decimal
	SellRate       decimal.Decimal
	Source         string
	Timestamp      time.Time
}

// Mid returns the midpoint of the buy and sell rates.
func (r *MarketRate) Mid() decimal.Decimal {
	return r.BuyRate.Add(r.SellRate).Div(decimal.NewFromInt(2))
}
