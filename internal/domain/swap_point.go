package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SwapPoint is one quoted point on a currency pair's forward curve.
// Corresponds to swap_points table in PostgreSQL.
type SwapPoint struct {
	ID             string           // record id
	CurrencyPairID string           // FK to currency_pairs
	Tenor          Tenor            // quoted tenor
	StartDate      time.Time        // value date of the near side
	SettlementDate time.Time        // value date of the far side
	DaysFromSpot   int              // calendar days from the SPOT date at upload time
	SwapPoint      decimal.Decimal  // forward points, 100 units = 1 rate unit
	BidPrice       *decimal.Decimal // bid points (nullable)
	AskPrice       *decimal.Decimal // ask points (nullable)
	Source         string           // upload source (manual, excel, bloomberg)
	UploadedAt     time.Time        // when the point was saved
	SupersededAt   *time.Time       // set when a newer point for the same tenor is saved
}

// IsCurrent reports whether the point has not been superseded.
func (p *SwapPoint) IsCurrent() bool {
	return p.SupersededAt == nil
}

// OnTnRate is an ON or TN point. These settle before SPOT and are kept apart
// from the forward curve.
// Corresponds to on_tn_rates table in PostgreSQL.
type OnTnRate struct {
	ID             string
	CurrencyPairID string
	Tenor          Tenor // ON or TN
	StartDate      time.Time
	SettlementDate time.Time
	SwapPoint      decimal.Decimal
	BidPrice       *decimal.Decimal
	AskPrice       *decimal.Decimal
	UploadedAt     time.Time
}
