package forward

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/settlement"
)

// TenorDays resolves a tenor's day count against an anchor.
// Implemented by *settlement.Calculator.
type TenorDays interface {
	DaysFromSpot(a settlement.SpotAnchor, tenor domain.Tenor) (int, error)
}

// OnTnChain is the swap-point path between today and SPOT. SPOT is zero and
// today sits at -(ON + TN).
type OnTnChain struct {
	OnSwapPoint decimal.Decimal
	TnSwapPoint decimal.Decimal
	OnDays      int // today to the ON date
	TnDays      int // ON date to SPOT
}

// NewOnTnChain picks the latest ON and TN rows and sizes them against the anchor.
func NewOnTnChain(a settlement.SpotAnchor, rows []domain.OnTnRate, days TenorDays) (*OnTnChain, error) {
	var on, tn *domain.OnTnRate
	for i := range rows {
		r := &rows[i]
		switch r.Tenor {
		case domain.TenorON:
			if on == nil || r.UploadedAt.After(on.UploadedAt) {
				on = r
			}
		case domain.TenorTN:
			if tn == nil || r.UploadedAt.After(tn.UploadedAt) {
				tn = r
			}
		}
	}
	if on == nil || tn == nil {
		return nil, ErrMissingOnTnData
	}

	onDays, err := days.DaysFromSpot(a, domain.TenorON)
	if err != nil {
		return nil, fmt.Errorf("ON days: %w", err)
	}
	tnDays, err := days.DaysFromSpot(a, domain.TenorTN)
	if err != nil {
		return nil, fmt.Errorf("TN days: %w", err)
	}

	return &OnTnChain{
		OnSwapPoint: on.SwapPoint,
		TnSwapPoint: tn.SwapPoint,
		OnDays:      onDays,
		TnDays:      tnDays,
	}, nil
}

// TotalDays is the calendar-day distance from today to SPOT.
func (c *OnTnChain) TotalDays() int {
	return c.OnDays + c.TnDays
}

// SwapPointAt returns the swap point daysFromToday days after today.
// The ON date carries -TN; other days inside the range lie on the line from
// today's value to zero at SPOT. Days outside [0, TotalDays] are rejected.
func (c *OnTnChain) SwapPointAt(daysFromToday int) (decimal.Decimal, error) {
	total := c.TotalDays()
	if daysFromToday < 0 || daysFromToday > total {
		return decimal.Zero, fmt.Errorf("%w: day %d not in [0, %d]", ErrOutOfRange, daysFromToday, total)
	}

	today := c.OnSwapPoint.Add(c.TnSwapPoint).Neg()
	switch daysFromToday {
	case 0:
		return today, nil
	case total:
		return decimal.Zero, nil
	case c.OnDays:
		return c.TnSwapPoint.Neg(), nil
	}

	remaining := decimal.NewFromInt(int64(total - daysFromToday))
	return today.Mul(remaining).Div(decimal.NewFromInt(int64(total))), nil
}
