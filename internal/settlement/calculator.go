// Package settlement computes value dates for the FX tenor ladder.
//
// USD/KRW settles only when both Seoul and New York are open. Business days
// are counted on the KR calendar and a result landing on a US holiday is
// pushed to the next KR business day, repeatedly if needed.
package settlement

import (
	"fmt"
	"math"
	"time"

	"fx-forward-desk/internal/calendar"
	"fx-forward-desk/internal/domain"
)

// spotLag is the number of business days from trade date to SPOT.
const spotLag = 2

// SpotAnchor pins every day offset to one trade date. Offsets computed
// against one anchor are meaningless against another, so callers rebuild it
// at the start of each calculation.
type SpotAnchor struct {
	Today time.Time
	Spot  time.Time
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLenientTenors makes unrecognized tenors settle on SPOT instead of failing.
func WithLenientTenors() Option {
	return func(c *Calculator) {
		c.lenient = true
	}
}

// Calculator derives settlement dates from the KR and US calendars.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	kr      calendar.HolidayCalendar
	us      calendar.HolidayCalendar
	lenient bool
}

// New creates a Calculator. A nil calendar means weekends only.
func New(kr, us calendar.HolidayCalendar, opts ...Option) *Calculator {
	c := &Calculator{kr: kr, us: us}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default creates a Calculator over the built-in holiday tables.
func Default(opts ...Option) *Calculator {
	return New(calendar.KRCalendar(), calendar.USCalendar(), opts...)
}

// AddBusinessDays steps forward n KR business days from date. If the result
// is a US holiday it is pushed one more KR business day, and the check repeats.
func (c *Calculator) AddBusinessDays(date time.Time, n int) time.Time {
	d := calendar.Date(date)
	for n > 0 {
		d = d.AddDate(0, 0, 1)
		if calendar.IsBusinessDay(c.kr, d) {
			n--
		}
	}
	if c.isUSHoliday(d) {
		return c.AddBusinessDays(d, 1)
	}
	return d
}

// SpotDate returns T+2 business days from today.
func (c *Calculator) SpotDate(today time.Time) time.Time {
	return c.AddBusinessDays(today, spotLag)
}

// Anchor normalizes today and computes its SPOT date.
func (c *Calculator) Anchor(today time.Time) SpotAnchor {
	t := calendar.Date(today)
	return SpotAnchor{Today: t, Spot: c.SpotDate(t)}
}

// OvernightDate returns the ON settlement date, T+1 business day.
func (c *Calculator) OvernightDate(a SpotAnchor) time.Time {
	return c.AddBusinessDays(a.Today, 1)
}

// SettlementDate returns the far value date of tenor.
func (c *Calculator) SettlementDate(a SpotAnchor, tenor domain.Tenor) (time.Time, error) {
	t, err := c.normalize(tenor)
	if err != nil {
		return time.Time{}, err
	}

	switch t.Kind() {
	case domain.KindOvernight:
		return c.OvernightDate(a), nil
	case domain.KindTomNext, domain.KindSpot:
		return a.Spot, nil
	case domain.KindWeeks:
		return c.rollForward(a.Spot.AddDate(0, 0, 7*t.Count())), nil
	case domain.KindMonths:
		return c.monthEnd(a.Spot, t.Count()), nil
	}
	// lenient fallback
	return a.Spot, nil
}

// StartDate returns the near value date of tenor: today for ON, T+1 for TN,
// SPOT for everything else.
func (c *Calculator) StartDate(a SpotAnchor, tenor domain.Tenor) (time.Time, error) {
	t, err := c.normalize(tenor)
	if err != nil {
		return time.Time{}, err
	}

	switch t.Kind() {
	case domain.KindOvernight:
		return a.Today, nil
	case domain.KindTomNext:
		return c.OvernightDate(a), nil
	}
	return a.Spot, nil
}

// DaysFromSpot returns the tenor's day count. ON counts today to the ON
// date, TN counts the ON date to SPOT, and every other tenor counts from SPOT.
func (c *Calculator) DaysFromSpot(a SpotAnchor, tenor domain.Tenor) (int, error) {
	t, err := c.normalize(tenor)
	if err != nil {
		return 0, err
	}

	switch t.Kind() {
	case domain.KindOvernight:
		return DaysBetween(a.Today, c.OvernightDate(a)), nil
	case domain.KindTomNext:
		return DaysBetween(c.OvernightDate(a), a.Spot), nil
	case domain.KindSpot, domain.KindUnknown:
		return 0, nil
	}

	settle, err := c.SettlementDate(a, t)
	if err != nil {
		return 0, err
	}
	return DaysBetween(a.Spot, settle), nil
}

// TenorDate is one row of the tenor ladder.
type TenorDate struct {
	Tenor          domain.Tenor
	StartDate      time.Time
	SettlementDate time.Time
	DaysFromSpot   int
}

// Ladder resolves every tenor against the anchor. A nil list means the
// standard ladder.
func (c *Calculator) Ladder(a SpotAnchor, tenors []domain.Tenor) ([]TenorDate, error) {
	if tenors == nil {
		tenors = domain.StandardTenors
	}

	rows := make([]TenorDate, 0, len(tenors))
	for _, tenor := range tenors {
		t, err := c.normalize(tenor)
		if err != nil {
			return nil, fmt.Errorf("tenor %q: %w", tenor, err)
		}
		start, err := c.StartDate(a, t)
		if err != nil {
			return nil, err
		}
		settle, err := c.SettlementDate(a, t)
		if err != nil {
			return nil, err
		}
		days, err := c.DaysFromSpot(a, t)
		if err != nil {
			return nil, err
		}
		rows = append(rows, TenorDate{
			Tenor:          t,
			StartDate:      start,
			SettlementDate: settle,
			DaysFromSpot:   days,
		})
	}
	return rows, nil
}

// IsSettlementDay reports whether both markets are open on date.
func (c *Calculator) IsSettlementDay(date time.Time) bool {
	return calendar.IsBusinessDay(c.kr, date) && !c.isUSHoliday(date)
}

// normalize parses the tenor label. In lenient mode unknown labels come back
// unchanged and report KindUnknown.
func (c *Calculator) normalize(tenor domain.Tenor) (domain.Tenor, error) {
	t, err := domain.ParseTenor(string(tenor))
	if err != nil {
		if c.lenient {
			return tenor, nil
		}
		return "", fmt.Errorf("%w: %q", ErrUnrecognizedTenor, string(tenor))
	}
	return t, nil
}

// monthEnd moves n months past spot, snaps to the last calendar day of that
// month, then rolls backward until both markets are open.
func (c *Calculator) monthEnd(spot time.Time, n int) time.Time {
	d := time.Date(spot.Year(), spot.Month()+time.Month(n)+1, 0, 0, 0, 0, 0, time.UTC)
	for !c.IsSettlementDay(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// rollForward moves date to the next KR business day, applying the US push.
func (c *Calculator) rollForward(date time.Time) time.Time {
	d := calendar.Date(date)
	for !calendar.IsBusinessDay(c.kr, d) {
		d = d.AddDate(0, 0, 1)
	}
	if c.isUSHoliday(d) {
		return c.AddBusinessDays(d, 1)
	}
	return d
}

func (c *Calculator) isUSHoliday(d time.Time) bool {
	return c.us != nil && c.us.IsHoliday(d)
}

// DaysBetween returns the calendar-day distance from a to b.
func DaysBetween(a, b time.Time) int {
	diff := calendar.Date(b).Sub(calendar.Date(a))
	return int(math.Round(diff.Hours() / 24))
}

// AddDays adds n calendar days to the civil date of d.
func AddDays(d time.Time, n int) time.Time {
	return calendar.Date(d).AddDate(0, 0, n)
}

// DateFromSpot converts a day offset from SPOT to a calendar date.
func DateFromSpot(a SpotAnchor, days int) time.Time {
	return AddDays(a.Spot, days)
}

// DaysFromSpotDate converts a calendar date to its offset from SPOT.
// Dates before SPOT are negative.
func DaysFromSpotDate(a SpotAnchor, date time.Time) int {
	return DaysBetween(a.Spot, date)
}
