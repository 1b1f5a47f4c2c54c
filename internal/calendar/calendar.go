// Package calendar answers business-day questions for the KR and US markets.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the civil date format used by holiday tables and APIs.
const DateLayout = "2006-01-02"

// Jurisdiction identifies a holiday calendar.
type Jurisdiction string

const (
	KR Jurisdiction = "KR"
	US Jurisdiction = "US"
)

// HolidayCalendar reports non-business dates for one jurisdiction.
// Weekends are handled by IsBusinessDay and need not be listed.
type HolidayCalendar interface {
	Jurisdiction() Jurisdiction
	IsHoliday(date time.Time) bool
}

// Static is a HolidayCalendar backed by a fixed set of dates.
type Static struct {
	jurisdiction Jurisdiction
	holidays     map[string]struct{}
}

var _ HolidayCalendar = (*Static)(nil)

// NewStatic builds a calendar from YYYY-MM-DD strings.
func NewStatic(j Jurisdiction, dates ...string) (*Static, error) {
	c := &Static{
		jurisdiction: j,
		holidays:     make(map[string]struct{}, len(dates)),
	}
	if err := c.add(dates); err != nil {
		return nil, err
	}
	return c, nil
}

// Merge returns a new calendar holding the receiver's holidays plus dates.
func (c *Static) Merge(dates ...string) (*Static, error) {
	merged := &Static{
		jurisdiction: c.jurisdiction,
		holidays:     make(map[string]struct{}, len(c.holidays)+len(dates)),
	}
	for k := range c.holidays {
		merged.holidays[k] = struct{}{}
	}
	if err := merged.add(dates); err != nil {
		return nil, err
	}
	return merged, nil
}

func (c *Static) add(dates []string) error {
	for _, d := range dates {
		t, err := time.Parse(DateLayout, d)
		if err != nil {
			return fmt.Errorf("parse %s holiday %q: %w", c.jurisdiction, d, err)
		}
		c.holidays[t.Format(DateLayout)] = struct{}{}
	}
	return nil
}

// Jurisdiction returns the calendar's market.
func (c *Static) Jurisdiction() Jurisdiction {
	return c.jurisdiction
}

// IsHoliday reports whether the civil date of t is listed.
func (c *Static) IsHoliday(t time.Time) bool {
	_, ok := c.holidays[Date(t).Format(DateLayout)]
	return ok
}

// Len returns the number of listed holidays.
func (c *Static) Len() int {
	return len(c.holidays)
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsBusinessDay checks weekends and the calendar's holiday set.
func IsBusinessDay(cal HolidayCalendar, t time.Time) bool {
	if IsWeekend(t) {
		return false
	}
	return cal == nil || !cal.IsHoliday(t)
}

// Date truncates t to its civil date at UTC midnight. The wall-clock
// fields are kept, so a 09:00 KST timestamp maps to the same KST day.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a civil date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
