package domain

import (
	"errors"
	"strconv"
	"strings"
)

// ErrUnrecognizedTenor is returned when a tenor label cannot be parsed.
var ErrUnrecognizedTenor = errors.New("unrecognized tenor")

// Tenor is a standardized forward-maturity label.
type Tenor string

const (
	TenorON   Tenor = "ON"
	TenorTN   Tenor = "TN"
	TenorSpot Tenor = "SPOT"
	Tenor1W   Tenor = "1W"
	Tenor2W   Tenor = "2W"
	Tenor1M   Tenor = "1M"
	Tenor2M   Tenor = "2M"
	Tenor3M   Tenor = "3M"
	Tenor6M   Tenor = "6M"
	Tenor9M   Tenor = "9M"
	Tenor12M  Tenor = "12M"
)

// StandardTenors is the ladder quoted on the admin tenor grid, in settlement order.
var StandardTenors = []Tenor{
	TenorON, TenorTN, TenorSpot,
	Tenor1W, Tenor2W,
	Tenor1M, Tenor2M, Tenor3M, Tenor6M, Tenor9M, Tenor12M,
}

// TenorKind classifies how a tenor's settlement date is derived.
type TenorKind int

const (
	KindUnknown TenorKind = iota
	KindOvernight
	KindTomNext
	KindSpot
	KindWeeks
	KindMonths
)

// ParseTenor normalizes a tenor label. Matching is case-insensitive and
// year tenors are folded into months ("1Y" -> "12M").
func ParseTenor(s string) (Tenor, error) {
	t := Tenor(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case TenorON, TenorTN, TenorSpot:
		return t, nil
	}

	n, unit, ok := splitTenor(string(t))
	if !ok {
		return "", ErrUnrecognizedTenor
	}
	switch unit {
	case 'W', 'M':
		return t, nil
	case 'Y':
		return Tenor(strconv.Itoa(n*12) + "M"), nil
	}
	return "", ErrUnrecognizedTenor
}

// Kind reports how the tenor settles. Unparsed labels report KindUnknown.
func (t Tenor) Kind() TenorKind {
	switch t {
	case TenorON:
		return KindOvernight
	case TenorTN:
		return KindTomNext
	case TenorSpot:
		return KindSpot
	}
	_, unit, ok := splitTenor(string(t))
	if !ok {
		return KindUnknown
	}
	switch unit {
	case 'W':
		return KindWeeks
	case 'M':
		return KindMonths
	}
	return KindUnknown
}

// Count returns the numeric part of a week or month tenor, 0 otherwise.
func (t Tenor) Count() int {
	n, _, ok := splitTenor(string(t))
	if !ok {
		return 0
	}
	return n
}

// IsPreSpot reports whether the tenor settles before SPOT (ON and TN).
func (t Tenor) IsPreSpot() bool {
	return t == TenorON || t == TenorTN
}

// String returns the string representation of Tenor.
func (t Tenor) String() string {
	return string(t)
}

// splitTenor splits "12M" into (12, 'M'). Counts must be positive.
func splitTenor(s string) (int, byte, bool) {
	if len(s) < 2 || s[0] < '0' || s[0] > '9' {
		return 0, 0, false
	}
	unit := s[len(s)-1]
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return 0, 0, false
	}
	switch unit {
	case 'W', 'M', 'Y':
		return n, unit, true
	}
	return 0, 0, false
}
