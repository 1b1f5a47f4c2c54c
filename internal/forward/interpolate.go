// Package forward interpolates swap points on a forward curve and derives
// theoretical forward rates from them.
package forward

import (
	"sort"

	"github.com/shopspring/decimal"

	"fx-forward-desk/internal/domain"
)

// pointsPerUnit converts swap points to rate units.
var pointsPerUnit = decimal.NewFromInt(100)

// Method records how a swap point was obtained.
type Method string

const (
	MethodSpot         Method = "spot"
	MethodExact        Method = "exact"
	MethodInterpolated Method = "interpolated"
	MethodExtrapolated Method = "extrapolated"
	MethodOnTn         Method = "on_tn"
)

// CurvePoint is one known swap point, positioned by days from SPOT.
type CurvePoint struct {
	Tenor     domain.Tenor
	Days      int
	SwapPoint decimal.Decimal
}

// SpotPoint is the synthetic zero point every curve is anchored on.
func SpotPoint() CurvePoint {
	return CurvePoint{Tenor: domain.TenorSpot, Days: 0, SwapPoint: decimal.Zero}
}

// Result is an interpolated swap point. ForwardRate is set only by
// TheoreticalForwardRate. Lower and Upper are the segment used and are
// zero for MethodSpot and MethodOnTn.
type Result struct {
	Days        int
	SwapPoint   decimal.Decimal
	ForwardRate decimal.Decimal
	Lower       CurvePoint
	Upper       CurvePoint
	Method      Method
}

// Interpolate returns the swap point at target days from SPOT.
//
// Targets outside the known curve are extrapolated along the nearest
// segment and reported with MethodExtrapolated.
func Interpolate(target int, points []CurvePoint) (Result, error) {
	if target == 0 {
		return Result{Days: 0, SwapPoint: decimal.Zero, Method: MethodSpot}, nil
	}
	if target < 0 {
		return Result{}, ErrBeforeSpot
	}
	if len(points) < 2 {
		return Result{}, ErrInsufficientCurveData
	}

	sorted := make([]CurvePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Days < sorted[j].Days
	})

	// First index with days >= target.
	i := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].Days >= target
	})

	if i < len(sorted) && sorted[i].Days == target {
		p := sorted[i]
		return Result{Days: target, SwapPoint: p.SwapPoint, Lower: p, Upper: p, Method: MethodExact}, nil
	}

	var lower, upper CurvePoint
	method := MethodInterpolated
	switch {
	case i <= 0:
		lower, upper = sorted[0], sorted[1]
		method = MethodExtrapolated
	case i >= len(sorted):
		lower, upper = sorted[len(sorted)-2], sorted[len(sorted)-1]
		method = MethodExtrapolated
	default:
		lower, upper = sorted[i-1], sorted[i]
	}

	return Result{
		Days:      target,
		SwapPoint: linear(target, lower, upper),
		Lower:     lower,
		Upper:     upper,
		Method:    method,
	}, nil
}

// linear evaluates the line through lower and upper at target. A segment
// with equal days yields lower's value.
func linear(target int, lower, upper CurvePoint) decimal.Decimal {
	if lower.Days == upper.Days {
		return lower.SwapPoint
	}
	span := decimal.NewFromInt(int64(upper.Days - lower.Days))
	offset := decimal.NewFromInt(int64(target - lower.Days))
	return lower.SwapPoint.Add(upper.SwapPoint.Sub(lower.SwapPoint).Mul(offset).Div(span))
}

// Rate applies swap points to a spot rate: spot + points/100.
func Rate(spotRate, swapPoint decimal.Decimal) decimal.Decimal {
	return spotRate.Add(swapPoint.Div(pointsPerUnit))
}

// TheoreticalForwardRate interpolates the curve at target and applies the
// result to spotRate. At SPOT the forward rate is spotRate exactly.
func TheoreticalForwardRate(spotRate decimal.Decimal, target int, points []CurvePoint) (Result, error) {
	r, err := Interpolate(target, points)
	if err != nil {
		return Result{}, err
	}
	if r.Method == MethodSpot {
		r.ForwardRate = spotRate
		return r, nil
	}
	r.ForwardRate = Rate(spotRate, r.SwapPoint)
	return r, nil
}
