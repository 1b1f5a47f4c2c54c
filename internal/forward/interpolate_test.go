package forward

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fx-forward-desk/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pt(tenor domain.Tenor, days int, sp string) CurvePoint {
	return CurvePoint{Tenor: tenor, Days: days, SwapPoint: d(sp)}
}

func usdKrwCurve() []CurvePoint {
	return []CurvePoint{
		pt(domain.Tenor3M, 91, "-210.5"),
		SpotPoint(),
		pt(domain.Tenor1M, 30, "-70"),
		pt(domain.Tenor6M, 182, "-400"),
		pt(domain.Tenor2M, 61, "-140"),
	}
}

func TestInterpolate_MidSegment(t *testing.T) {
	points := []CurvePoint{SpotPoint(), pt(domain.Tenor1M, 30, "12.0")}

	r, err := Interpolate(15, points)
	require.NoError(t, err)

	assert.True(t, r.SwapPoint.Equal(d("6")), "got %s", r.SwapPoint)
	assert.Equal(t, MethodInterpolated, r.Method)
	assert.Equal(t, 0, r.Lower.Days)
	assert.Equal(t, 30, r.Upper.Days)
}

func TestTheoreticalForwardRate(t *testing.T) {
	points := []CurvePoint{SpotPoint(), pt(domain.Tenor1M, 30, "12.0")}

	r, err := TheoreticalForwardRate(d("1350.00"), 15, points)
	require.NoError(t, err)
	assert.True(t, r.ForwardRate.Equal(d("1350.06")), "got %s", r.ForwardRate)
}

func TestInterpolate_SpotIsAlwaysZero(t *testing.T) {
	curves := [][]CurvePoint{
		nil,
		{pt(domain.Tenor1M, 30, "55")},
		usdKrwCurve(),
		{pt(domain.Tenor1M, 30, "5"), pt(domain.Tenor2M, 60, "9")}, // no SPOT row
	}

	for _, c := range curves {
		r, err := TheoreticalForwardRate(d("1382.45"), 0, c)
		require.NoError(t, err)
		assert.True(t, r.SwapPoint.IsZero())
		assert.True(t, r.ForwardRate.Equal(d("1382.45")))
		assert.Equal(t, MethodSpot, r.Method)
	}
}

func TestInterpolate_Errors(t *testing.T) {
	_, err := Interpolate(-1, usdKrwCurve())
	assert.ErrorIs(t, err, ErrBeforeSpot)

	_, err = Interpolate(10, []CurvePoint{SpotPoint()})
	assert.ErrorIs(t, err, ErrInsufficientCurveData)

	_, err = Interpolate(10, nil)
	assert.ErrorIs(t, err, ErrInsufficientCurveData)
}

func TestInterpolate_ExactMatch(t *testing.T) {
	r, err := Interpolate(91, usdKrwCurve())
	require.NoError(t, err)

	assert.Equal(t, MethodExact, r.Method)
	assert.True(t, r.SwapPoint.Equal(d("-210.5")))
	assert.Equal(t, domain.Tenor3M, r.Lower.Tenor)
}

func TestInterpolate_Extrapolation(t *testing.T) {
	t.Run("beyond the last point", func(t *testing.T) {
		r, err := Interpolate(273, usdKrwCurve())
		require.NoError(t, err)

		// slope of 3M-6M segment: (-400 - -210.5) / 91
		want := d("-210.5").Add(d("-189.5").Mul(d("182")).Div(d("91")))
		assert.Equal(t, MethodExtrapolated, r.Method)
		assert.True(t, r.SwapPoint.Equal(want), "got %s want %s", r.SwapPoint, want)
		assert.Equal(t, 91, r.Lower.Days)
		assert.Equal(t, 182, r.Upper.Days)
	})

	t.Run("before the first point", func(t *testing.T) {
		points := []CurvePoint{pt(domain.Tenor1M, 30, "10"), pt(domain.Tenor2M, 60, "20")}
		r, err := Interpolate(15, points)
		require.NoError(t, err)

		assert.Equal(t, MethodExtrapolated, r.Method)
		assert.True(t, r.SwapPoint.Equal(d("5")), "got %s", r.SwapPoint)
	})
}

func TestInterpolate_DegenerateSegment(t *testing.T) {
	points := []CurvePoint{pt(domain.Tenor1M, 30, "12"), pt(domain.Tenor("30D"), 30, "14")}

	r, err := Interpolate(45, points)
	require.NoError(t, err)
	assert.True(t, r.SwapPoint.Equal(d("12")), "got %s", r.SwapPoint)
}

func TestInterpolate_NoOvershootInsideSegments(t *testing.T) {
	points := usdKrwCurve()
	sorted, err := Interpolate(1, points) // forces a sorted bracket lookup
	require.NoError(t, err)
	require.Equal(t, 0, sorted.Lower.Days)

	for target := 1; target <= 182; target++ {
		r, err := Interpolate(target, points)
		require.NoError(t, err)
		require.NotEqual(t, MethodExtrapolated, r.Method, "target %d", target)

		lo := decimal.Min(r.Lower.SwapPoint, r.Upper.SwapPoint)
		hi := decimal.Max(r.Lower.SwapPoint, r.Upper.SwapPoint)
		assert.True(t, r.SwapPoint.GreaterThanOrEqual(lo) && r.SwapPoint.LessThanOrEqual(hi),
			"target %d: %s outside [%s, %s]", target, r.SwapPoint, lo, hi)
		assert.True(t, r.Lower.Days <= target && target <= r.Upper.Days, "target %d", target)
	}
}

func TestInterpolate_DoesNotMutateInput(t *testing.T) {
	points := usdKrwCurve()
	first := points[0]

	_, err := Interpolate(45, points)
	require.NoError(t, err)
	assert.Equal(t, first, points[0])
}

func TestRate(t *testing.T) {
	assert.True(t, Rate(d("1385.00"), d("-70")).Equal(d("1384.30")))
	assert.True(t, Rate(d("1385.00"), decimal.Zero).Equal(d("1385")))
}
