package forward

import (
	"sort"
	"time"

	"fx-forward-desk/internal/calendar"
	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/settlement"
)

// BuildCurve turns stored swap points into a SPOT-anchored curve.
//
// Days are recomputed from each row's settlement date against the current
// anchor, so rows saved on an earlier trade date are repositioned. ON/TN,
// superseded and pre-SPOT rows are dropped. When several rows share a
// settlement date the most recently uploaded wins. The synthetic SPOT point
// is always present.
func BuildCurve(a settlement.SpotAnchor, rows []domain.SwapPoint) []CurvePoint {
	latest := make(map[time.Time]domain.SwapPoint, len(rows))
	for _, row := range rows {
		if row.Tenor.IsPreSpot() || !row.IsCurrent() || row.SettlementDate.IsZero() {
			continue
		}
		key := calendar.Date(row.SettlementDate)
		if prev, ok := latest[key]; ok && !row.UploadedAt.After(prev.UploadedAt) {
			continue
		}
		latest[key] = row
	}

	curve := make([]CurvePoint, 0, len(latest)+1)
	curve = append(curve, SpotPoint())
	for settle, row := range latest {
		days := settlement.DaysFromSpotDate(a, settle)
		if days <= 0 {
			continue
		}
		curve = append(curve, CurvePoint{
			Tenor:     row.Tenor,
			Days:      days,
			SwapPoint: row.SwapPoint,
		})
	}

	sort.Slice(curve, func(i, j int) bool {
		return curve[i].Days < curve[j].Days
	})
	return curve
}

// SwapPointForDate resolves the swap point for a settlement date. Dates
// before SPOT go through the ON/TN chain, which may be nil when the caller
// has none; later dates go through the curve.
func SwapPointForDate(a settlement.SpotAnchor, date time.Time, curve []CurvePoint, chain *OnTnChain) (Result, error) {
	days := settlement.DaysFromSpotDate(a, date)
	if days >= 0 {
		return Interpolate(days, curve)
	}

	if chain == nil {
		return Result{}, ErrMissingOnTnData
	}
	sp, err := chain.SwapPointAt(settlement.DaysBetween(a.Today, date))
	if err != nil {
		return Result{}, err
	}
	return Result{Days: days, SwapPoint: sp, Method: MethodOnTn}, nil
}
