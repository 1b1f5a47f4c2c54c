package forward

import "errors"

var (
	// ErrInsufficientCurveData is returned when fewer than two curve points are known.
	ErrInsufficientCurveData = errors.New("insufficient curve data: at least 2 points required")

	// ErrBeforeSpot is returned when the curve is asked for a date before SPOT.
	ErrBeforeSpot = errors.New("target is before spot")

	// ErrMissingOnTnData is returned when the ON or TN row needed by the chain is absent.
	ErrMissingOnTnData = errors.New("missing ON/TN data")

	// ErrOutOfRange is returned when a chain date falls outside [today, spot].
	ErrOutOfRange = errors.New("date outside today-spot range")
)
