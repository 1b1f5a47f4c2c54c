package pricing

import "errors"

var (
	// ErrPreSpotTenor is returned when an ON or TN point is saved as a curve point.
	ErrPreSpotTenor = errors.New("ON/TN points belong to the on/tn store")

	// ErrInvalidTarget is returned when a target carries neither a date nor a usable day count.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrUnknownProduct is returned for a product type outside Spot, Forward, Swap and MAR.
	ErrUnknownProduct = errors.New("unknown product type")
)
