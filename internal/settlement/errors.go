package settlement

import "fx-forward-desk/internal/domain"

// ErrUnrecognizedTenor is returned when a tenor label is not part of the ladder grammar.
var ErrUnrecognizedTenor = domain.ErrUnrecognizedTenor
