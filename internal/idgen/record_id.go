// Package idgen derives record identifiers. Hashes are base58 encoded so IDs
// stay short and URL safe.
package idgen

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/mr-tron/base58"

	"fx-forward-desk/internal/domain"
)

// SwapPointID computes a deterministic id for a swap-point upload.
// Formula: base58(SHA256(pair|tenor|uploaded_at_ns))
func SwapPointID(pairID string, tenor domain.Tenor, uploadedAt time.Time) string {
	return hash(fmt.Sprintf("%s|%s|%d", pairID, tenor, uploadedAt.UnixNano()))
}

// TickID computes a deterministic id for a market-rate tick, so a tick
// redelivered by the feed maps to the same record.
// Formula: base58(SHA256(pair|source|ts_ns))
func TickID(pairID, source string, ts time.Time) string {
	return hash(fmt.Sprintf("%s|%s|%d", pairID, source, ts.UnixNano()))
}

func hash(data string) string {
	sum := sha256.Sum256([]byte(data))
	return base58.Encode(sum[:])
}
