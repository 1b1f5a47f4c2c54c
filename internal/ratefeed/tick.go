// Package ratefeed moves market-rate ticks between Kafka and the rate stores.
package ratefeed

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fx-forward-desk/internal/domain"
)

// ErrBadTick is returned for a message that can never be stored. Such
// messages are skipped rather than retried.
var ErrBadTick = errors.New("bad tick")

// Tick is the wire form of one market-rate update. Rates travel as JSON
// strings so no precision is lost.
type Tick struct {
	Pair   string          `json:"pair"` // symbol such as "USD/KRW", or a pair id
	Buy    decimal.Decimal `json:"buy"`
	Sell   decimal.Decimal `json:"sell"`
	Source string          `json:"source"`
	TS     time.Time       `json:"ts"`
}

// Validate checks a tick before it reaches a store.
func (t *Tick) Validate() error {
	switch {
	case strings.TrimSpace(t.Pair) == "":
		return fmt.Errorf("%w: missing pair", ErrBadTick)
	case !t.Buy.IsPositive() || !t.Sell.IsPositive():
		return fmt.Errorf("%w: non-positive rate buy=%s sell=%s", ErrBadTick, t.Buy, t.Sell)
	case t.Buy.LessThan(t.Sell):
		return fmt.Errorf("%w: buy %s below sell %s", ErrBadTick, t.Buy, t.Sell)
	case t.TS.IsZero():
		return fmt.Errorf("%w: missing timestamp", ErrBadTick)
	}
	return nil
}

// DecodeTick parses and validates a message value. A missing source means
// infomax; a missing timestamp falls back to fallbackTS.
func DecodeTick(data []byte, fallbackTS time.Time) (Tick, error) {
	var t Tick
	if err := json.Unmarshal(data, &t); err != nil {
		return Tick{}, fmt.Errorf("%w: %v", ErrBadTick, err)
	}
	if t.Source == "" {
		t.Source = domain.RateSourceInfomax
	}
	if t.TS.IsZero() {
		t.TS = fallbackTS
	}
	t.TS = t.TS.UTC()
	if err := t.Validate(); err != nil {
		return Tick{}, err
	}
	return t, nil
}

// EncodeTick renders a tick for the wire.
func EncodeTick(t Tick) ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal tick: %w", err)
	}
	return data, nil
}
