// Package quote composes customer-facing rates from a base market rate,
// swap points and a spread resolved for the requesting user.
package quote

import (
	"github.com/shopspring/decimal"

	"fx-forward-desk/internal/domain"
)

// DefaultSpreadBps applies when no setting matches the user.
var DefaultSpreadBps = decimal.NewFromInt(10)

// Spread match priorities. Higher wins.
const (
	PriorityNone    = -1
	PriorityDefault = 0
	PriorityMajor   = 1
	PriorityMid     = 2
	PrioritySub     = 3
)

// SpreadSource tells where a resolved spread came from.
type SpreadSource string

const (
	SourceTenor    SpreadSource = "tenor"
	SourceBase     SpreadSource = "base"
	SourceFallback SpreadSource = "fallback"
)

// Spread is a resolved spread in basis points.
type Spread struct {
	Bps      decimal.Decimal
	Priority int
	Source   SpreadSource
	Setting  *domain.SpreadSetting // nil for the fallback
}

// ResolveSpread picks the best setting for user: sub-group match beats mid,
// mid beats major, major beats the groupless default. On a tie the earlier
// setting wins. A tenor override on the winning setting replaces its base
// spread. With no match the result is DefaultSpreadBps.
func ResolveSpread(settings []domain.SpreadSetting, user *domain.User, tenor domain.Tenor) Spread {
	best := PriorityNone
	var winner *domain.SpreadSetting

	for i := range settings {
		s := &settings[i]
		if !s.IsActive {
			continue
		}
		p := matchPriority(s, user)
		if p > best {
			best, winner = p, s
		}
	}

	if winner == nil {
		return Spread{Bps: DefaultSpreadBps, Priority: PriorityNone, Source: SourceFallback}
	}

	if tenor != "" && len(winner.TenorSpreads) > 0 {
		key := tenor
		if t, err := domain.ParseTenor(string(tenor)); err == nil {
			key = t
		}
		if bps, ok := winner.TenorSpreads[key]; ok {
			return Spread{Bps: bps, Priority: best, Source: SourceTenor, Setting: winner}
		}
	}
	return Spread{Bps: winner.BaseSpread, Priority: best, Source: SourceBase, Setting: winner}
}

func matchPriority(s *domain.SpreadSetting, user *domain.User) int {
	if s.IsDefault() {
		return PriorityDefault
	}
	if user == nil {
		return PriorityNone
	}

	level := *s.GroupType
	if user.Group(level) != *s.GroupValue {
		return PriorityNone
	}
	switch level {
	case domain.GroupSub:
		return PrioritySub
	case domain.GroupMid:
		return PriorityMid
	case domain.GroupMajor:
		return PriorityMajor
	}
	return PriorityNone
}
