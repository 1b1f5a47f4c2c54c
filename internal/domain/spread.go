package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductType is the trading product a quote is requested for.
type ProductType string

const (
	ProductSpot    ProductType = "Spot"
	ProductForward ProductType = "Forward"
	ProductSwap    ProductType = "Swap"
	ProductMAR     ProductType = "MAR"
)

// IsValid checks if the product type is a valid value.
func (p ProductType) IsValid() bool {
	switch p {
	case ProductSpot, ProductForward, ProductSwap, ProductMAR:
		return true
	}
	return false
}

// GroupType names the level of the customer hierarchy a spread targets.
type GroupType string

const (
	GroupMajor GroupType = "major"
	GroupMid   GroupType = "mid"
	GroupSub   GroupType = "sub"
)

// SpreadSetting is a spread rule for one product and currency pair, optionally
// restricted to a customer group.
// Corresponds to spread_settings table in PostgreSQL.
type SpreadSetting struct {
	ID             string
	ProductType    ProductType
	CurrencyPairID string
	GroupType      *GroupType                // nil for the groupless default
	GroupValue     *string                   // group identifier (nullable)
	BaseSpread     decimal.Decimal           // bps
	TenorSpreads   map[Tenor]decimal.Decimal // bps per tenor, overrides BaseSpread
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsDefault reports whether the setting applies to every user.
func (s *SpreadSetting) IsDefault() bool {
	return s.GroupType == nil || s.GroupValue == nil || *s.GroupValue == ""
}

// User is a customer or admin account. Group fields drive spread resolution.
type User struct {
	ID         string
	Username   string
	Role       string // admin or client
	MajorGroup *string
	MidGroup   *string
	SubGroup   *string
	IsActive   bool
}

// Group returns the user's membership at the given level, or "" when unset.
func (u *User) Group(level GroupType) string {
	var v *string
	switch level {
	case GroupMajor:
		v = u.MajorGroup
	case GroupMid:
		v = u.MidGroup
	case GroupSub:
		v = u.SubGroup
	}
	if v == nil {
		return ""
	}
	return *v
}
