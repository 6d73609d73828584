package coupon

import (
	"time"
)

// Type discriminates how a coupon's value is applied.
type Type string

const (
	TypeFlat    Type = "FLAT"    // value is a fixed rupee amount
	TypePercent Type = "PERCENT" // value is a percentage of the order
)

// Valid reports whether the type is a known discount kind.
func (t Type) Valid() bool {
	return t == TypeFlat || t == TypePercent
}

// Coupon is a discount code with a usage ledger. UsedCount tracks global
// redemptions; Usages tracks redemptions per tenant so per-user limits can be
// enforced without a separate collection.
type Coupon struct {
	ID                string         `bson:"-" json:"id"`
	Code              string         `bson:"code" json:"code"`
	Type              Type           `bson:"type" json:"type"`
	Value             int64          `bson:"value" json:"value"`
	MaxDiscount       int64          `bson:"maxDiscount" json:"maxDiscount"`
	MinOrderValue     int64          `bson:"minOrderValue" json:"minOrderValue"`
	Description       string         `bson:"description" json:"description"`
	StartsAt          time.Time      `bson:"startsAt" json:"startsAt"`
	ExpiresAt         time.Time      `bson:"expiresAt" json:"expiresAt"`
	Active            bool           `bson:"isActive" json:"isActive"`
	TotalUsageLimit   int            `bson:"totalUsageLimit" json:"totalUsageLimit"`
	PerUserUsageLimit int            `bson:"perUserUsageLimit" json:"perUserUsageLimit"`
	UsedCount         int            `bson:"usedCount" json:"usedCount"`
	Usages            map[string]int `bson:"usedByUsers" json:"-"`
	CreatedAt         time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// Validate checks the coupon against an order amount for a tenant at a given
// instant. Checks run in a fixed order so the caller always sees the most
// fundamental failure first.
func (c *Coupon) Validate(tenantID string, amount int64, now time.Time) error {
	if !c.Active {
		return ErrCouponInactive
	}
	if !c.StartsAt.IsZero() && now.Before(c.StartsAt) {
		return ErrCouponNotStarted
	}
	if !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt) {
		return ErrCouponExpired
	}
	if c.MinOrderValue > 0 && amount < c.MinOrderValue {
		return ErrMinOrderNotMet
	}
	if c.TotalUsageLimit > 0 && c.UsedCount >= c.TotalUsageLimit {
		return ErrTotalLimitReached
	}
	if c.PerUserUsageLimit > 0 && c.Usages[tenantID] >= c.PerUserUsageLimit {
		return ErrPerUserLimitReached
	}
	return nil
}

// Discount computes the rupee discount this coupon grants on an order amount.
// The result never exceeds the amount itself.
func (c *Coupon) Discount(amount int64) int64 {
	if amount <= 0 {
		return 0
	}

	var d int64
	switch c.Type {
	case TypeFlat:
		d = c.Value
	case TypePercent:
		// round half up; amounts are always non-negative here
		d = (amount*c.Value + 50) / 100
		if c.MaxDiscount > 0 && d > c.MaxDiscount {
			d = c.MaxDiscount
		}
	}

	if d < 0 {
		d = 0
	}
	if d > amount {
		d = amount
	}
	return d
}
