package billing

import (
	"context"
	"time"

	"github.com/taxisafar/sitekit/catalog"
	"github.com/taxisafar/sitekit/coupon"
)

// PlanCatalog resolves the authoritative price for a theme and duration.
// Implemented by catalog.Service.
type PlanCatalog interface {
	FindActivePlan(ctx context.Context, themeID string, durationMonths int) (catalog.Plan, error)
}

// CouponLedger quotes and records coupon redemptions. Implemented by
// coupon.Service.
type CouponLedger interface {
	Apply(ctx context.Context, code, tenantID string, amount int64) (coupon.Quote, error)
	CommitUsage(ctx context.Context, code, tenantID string) error
}

// SiteStore is the persistence billing needs from the website layer.
// Implemented by website.MongoStore.
type SiteStore interface {
	// SubscriptionState loads the billing view of a driver's site, creating
	// the site if the driver has none yet.
	SubscriptionState(ctx context.Context, driverID string) (*SubscriptionState, error)

	// AppendHistory records a new payment attempt.
	AppendHistory(ctx context.Context, driverID string, entry HistoryEntry) error

	// SettleOrder marks the pending history entry for orderID as paid with
	// paymentID, installs sub as the current subscription, and moves
	// paidTill. The update is conditional on the entry still being
	// unsettled; returns ErrOrderNotFound when nothing matches.
	SettleOrder(ctx context.Context, driverID, orderID, paymentID string, sub Subscription, paidTill time.Time) error

	// MarkOrderFailed flips the pending history entry for orderID to
	// failed. Settled entries are left untouched.
	MarkOrderFailed(ctx context.Context, driverID, orderID string) error

	// RecordExtension appends a settled history entry and moves paidTill,
	// used for manual extensions that bypass the gateway.
	RecordExtension(ctx context.Context, driverID string, entry HistoryEntry, paidTill time.Time) error
}
