package coupon

import "context"

// Store is the interface for coupon persistence.
type Store interface {
	// FindByCode retrieves a coupon by its normalized code.
	// Returns ErrCouponNotFound if no coupon matches.
	FindByCode(ctx context.Context, code string) (*Coupon, error)

	// Find retrieves a coupon by database id.
	Find(ctx context.Context, id string) (*Coupon, error)

	// List returns a page of coupons ordered by creation time, newest first,
	// plus the total count.
	List(ctx context.Context, offset, limit int) ([]Coupon, int64, error)

	// Insert stores a new coupon. Returns ErrCouponExists when the code is
	// taken.
	Insert(ctx context.Context, coupon *Coupon) error

	// Update replaces the stored coupon identified by coupon.ID.
	Update(ctx context.Context, coupon *Coupon) error

	// Delete removes a coupon by database id.
	Delete(ctx context.Context, id string) error

	// CommitUsage atomically increments the global and per-tenant usage
	// counters, but only while both remain under their limits. Returns
	// ErrUsageCommitFailed when the conditional update matches nothing.
	CommitUsage(ctx context.Context, code, tenantID string) error
}
