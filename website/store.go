package website

import "context"

// Store is the interface for website persistence. The mongo implementation
// also satisfies billing.SiteStore so payments settle against the same
// documents.
type Store interface {
	// FindByDriver retrieves a driver's website.
	// Returns ErrWebsiteNotFound if the driver has none.
	FindByDriver(ctx context.Context, driverID string) (*Website, error)

	// FindBySlug retrieves a website by its public slug.
	FindBySlug(ctx context.Context, slug string) (*Website, error)

	// Insert stores a new website. Returns ErrWebsiteExists when the driver
	// already has one.
	Insert(ctx context.Context, site *Website) error

	// Update persists the site's content fields. Billing state embedded in
	// the document is written only through billing.SiteStore operations, so
	// a stale content save cannot clobber a concurrent payment.
	Update(ctx context.Context, site *Website) error

	// Delete removes a driver's website.
	Delete(ctx context.Context, driverID string) error
}
