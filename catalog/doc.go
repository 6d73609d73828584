// Package catalog manages the theme catalog: the set of website templates a
// driver can purchase, each carrying its own price plans keyed by duration.
//
// The catalog is the pricing source of truth. Billing resolves every order
// amount through FindActivePlan rather than trusting client-supplied prices,
// and a theme must expose exactly one active plan per duration for that
// lookup to be unambiguous.
//
// # Usage
//
//	store := catalog.NewMongoStore(db)
//	svc := catalog.NewService(store, blobs, logger,
//		catalog.WithCache(catalog.NewRedisCache(rdb, 5*time.Minute)),
//	)
//
//	plan, err := svc.FindActivePlan(ctx, "classic-cab", 6)
//
// Reads go through an optional cache; every write invalidates it. A YAML
// seeder (Seed) loads an initial catalog on deployment and skips themes that
// already exist.
package catalog
