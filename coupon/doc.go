// Package coupon implements discount codes with a built-in usage ledger.
//
// A coupon is either a flat rupee discount or a percentage with an optional
// cap. Each coupon tracks how many times it has been redeemed overall and per
// tenant, and both limits are enforced twice: optimistically at quote time
// through Validate, and atomically at redemption time through the store's
// conditional CommitUsage update. Quoting never mutates the ledger.
//
// An empty coupon code is a valid input that yields a zero discount, which
// keeps the checkout path free of special cases.
package coupon
