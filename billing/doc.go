// Package billing prices theme subscriptions and reconciles payment gateway
// callbacks into site state.
//
// The flow is two-phase. CreateOrder resolves the authoritative price from
// the catalog, applies any proration credit and coupon, and registers a
// pending order with the gateway. ConfirmPayment later verifies the
// checkout signature and settles that order: it installs the subscription,
// extends the paid-till date, and commits the coupon redemption.
//
// Invariants the package maintains:
//
//   - Amounts come from the catalog, never from the client.
//   - ConfirmPayment is idempotent; a replayed callback cannot extend a
//     subscription twice.
//   - Renewals extend from the current expiry, so paying early never costs
//     days.
//   - No order below MinPayable rupees reaches the gateway.
//
// All amounts in this package are whole rupees; conversion to paise happens
// only at the gateway boundary via MinorUnits.
package billing
