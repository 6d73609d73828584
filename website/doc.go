// Package website manages driver site documents: business profile, tour
// packages, fixed-fare routes, reviews, section toggles and the public QR
// code, one document per driver.
//
// The billing subscription and its payment history are embedded in the same
// document, but the content layer never writes those fields; they move only
// through the billing.SiteStore methods on MongoStore. That split lets a
// dashboard save and a payment confirmation race without losing either
// write.
package website
