// Package gateway adapts the payment provider behind a small interface.
//
// The concrete implementation targets the Razorpay Orders API: orders are
// created server side in minor currency units, the hosted checkout collects
// the payment, and the resulting signature is verified with an HMAC-SHA256
// over "<orderID>|<paymentID>" before any subscription state changes.
package gateway
