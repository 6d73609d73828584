package gateway

import "context"

// Order is a payment order registered with the gateway. Amount is in minor
// units (paise for INR).
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway is the interface billing uses to talk to the payment provider.
type Gateway interface {
	// CreateOrder registers a new order with the provider. Amount is in
	// minor units and must be at least MinOrderAmount.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*Order, error)

	// VerifySignature checks the provider's payment signature for an order
	// and payment id pair. Returns ErrSignatureMismatch on failure.
	VerifySignature(orderID, paymentID, signature string) error

	// KeyID returns the public key identifier the frontend checkout needs.
	KeyID() string
}
