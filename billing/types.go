package billing

import "time"

// Status is the lifecycle state of a payment attempt.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

// Subscription is the active theme purchase on a driver's site. Prices are
// whole rupees.
type Subscription struct {
	ThemeID        string    `bson:"themeId" json:"themeId"`
	DurationMonths int       `bson:"durationMonths" json:"durationMonths"`
	Price          int64     `bson:"price" json:"price"`
	OrderID        string    `bson:"orderId" json:"orderId"`
	PaymentID      string    `bson:"paymentId" json:"paymentId"`
	StartedAt      time.Time `bson:"startedAt" json:"startedAt"`
}

// HistoryEntry is one payment attempt in a site's subscription history. It
// records the full price breakdown so past orders stay auditable after plans
// or coupons change.
type HistoryEntry struct {
	OrderID        string    `bson:"orderId" json:"orderId"`
	PaymentID      string    `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	ThemeID        string    `bson:"themeId" json:"themeId"`
	DurationMonths int       `bson:"durationMonths" json:"durationMonths"`
	BaseAmount     int64     `bson:"baseAmount" json:"baseAmount"`
	UpgradeCredit  int64     `bson:"upgradeCredit,omitempty" json:"upgradeCredit,omitempty"`
	Discount       int64     `bson:"discount,omitempty" json:"discount,omitempty"`
	Amount         int64     `bson:"amount" json:"amount"`
	CouponCode     string    `bson:"couponCode,omitempty" json:"couponCode,omitempty"`
	Note           string    `bson:"note,omitempty" json:"note,omitempty"`
	Status         Status    `bson:"status" json:"status"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	PaidAt         time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
}

// SubscriptionState is the billing view of a driver's site: the current
// subscription, its expiry, and the payment history.
type SubscriptionState struct {
	DriverID     string
	Subscription *Subscription
	PaidTill     time.Time
	History      []HistoryEntry
}

// FindOrder returns the history entry for an order id, newest first wins.
func (s *SubscriptionState) FindOrder(orderID string) *HistoryEntry {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].OrderID == orderID {
			return &s.History[i]
		}
	}
	return nil
}

// FindPayment returns the history entry already holding a payment id.
func (s *SubscriptionState) FindPayment(paymentID string) *HistoryEntry {
	if paymentID == "" {
		return nil
	}
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].PaymentID == paymentID {
			return &s.History[i]
		}
	}
	return nil
}

// ActiveAt reports whether the subscription is paid up at the given instant.
func (s *SubscriptionState) ActiveAt(now time.Time) bool {
	return s.Subscription != nil && s.PaidTill.After(now)
}
