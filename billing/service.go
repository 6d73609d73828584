package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taxisafar/sitekit/billing/gateway"
)

// Service prices subscription purchases and reconciles gateway payments into
// site subscription state.
type Service struct {
	plans   PlanCatalog
	coupons CouponLedger
	sites   SiteStore
	gw      gateway.Gateway
	log     *slog.Logger
	now     func() time.Time
}

// Option configures optional Service settings.
type Option func(*Service)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a billing service. All collaborators are required.
func NewService(plans PlanCatalog, coupons CouponLedger, sites SiteStore, gw gateway.Gateway, log *slog.Logger, opts ...Option) *Service {
	if plans == nil || coupons == nil || sites == nil || gw == nil {
		panic("billing: all collaborators are required")
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		plans:   plans,
		coupons: coupons,
		sites:   sites,
		gw:      gw,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OrderParams carries the input for CreateOrder.
type OrderParams struct {
	DriverID       string
	ThemeID        string
	DurationMonths int
	CouponCode     string
}

// OrderQuote is the price breakdown of an order, all amounts in rupees.
type OrderQuote struct {
	BaseAmount    int64  `json:"baseAmount"`
	UpgradeCredit int64  `json:"upgradeCredit"`
	Discount      int64  `json:"discount"`
	CouponCode    string `json:"couponCode,omitempty"`
	Payable       int64  `json:"payable"`
}

// CheckoutOrder is everything the frontend checkout needs to collect a
// payment.
type CheckoutOrder struct {
	OrderID     string     `json:"orderId"`
	Amount      int64      `json:"amount"`
	AmountMinor int64      `json:"amountMinor"`
	Currency    string     `json:"currency"`
	KeyID       string     `json:"keyId"`
	Quote       OrderQuote `json:"quote"`
}

// Quote prices a theme purchase without registering anything: no gateway
// order, no history entry, no coupon usage. The checkout uses it to preview
// the proration credit and coupon discount before the driver commits.
func (s *Service) Quote(ctx context.Context, params OrderParams) (*OrderQuote, error) {
	quote, err := s.price(ctx, params)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// price resolves the plan and computes the full breakdown. The server
// resolves the price from the catalog; client-supplied amounts are never
// trusted. Switching themes while a subscription is still active earns a
// proration credit for the unused time, while renewing the current theme
// charges full price and extends the expiry instead.
func (s *Service) price(ctx context.Context, params OrderParams) (OrderQuote, error) {
	if params.DurationMonths <= 0 {
		return OrderQuote{}, fmt.Errorf("%w: %d months", ErrInvalidDuration, params.DurationMonths)
	}

	plan, err := s.plans.FindActivePlan(ctx, params.ThemeID, params.DurationMonths)
	if err != nil {
		return OrderQuote{}, err
	}

	state, err := s.sites.SubscriptionState(ctx, params.DriverID)
	if err != nil {
		return OrderQuote{}, err
	}

	now := s.now().UTC()
	base := plan.Price

	var credit int64
	if state.ActiveAt(now) && state.Subscription.ThemeID != params.ThemeID {
		credit = ProrationCredit(state.Subscription.Price, state.Subscription.DurationMonths, state.PaidTill.Sub(now))
		// the minimum upgrade fee: a credit never makes a switch free
		if credit > base-MinPayable {
			credit = base - MinPayable
		}
		if credit < 0 {
			credit = 0
		}
	}

	quote, err := s.coupons.Apply(ctx, params.CouponCode, params.DriverID, base-credit)
	if err != nil {
		return OrderQuote{}, err
	}

	if quote.Payable < MinPayable {
		return OrderQuote{}, fmt.Errorf("%w: %d rupees is below the %d rupee minimum", ErrAmountTooLow, quote.Payable, MinPayable)
	}

	return OrderQuote{
		BaseAmount:    base,
		UpgradeCredit: credit,
		Discount:      quote.Discount,
		CouponCode:    quote.Code,
		Payable:       quote.Payable,
	}, nil
}

// CreateOrder prices a theme purchase and registers a payment order with the
// gateway.
func (s *Service) CreateOrder(ctx context.Context, params OrderParams) (*CheckoutOrder, error) {
	quote, err := s.price(ctx, params)
	if err != nil {
		return nil, err
	}

	receipt := "sub_" + params.DriverID
	notes := map[string]string{
		"driverId": params.DriverID,
		"themeId":  params.ThemeID,
	}
	if quote.CouponCode != "" {
		notes["couponCode"] = quote.CouponCode
	}

	order, err := s.gw.CreateOrder(ctx, MinorUnits(quote.Payable), "INR", receipt, notes)
	if err != nil {
		return nil, err
	}

	entry := HistoryEntry{
		OrderID:        order.ID,
		ThemeID:        params.ThemeID,
		DurationMonths: params.DurationMonths,
		BaseAmount:     quote.BaseAmount,
		UpgradeCredit:  quote.UpgradeCredit,
		Discount:       quote.Discount,
		Amount:         quote.Payable,
		CouponCode:     quote.CouponCode,
		Status:         StatusPending,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.sites.AppendHistory(ctx, params.DriverID, entry); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "payment order created",
		"driver_id", params.DriverID,
		"order_id", order.ID,
		"theme_id", params.ThemeID,
		"amount", quote.Payable,
		"upgrade_credit", quote.UpgradeCredit,
		"coupon_code", quote.CouponCode,
	)

	return &CheckoutOrder{
		OrderID:     order.ID,
		Amount:      quote.Payable,
		AmountMinor: order.Amount,
		Currency:    order.Currency,
		KeyID:       s.gw.KeyID(),
		Quote:       quote,
	}, nil
}

// ConfirmParams carries the checkout callback for ConfirmPayment.
type ConfirmParams struct {
	DriverID  string
	OrderID   string
	PaymentID string
	Signature string
}

// Receipt is the outcome of a confirmed payment.
type Receipt struct {
	Subscription Subscription `json:"subscription"`
	PaidTill     time.Time    `json:"paidTill"`
	Amount       int64        `json:"amount"`
	Duplicate    bool         `json:"-"`
}

// ConfirmPayment verifies a gateway callback and settles the matching order.
// The operation is idempotent: replaying a callback that was already
// processed returns the current state without extending the subscription
// again. Signature verification happens before any state is touched.
func (s *Service) ConfirmPayment(ctx context.Context, params ConfirmParams) (*Receipt, error) {
	if err := s.gw.VerifySignature(params.OrderID, params.PaymentID, params.Signature); err != nil {
		s.log.WarnContext(ctx, "payment signature rejected",
			"driver_id", params.DriverID,
			"order_id", params.OrderID,
		)
		return nil, err
	}

	state, err := s.sites.SubscriptionState(ctx, params.DriverID)
	if err != nil {
		return nil, err
	}

	if prev := state.FindPayment(params.PaymentID); prev != nil {
		return s.duplicateReceipt(ctx, state, prev), nil
	}

	entry := state.FindOrder(params.OrderID)
	if entry == nil {
		return nil, ErrOrderNotFound
	}
	if entry.Status == StatusPaid {
		return s.duplicateReceipt(ctx, state, entry), nil
	}

	now := s.now().UTC()
	sub := Subscription{
		ThemeID:        entry.ThemeID,
		DurationMonths: entry.DurationMonths,
		Price:          entry.BaseAmount,
		OrderID:        entry.OrderID,
		PaymentID:      params.PaymentID,
		StartedAt:      now,
	}
	paidTill := ExtendPaidTill(state.PaidTill, now, entry.DurationMonths)

	if err := s.sites.SettleOrder(ctx, params.DriverID, params.OrderID, params.PaymentID, sub, paidTill); err != nil {
		return nil, err
	}

	// a lost usage increment is acceptable, a paid driver without a
	// subscription is not
	if entry.CouponCode != "" {
		if err := s.coupons.CommitUsage(ctx, entry.CouponCode, params.DriverID); err != nil {
			s.log.ErrorContext(ctx, "failed to commit coupon usage",
				"driver_id", params.DriverID,
				"coupon_code", entry.CouponCode,
				"order_id", params.OrderID,
				"error", err,
			)
		}
	}

	s.log.InfoContext(ctx, "payment confirmed",
		"driver_id", params.DriverID,
		"order_id", params.OrderID,
		"payment_id", params.PaymentID,
		"paid_till", paidTill,
	)

	return &Receipt{
		Subscription: sub,
		PaidTill:     paidTill,
		Amount:       entry.Amount,
	}, nil
}

func (s *Service) duplicateReceipt(ctx context.Context, state *SubscriptionState, entry *HistoryEntry) *Receipt {
	s.log.InfoContext(ctx, "duplicate payment confirmation ignored",
		"driver_id", state.DriverID,
		"order_id", entry.OrderID,
	)

	r := &Receipt{
		PaidTill:  state.PaidTill,
		Amount:    entry.Amount,
		Duplicate: true,
	}
	if state.Subscription != nil {
		r.Subscription = *state.Subscription
	}
	return r
}

// MarkFailed records a failed payment attempt reported by the checkout.
func (s *Service) MarkFailed(ctx context.Context, driverID, orderID string) error {
	state, err := s.sites.SubscriptionState(ctx, driverID)
	if err != nil {
		return err
	}

	entry := state.FindOrder(orderID)
	if entry == nil {
		return ErrOrderNotFound
	}
	if entry.Status == StatusPaid {
		return ErrOrderAlreadyPaid
	}

	return s.sites.MarkOrderFailed(ctx, driverID, orderID)
}

// SubscriptionStatus is the billing summary exposed to the dashboard.
type SubscriptionStatus struct {
	Active       bool           `json:"active"`
	Subscription *Subscription  `json:"subscription,omitempty"`
	PaidTill     time.Time      `json:"paidTill,omitempty"`
	DaysLeft     int            `json:"daysLeft"`
	History      []HistoryEntry `json:"history,omitempty"`
}

// Status reports whether a driver's subscription is active and how long it
// has left.
func (s *Service) Status(ctx context.Context, driverID string) (*SubscriptionStatus, error) {
	state, err := s.sites.SubscriptionState(ctx, driverID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	status := &SubscriptionStatus{
		Active:       state.ActiveAt(now),
		Subscription: state.Subscription,
		PaidTill:     state.PaidTill,
		History:      state.History,
	}
	if status.Active {
		status.DaysLeft = int((state.PaidTill.Sub(now) + 24*time.Hour - 1) / (24 * time.Hour))
	}
	return status, nil
}

// Extend grants subscription time without a payment, for support and
// goodwill cases. The extension lands in the history with a zero amount so
// the audit trail stays complete.
func (s *Service) Extend(ctx context.Context, driverID string, months int, note string) (*Receipt, error) {
	if months <= 0 {
		return nil, fmt.Errorf("%w: %d months", ErrInvalidDuration, months)
	}

	state, err := s.sites.SubscriptionState(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if state.Subscription == nil {
		return nil, ErrNoSubscription
	}

	now := s.now().UTC()
	paidTill := ExtendPaidTill(state.PaidTill, now, months)

	entry := HistoryEntry{
		OrderID:        "manual_" + uuid.NewString(),
		ThemeID:        state.Subscription.ThemeID,
		DurationMonths: months,
		Amount:         0,
		Note:           note,
		Status:         StatusPaid,
		CreatedAt:      now,
		PaidAt:         now,
	}
	if err := s.sites.RecordExtension(ctx, driverID, entry, paidTill); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "subscription extended manually",
		"driver_id", driverID,
		"months", months,
		"paid_till", paidTill,
	)

	return &Receipt{
		Subscription: *state.Subscription,
		PaidTill:     paidTill,
	}, nil
}
