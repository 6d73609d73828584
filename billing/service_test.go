package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taxisafar/sitekit/billing"
	"github.com/taxisafar/sitekit/billing/gateway"
	"github.com/taxisafar/sitekit/catalog"
	"github.com/taxisafar/sitekit/coupon"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) FindActivePlan(ctx context.Context, themeID string, durationMonths int) (catalog.Plan, error) {
	args := m.Called(ctx, themeID, durationMonths)
	return args.Get(0).(catalog.Plan), args.Error(1)
}

type mockCoupons struct {
	mock.Mock
}

func (m *mockCoupons) Apply(ctx context.Context, code, tenantID string, amount int64) (coupon.Quote, error) {
	args := m.Called(ctx, code, tenantID, amount)
	return args.Get(0).(coupon.Quote), args.Error(1)
}

func (m *mockCoupons) CommitUsage(ctx context.Context, code, tenantID string) error {
	return m.Called(ctx, code, tenantID).Error(0)
}

// passthroughCoupons quotes without a discount, like an empty coupon code.
type passthroughCoupons struct{}

func (passthroughCoupons) Apply(ctx context.Context, code, tenantID string, amount int64) (coupon.Quote, error) {
	return coupon.Quote{Payable: amount}, nil
}

func (passthroughCoupons) CommitUsage(ctx context.Context, code, tenantID string) error {
	return nil
}

type mockSites struct {
	mock.Mock
}

func (m *mockSites) SubscriptionState(ctx context.Context, driverID string) (*billing.SubscriptionState, error) {
	args := m.Called(ctx, driverID)
	if state := args.Get(0); state != nil {
		return state.(*billing.SubscriptionState), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSites) AppendHistory(ctx context.Context, driverID string, entry billing.HistoryEntry) error {
	return m.Called(ctx, driverID, entry).Error(0)
}

func (m *mockSites) SettleOrder(ctx context.Context, driverID, orderID, paymentID string, sub billing.Subscription, paidTill time.Time) error {
	return m.Called(ctx, driverID, orderID, paymentID, sub, paidTill).Error(0)
}

func (m *mockSites) MarkOrderFailed(ctx context.Context, driverID, orderID string) error {
	return m.Called(ctx, driverID, orderID).Error(0)
}

func (m *mockSites) RecordExtension(ctx context.Context, driverID string, entry billing.HistoryEntry, paidTill time.Time) error {
	return m.Called(ctx, driverID, entry, paidTill).Error(0)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*gateway.Order, error) {
	args := m.Called(ctx, amount, currency, receipt, notes)
	if order := args.Get(0); order != nil {
		return order.(*gateway.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) VerifySignature(orderID, paymentID, signature string) error {
	return m.Called(orderID, paymentID, signature).Error(0)
}

func (m *mockGateway) KeyID() string { return "rzp_test_key" }

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() func() time.Time {
	return func() time.Time { return testNow }
}

func freshState(driverID string) *billing.SubscriptionState {
	return &billing.SubscriptionState{DriverID: driverID}
}

func activeState(driverID string) *billing.SubscriptionState {
	return &billing.SubscriptionState{
		DriverID: driverID,
		Subscription: &billing.Subscription{
			ThemeID:        "classic-cab",
			DurationMonths: 12,
			Price:          999,
			OrderID:        "order_old",
			PaymentID:      "pay_old",
		},
		PaidTill: testNow.Add(180 * 24 * time.Hour),
		History: []billing.HistoryEntry{{
			OrderID:   "order_old",
			PaymentID: "pay_old",
			ThemeID:   "classic-cab",
			Amount:    999,
			Status:    billing.StatusPaid,
		}},
	}
}

func newService(plans billing.PlanCatalog, coupons billing.CouponLedger, sites billing.SiteStore, gw gateway.Gateway) *billing.Service {
	return billing.NewService(plans, coupons, sites, gw, nil, billing.WithClock(fixedClock()))
}

func TestCreateOrder(t *testing.T) {
	t.Parallel()

	t.Run("new subscription at catalog price", func(t *testing.T) {
		t.Parallel()

		plans := new(mockCatalog)
		plans.On("FindActivePlan", mock.Anything, "classic-cab", 6).
			Return(catalog.Plan{DurationMonths: 6, Price: 999, Active: true}, nil)

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(freshState("driver-1"), nil)
		sites.On("AppendHistory", mock.Anything, "driver-1", mock.MatchedBy(func(e billing.HistoryEntry) bool {
			return e.OrderID == "order_new" && e.Status == billing.StatusPending &&
				e.Amount == 999 && e.BaseAmount == 999 && e.UpgradeCredit == 0
		})).Return(nil)

		gw := new(mockGateway)
		gw.On("CreateOrder", mock.Anything, int64(99900), "INR", "sub_driver-1", mock.Anything).
			Return(&gateway.Order{ID: "order_new", Amount: 99900, Currency: "INR"}, nil)

		svc := newService(plans, passthroughCoupons{}, sites, gw)

		order, err := svc.CreateOrder(context.Background(), billing.OrderParams{
			DriverID:       "driver-1",
			ThemeID:        "classic-cab",
			DurationMonths: 6,
		})
		require.NoError(t, err)
		assert.Equal(t, "order_new", order.OrderID)
		assert.Equal(t, int64(999), order.Amount)
		assert.Equal(t, int64(99900), order.AmountMinor)
		assert.Equal(t, "rzp_test_key", order.KeyID)
		sites.AssertExpectations(t)
		gw.AssertExpectations(t)
	})

	t.Run("theme switch earns proration credit", func(t *testing.T) {
		t.Parallel()

		// 999 for 12 months with 180 of 360 days left credits 500
		plans := new(mockCatalog)
		plans.On("FindActivePlan", mock.Anything, "night-rider", 12).
			Return(catalog.Plan{DurationMonths: 12, Price: 1999, Active: true}, nil)

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(activeState("driver-1"), nil)
		sites.On("AppendHistory", mock.Anything, "driver-1", mock.MatchedBy(func(e billing.HistoryEntry) bool {
			return e.UpgradeCredit == 500 && e.Amount == 1499 && e.BaseAmount == 1999
		})).Return(nil)

		gw := new(mockGateway)
		gw.On("CreateOrder", mock.Anything, int64(149900), "INR", mock.Anything, mock.Anything).
			Return(&gateway.Order{ID: "order_up", Amount: 149900, Currency: "INR"}, nil)

		svc := newService(plans, passthroughCoupons{}, sites, gw)

		order, err := svc.CreateOrder(context.Background(), billing.OrderParams{
			DriverID:       "driver-1",
			ThemeID:        "night-rider",
			DurationMonths: 12,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(500), order.Quote.UpgradeCredit)
		assert.Equal(t, int64(1499), order.Quote.Payable)
	})

	t.Run("renewal of the same theme charges full price", func(t *testing.T) {
		t.Parallel()

		plans := new(mockCatalog)
		plans.On("FindActivePlan", mock.Anything, "classic-cab", 12).
			Return(catalog.Plan{DurationMonths: 12, Price: 999, Active: true}, nil)

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(activeState("driver-1"), nil)
		sites.On("AppendHistory", mock.Anything, "driver-1", mock.MatchedBy(func(e billing.HistoryEntry) bool {
			return e.UpgradeCredit == 0 && e.Amount == 999
		})).Return(nil)

		gw := new(mockGateway)
		gw.On("CreateOrder", mock.Anything, int64(99900), "INR", mock.Anything, mock.Anything).
			Return(&gateway.Order{ID: "order_renew", Amount: 99900, Currency: "INR"}, nil)

		svc := newService(plans, passthroughCoupons{}, sites, gw)

		order, err := svc.CreateOrder(context.Background(), billing.OrderParams{
			DriverID:       "driver-1",
			ThemeID:        "classic-cab",
			DurationMonths: 12,
		})
		require.NoError(t, err)
		assert.Zero(t, order.Quote.UpgradeCredit)
	})

	t.Run("credit cannot undercut the minimum fee", func(t *testing.T) {
		t.Parallel()

		// moving to a cheaper theme with most of the old term unused
		plans := new(mockCatalog)
		plans.On("FindActivePlan", mock.Anything, "budget", 6).
			Return(catalog.Plan{DurationMonths: 6, Price: 499, Active: true}, nil)

		state := activeState("driver-1")
		state.PaidTill = testNow.Add(350 * 24 * time.Hour)

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(state, nil)
		sites.On("AppendHistory", mock.Anything, "driver-1", mock.MatchedBy(func(e billing.HistoryEntry) bool {
			return e.Amount == billing.MinPayable && e.UpgradeCredit == 498
		})).Return(nil)

		gw := new(mockGateway)
		gw.On("CreateOrder", mock.Anything, int64(100), "INR", mock.Anything, mock.Anything).
			Return(&gateway.Order{ID: "order_min", Amount: 100, Currency: "INR"}, nil)

		svc := newService(plans, passthroughCoupons{}, sites, gw)

		order, err := svc.CreateOrder(context.Background(), billing.OrderParams{
			DriverID:       "driver-1",
			ThemeID:        "budget",
			DurationMonths: 6,
		})
		require.NoError(t, err)
		assert.Equal(t, billing.MinPayable, order.Quote.Payable)
	})

	t.Run("coupon applies after credit", func(t *testing.T) {
		t.Parallel()

		plans := new(mockCatalog)
		plans.On("FindActivePlan", mock.Anything, "night-rider", 12).
			Return(catalog.Plan{DurationMonths: 12, Price: 1999, Active: true}, nil)

		coupons := new(mockCoupons)
		coupons.On("Apply", mock.Anything, "SAVE20", "driver-1", int64(1499)).
			Return(coupon.Quote{Code: "SAVE20", Discount: 300, Payable: 1199}, nil)

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(activeState("driver-1"), nil)
		sites.On("AppendHistory", mock.Anything, "driver-1", mock.MatchedBy(func(e billing.HistoryEntry) bool {
			return e.Amount == 1199 && e.Discount == 300 && e.CouponCode == "SAVE20"
		})).Return(nil)

		gw := new(mockGateway)
		gw.On("CreateOrder", mock.Anything, int64(119900), "INR", mock.Anything, mock.Anything).
			Return(&gateway.Order{ID: "order_c", Amount: 119900, Currency: "INR"}, nil)

		svc := newService(plans, coupons, sites, gw)

		order, err := svc.CreateOrder(context.Background(), billing.OrderParams{
			DriverID:       "driver-1",
			ThemeID:        "night-rider",
			DurationMonths: 12,
			CouponCode:     "SAVE20",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1199), order.Amount)
		coupons.AssertExpectations(t)
	})

	t.Run("full-cover coupon is rejected before the gateway", func(t *testing.T) {
		t.Parallel()

		plans := new(mockCatalog)
		plans.On("FindActivePlan", mock.Anything, "classic-cab", 6).
			Return(catalog.Plan{DurationMonths: 6, Price: 999, Active: true}, nil)

		coupons := new(mockCoupons)
		coupons.On("Apply", mock.Anything, "FREE100", "driver-1", int64(999)).
			Return(coupon.Quote{Code: "FREE100", Discount: 999, Payable: 0}, nil)

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(freshState("driver-1"), nil)

		gw := new(mockGateway)

		svc := newService(plans, coupons, sites, gw)

		_, err := svc.CreateOrder(context.Background(), billing.OrderParams{
			DriverID:       "driver-1",
			ThemeID:        "classic-cab",
			DurationMonths: 6,
			CouponCode:     "FREE100",
		})
		assert.ErrorIs(t, err, billing.ErrAmountTooLow)
		gw.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		sites.AssertNotCalled(t, "AppendHistory", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("zero-price plan is rejected", func(t *testing.T) {
		t.Parallel()

		plans := new(mockCatalog)
		plans.On("FindActivePlan", mock.Anything, "free-trial", 1).
			Return(catalog.Plan{DurationMonths: 1, Price: 0, Active: true}, nil)

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(freshState("driver-1"), nil)

		gw := new(mockGateway)

		svc := newService(plans, passthroughCoupons{}, sites, gw)

		_, err := svc.CreateOrder(context.Background(), billing.OrderParams{
			DriverID:       "driver-1",
			ThemeID:        "free-trial",
			DurationMonths: 1,
		})
		assert.ErrorIs(t, err, billing.ErrAmountTooLow)
		gw.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects invalid duration", func(t *testing.T) {
		t.Parallel()

		svc := newService(new(mockCatalog), passthroughCoupons{}, new(mockSites), new(mockGateway))

		_, err := svc.CreateOrder(context.Background(), billing.OrderParams{
			DriverID: "driver-1",
			ThemeID:  "classic-cab",
		})
		assert.ErrorIs(t, err, billing.ErrInvalidDuration)
	})

	t.Run("catalog miss aborts the order", func(t *testing.T) {
		t.Parallel()

		plans := new(mockCatalog)
		plans.On("FindActivePlan", mock.Anything, "ghost", 6).
			Return(catalog.Plan{}, catalog.ErrThemeNotFound)

		svc := newService(plans, passthroughCoupons{}, new(mockSites), new(mockGateway))

		_, err := svc.CreateOrder(context.Background(), billing.OrderParams{
			DriverID:       "driver-1",
			ThemeID:        "ghost",
			DurationMonths: 6,
		})
		assert.ErrorIs(t, err, catalog.ErrThemeNotFound)
	})

	t.Run("coupon failure aborts before the gateway", func(t *testing.T) {
		t.Parallel()

		plans := new(mockCatalog)
		plans.On("FindActivePlan", mock.Anything, "classic-cab", 6).
			Return(catalog.Plan{DurationMonths: 6, Price: 999, Active: true}, nil)

		coupons := new(mockCoupons)
		coupons.On("Apply", mock.Anything, "DEAD", "driver-1", int64(999)).
			Return(coupon.Quote{}, coupon.ErrCouponExpired)

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(freshState("driver-1"), nil)

		gw := new(mockGateway)

		svc := newService(plans, coupons, sites, gw)

		_, err := svc.CreateOrder(context.Background(), billing.OrderParams{
			DriverID:       "driver-1",
			ThemeID:        "classic-cab",
			DurationMonths: 6,
			CouponCode:     "DEAD",
		})
		assert.ErrorIs(t, err, coupon.ErrCouponExpired)
		gw.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestQuote(t *testing.T) {
	t.Parallel()

	t.Run("previews a theme switch without side effects", func(t *testing.T) {
		t.Parallel()

		plans := new(mockCatalog)
		plans.On("FindActivePlan", mock.Anything, "night-rider", 12).
			Return(catalog.Plan{DurationMonths: 12, Price: 1999, Active: true}, nil)

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(activeState("driver-1"), nil)

		gw := new(mockGateway)

		svc := newService(plans, passthroughCoupons{}, sites, gw)

		// 999 paid for 12 months with 180 days left credits half the price
		quote, err := svc.Quote(context.Background(), billing.OrderParams{
			DriverID:       "driver-1",
			ThemeID:        "night-rider",
			DurationMonths: 12,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1999), quote.BaseAmount)
		assert.Equal(t, int64(500), quote.UpgradeCredit)
		assert.Equal(t, int64(1499), quote.Payable)

		gw.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		sites.AssertNotCalled(t, "AppendHistory", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("includes the coupon discount", func(t *testing.T) {
		t.Parallel()

		plans := new(mockCatalog)
		plans.On("FindActivePlan", mock.Anything, "classic-cab", 6).
			Return(catalog.Plan{DurationMonths: 6, Price: 999, Active: true}, nil)

		coupons := new(mockCoupons)
		coupons.On("Apply", mock.Anything, "SAVE20", "driver-1", int64(999)).
			Return(coupon.Quote{Code: "SAVE20", Discount: 200, Payable: 799}, nil)

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(freshState("driver-1"), nil)

		svc := newService(plans, coupons, sites, new(mockGateway))

		quote, err := svc.Quote(context.Background(), billing.OrderParams{
			DriverID:       "driver-1",
			ThemeID:        "classic-cab",
			DurationMonths: 6,
			CouponCode:     "SAVE20",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(200), quote.Discount)
		assert.Equal(t, int64(799), quote.Payable)
		assert.Equal(t, "SAVE20", quote.CouponCode)
	})

	t.Run("rejects a fully covered amount", func(t *testing.T) {
		t.Parallel()

		plans := new(mockCatalog)
		plans.On("FindActivePlan", mock.Anything, "classic-cab", 6).
			Return(catalog.Plan{DurationMonths: 6, Price: 999, Active: true}, nil)

		coupons := new(mockCoupons)
		coupons.On("Apply", mock.Anything, "FREE100", "driver-1", int64(999)).
			Return(coupon.Quote{Code: "FREE100", Discount: 999, Payable: 0}, nil)

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(freshState("driver-1"), nil)

		svc := newService(plans, coupons, sites, new(mockGateway))

		_, err := svc.Quote(context.Background(), billing.OrderParams{
			DriverID:       "driver-1",
			ThemeID:        "classic-cab",
			DurationMonths: 6,
			CouponCode:     "FREE100",
		})
		assert.ErrorIs(t, err, billing.ErrAmountTooLow)
	})
}

func pendingState(driverID string) *billing.SubscriptionState {
	return &billing.SubscriptionState{
		DriverID: driverID,
		History: []billing.HistoryEntry{{
			OrderID:        "order_new",
			ThemeID:        "classic-cab",
			DurationMonths: 6,
			BaseAmount:     999,
			Amount:         799,
			Discount:       200,
			CouponCode:     "SAVE20",
			Status:         billing.StatusPending,
		}},
	}
}

func TestConfirmPayment(t *testing.T) {
	t.Parallel()

	confirm := billing.ConfirmParams{
		DriverID:  "driver-1",
		OrderID:   "order_new",
		PaymentID: "pay_new",
		Signature: "sig",
	}

	t.Run("settles pending order", func(t *testing.T) {
		t.Parallel()

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(pendingState("driver-1"), nil)
		sites.On("SettleOrder", mock.Anything, "driver-1", "order_new", "pay_new",
			mock.MatchedBy(func(sub billing.Subscription) bool {
				return sub.ThemeID == "classic-cab" && sub.Price == 999 && sub.PaymentID == "pay_new"
			}),
			testNow.AddDate(0, 6, 0),
		).Return(nil)

		coupons := new(mockCoupons)
		coupons.On("CommitUsage", mock.Anything, "SAVE20", "driver-1").Return(nil)

		gw := new(mockGateway)
		gw.On("VerifySignature", "order_new", "pay_new", "sig").Return(nil)

		svc := newService(new(mockCatalog), coupons, sites, gw)

		receipt, err := svc.ConfirmPayment(context.Background(), confirm)
		require.NoError(t, err)
		assert.False(t, receipt.Duplicate)
		assert.Equal(t, testNow.AddDate(0, 6, 0), receipt.PaidTill)
		assert.Equal(t, int64(799), receipt.Amount)
		sites.AssertExpectations(t)
		coupons.AssertExpectations(t)
	})

	t.Run("renewal extends from current expiry", func(t *testing.T) {
		t.Parallel()

		state := pendingState("driver-1")
		state.Subscription = &billing.Subscription{ThemeID: "classic-cab", DurationMonths: 6, Price: 999}
		state.PaidTill = testNow.AddDate(0, 2, 0)

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(state, nil)
		sites.On("SettleOrder", mock.Anything, "driver-1", "order_new", "pay_new",
			mock.Anything, testNow.AddDate(0, 8, 0),
		).Return(nil)

		coupons := new(mockCoupons)
		coupons.On("CommitUsage", mock.Anything, "SAVE20", "driver-1").Return(nil)

		gw := new(mockGateway)
		gw.On("VerifySignature", "order_new", "pay_new", "sig").Return(nil)

		svc := newService(new(mockCatalog), coupons, sites, gw)

		receipt, err := svc.ConfirmPayment(context.Background(), confirm)
		require.NoError(t, err)
		assert.Equal(t, testNow.AddDate(0, 8, 0), receipt.PaidTill)
		sites.AssertExpectations(t)
	})

	t.Run("replayed payment id is a no-op", func(t *testing.T) {
		t.Parallel()

		state := activeState("driver-1")

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(state, nil)

		gw := new(mockGateway)
		gw.On("VerifySignature", "order_old", "pay_old", "sig").Return(nil)

		svc := newService(new(mockCatalog), new(mockCoupons), sites, gw)

		receipt, err := svc.ConfirmPayment(context.Background(), billing.ConfirmParams{
			DriverID:  "driver-1",
			OrderID:   "order_old",
			PaymentID: "pay_old",
			Signature: "sig",
		})
		require.NoError(t, err)
		assert.True(t, receipt.Duplicate)
		assert.Equal(t, state.PaidTill, receipt.PaidTill)
		sites.AssertNotCalled(t, "SettleOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("paid order with new payment id is a no-op", func(t *testing.T) {
		t.Parallel()

		state := activeState("driver-1")

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(state, nil)

		gw := new(mockGateway)
		gw.On("VerifySignature", "order_old", "pay_other", "sig").Return(nil)

		svc := newService(new(mockCatalog), new(mockCoupons), sites, gw)

		receipt, err := svc.ConfirmPayment(context.Background(), billing.ConfirmParams{
			DriverID:  "driver-1",
			OrderID:   "order_old",
			PaymentID: "pay_other",
			Signature: "sig",
		})
		require.NoError(t, err)
		assert.True(t, receipt.Duplicate)
	})

	t.Run("bad signature touches nothing", func(t *testing.T) {
		t.Parallel()

		sites := new(mockSites)

		gw := new(mockGateway)
		gw.On("VerifySignature", "order_new", "pay_new", "forged").Return(gateway.ErrSignatureMismatch)

		svc := newService(new(mockCatalog), new(mockCoupons), sites, gw)

		_, err := svc.ConfirmPayment(context.Background(), billing.ConfirmParams{
			DriverID:  "driver-1",
			OrderID:   "order_new",
			PaymentID: "pay_new",
			Signature: "forged",
		})
		assert.ErrorIs(t, err, gateway.ErrSignatureMismatch)
		sites.AssertNotCalled(t, "SubscriptionState", mock.Anything, mock.Anything)
	})

	t.Run("unknown order", func(t *testing.T) {
		t.Parallel()

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(freshState("driver-1"), nil)

		gw := new(mockGateway)
		gw.On("VerifySignature", "order_ghost", "pay_new", "sig").Return(nil)

		svc := newService(new(mockCatalog), new(mockCoupons), sites, gw)

		_, err := svc.ConfirmPayment(context.Background(), billing.ConfirmParams{
			DriverID:  "driver-1",
			OrderID:   "order_ghost",
			PaymentID: "pay_new",
			Signature: "sig",
		})
		assert.ErrorIs(t, err, billing.ErrOrderNotFound)
	})

	t.Run("coupon commit failure does not fail the payment", func(t *testing.T) {
		t.Parallel()

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(pendingState("driver-1"), nil)
		sites.On("SettleOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		coupons := new(mockCoupons)
		coupons.On("CommitUsage", mock.Anything, "SAVE20", "driver-1").Return(coupon.ErrUsageCommitFailed)

		gw := new(mockGateway)
		gw.On("VerifySignature", "order_new", "pay_new", "sig").Return(nil)

		svc := newService(new(mockCatalog), coupons, sites, gw)

		receipt, err := svc.ConfirmPayment(context.Background(), confirm)
		require.NoError(t, err)
		assert.False(t, receipt.Duplicate)
	})

	t.Run("settle failure surfaces", func(t *testing.T) {
		t.Parallel()

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(pendingState("driver-1"), nil)
		sites.On("SettleOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("write conflict"))

		gw := new(mockGateway)
		gw.On("VerifySignature", "order_new", "pay_new", "sig").Return(nil)

		svc := newService(new(mockCatalog), new(mockCoupons), sites, gw)

		_, err := svc.ConfirmPayment(context.Background(), confirm)
		assert.Error(t, err)
	})
}

func TestMarkFailed(t *testing.T) {
	t.Parallel()

	t.Run("marks pending order failed", func(t *testing.T) {
		t.Parallel()

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(pendingState("driver-1"), nil)
		sites.On("MarkOrderFailed", mock.Anything, "driver-1", "order_new").Return(nil)

		svc := newService(new(mockCatalog), new(mockCoupons), sites, new(mockGateway))

		require.NoError(t, svc.MarkFailed(context.Background(), "driver-1", "order_new"))
		sites.AssertExpectations(t)
	})

	t.Run("refuses to fail a settled order", func(t *testing.T) {
		t.Parallel()

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(activeState("driver-1"), nil)

		svc := newService(new(mockCatalog), new(mockCoupons), sites, new(mockGateway))

		err := svc.MarkFailed(context.Background(), "driver-1", "order_old")
		assert.ErrorIs(t, err, billing.ErrOrderAlreadyPaid)
	})
}

func TestStatus(t *testing.T) {
	t.Parallel()

	t.Run("active subscription", func(t *testing.T) {
		t.Parallel()

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(activeState("driver-1"), nil)

		svc := newService(new(mockCatalog), new(mockCoupons), sites, new(mockGateway))

		status, err := svc.Status(context.Background(), "driver-1")
		require.NoError(t, err)
		assert.True(t, status.Active)
		assert.Equal(t, 180, status.DaysLeft)
	})

	t.Run("no subscription", func(t *testing.T) {
		t.Parallel()

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(freshState("driver-1"), nil)

		svc := newService(new(mockCatalog), new(mockCoupons), sites, new(mockGateway))

		status, err := svc.Status(context.Background(), "driver-1")
		require.NoError(t, err)
		assert.False(t, status.Active)
		assert.Zero(t, status.DaysLeft)
	})
}

func TestExtend(t *testing.T) {
	t.Parallel()

	t.Run("extends from current expiry", func(t *testing.T) {
		t.Parallel()

		state := activeState("driver-1")

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(state, nil)
		sites.On("RecordExtension", mock.Anything, "driver-1", mock.MatchedBy(func(e billing.HistoryEntry) bool {
			return e.Status == billing.StatusPaid && e.Amount == 0 && e.Note == "goodwill"
		}), state.PaidTill.AddDate(0, 3, 0)).Return(nil)

		svc := newService(new(mockCatalog), new(mockCoupons), sites, new(mockGateway))

		receipt, err := svc.Extend(context.Background(), "driver-1", 3, "goodwill")
		require.NoError(t, err)
		assert.Equal(t, state.PaidTill.AddDate(0, 3, 0), receipt.PaidTill)
		sites.AssertExpectations(t)
	})

	t.Run("requires a subscription", func(t *testing.T) {
		t.Parallel()

		sites := new(mockSites)
		sites.On("SubscriptionState", mock.Anything, "driver-1").Return(freshState("driver-1"), nil)

		svc := newService(new(mockCatalog), new(mockCoupons), sites, new(mockGateway))

		_, err := svc.Extend(context.Background(), "driver-1", 3, "")
		assert.ErrorIs(t, err, billing.ErrNoSubscription)
	})

	t.Run("rejects non-positive months", func(t *testing.T) {
		t.Parallel()

		svc := newService(new(mockCatalog), new(mockCoupons), new(mockSites), new(mockGateway))

		_, err := svc.Extend(context.Background(), "driver-1", 0, "")
		assert.ErrorIs(t, err, billing.ErrInvalidDuration)
	})
}
