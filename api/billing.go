package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taxisafar/sitekit/billing"
)

type createOrderRequest struct {
	ThemeID        string `json:"themeId"`
	DurationMonths int    `json:"durationMonths"`
	CouponCode     string `json:"couponCode"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.billing.CreateOrder(r.Context(), billing.OrderParams{
		DriverID:       chi.URLParam(r, "driverID"),
		ThemeID:        req.ThemeID,
		DurationMonths: req.DurationMonths,
		CouponCode:     req.CouponCode,
	})
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, order)
}

// quoteOrder previews the price of a purchase, including any proration
// credit and coupon discount, without creating a gateway order.
func (h *Handler) quoteOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quote, err := h.billing.Quote(r.Context(), billing.OrderParams{
		DriverID:       chi.URLParam(r, "driverID"),
		ThemeID:        req.ThemeID,
		DurationMonths: req.DurationMonths,
		CouponCode:     req.CouponCode,
	})
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, quote)
}

type verifyPaymentRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

func (h *Handler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	receipt, err := h.billing.ConfirmPayment(r.Context(), billing.ConfirmParams{
		DriverID:  chi.URLParam(r, "driverID"),
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		fail(w, err)
		return
	}

	if receipt.Duplicate {
		respondMessage(w, http.StatusOK, "payment already processed", receipt)
		return
	}
	respondMessage(w, http.StatusOK, "payment verified", receipt)
}

type paymentFailedRequest struct {
	OrderID string `json:"orderId"`
}

func (h *Handler) paymentFailed(w http.ResponseWriter, r *http.Request) {
	var req paymentFailedRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.billing.MarkFailed(r.Context(), chi.URLParam(r, "driverID"), req.OrderID); err != nil {
		fail(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "payment marked as failed", nil)
}

func (h *Handler) subscriptionStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.billing.Status(r.Context(), chi.URLParam(r, "driverID"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, status)
}

type validateCouponRequest struct {
	Code           string `json:"code"`
	ThemeID        string `json:"themeId"`
	DurationMonths int    `json:"durationMonths"`
}

// validateCoupon quotes a coupon against the catalog price of the plan the
// driver is about to buy, without touching the usage ledger.
func (h *Handler) validateCoupon(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, err := h.themes.FindActivePlan(r.Context(), req.ThemeID, req.DurationMonths)
	if err != nil {
		fail(w, err)
		return
	}

	quote, err := h.coupons.Apply(r.Context(), req.Code, chi.URLParam(r, "driverID"), plan.Price)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, quote)
}

type extendSubscriptionRequest struct {
	Months int    `json:"months"`
	Note   string `json:"note"`
}

func (h *Handler) adminExtendSubscription(w http.ResponseWriter, r *http.Request) {
	var req extendSubscriptionRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	receipt, err := h.billing.Extend(r.Context(), chi.URLParam(r, "driverID"), req.Months, req.Note)
	if err != nil {
		fail(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "subscription extended", receipt)
}
