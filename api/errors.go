package api

import (
	"errors"
	"net/http"

	"github.com/taxisafar/sitekit/billing"
	"github.com/taxisafar/sitekit/billing/gateway"
	"github.com/taxisafar/sitekit/catalog"
	"github.com/taxisafar/sitekit/coupon"
	"github.com/taxisafar/sitekit/enquiry"
	"github.com/taxisafar/sitekit/website"
)

// statusFor maps domain errors to HTTP status codes. Anything unmapped is a
// 500 so unexpected failures never masquerade as client errors.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrThemeNotFound),
		errors.Is(err, catalog.ErrPlanNotFound),
		errors.Is(err, coupon.ErrCouponNotFound),
		errors.Is(err, billing.ErrOrderNotFound),
		errors.Is(err, billing.ErrSiteNotFound),
		errors.Is(err, billing.ErrNoSubscription),
		errors.Is(err, website.ErrWebsiteNotFound),
		errors.Is(err, enquiry.ErrEnquiryNotFound):
		return http.StatusNotFound

	case errors.Is(err, catalog.ErrThemeExists),
		errors.Is(err, coupon.ErrCouponExists),
		errors.Is(err, website.ErrWebsiteExists),
		errors.Is(err, billing.ErrOrderAlreadyPaid):
		return http.StatusConflict

	case errors.Is(err, coupon.ErrTotalLimitReached),
		errors.Is(err, coupon.ErrPerUserLimitReached),
		errors.Is(err, coupon.ErrMinOrderNotMet),
		errors.Is(err, coupon.ErrCouponInactive),
		errors.Is(err, coupon.ErrCouponNotStarted),
		errors.Is(err, coupon.ErrCouponExpired),
		errors.Is(err, billing.ErrAmountTooLow):
		return http.StatusUnprocessableEntity

	case errors.Is(err, gateway.ErrSignatureMismatch):
		return http.StatusUnauthorized

	case errors.Is(err, gateway.ErrOrderCreationFailed):
		return http.StatusBadGateway

	case errors.Is(err, catalog.ErrInvalidTheme),
		errors.Is(err, catalog.ErrDuplicatePlanPeriod),
		errors.Is(err, coupon.ErrInvalidCoupon),
		errors.Is(err, billing.ErrInvalidDuration),
		errors.Is(err, gateway.ErrInvalidAmount),
		errors.Is(err, website.ErrThemeRequired),
		errors.Is(err, website.ErrInvalidInput),
		errors.Is(err, website.ErrInvalidIndex),
		errors.Is(err, enquiry.ErrInvalidEnquiry),
		errors.Is(err, enquiry.ErrInvalidStatus):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// fail writes a domain error using the status mapping. Internal errors hide
// their detail from the client.
func fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	respondError(w, status, message)
}
