package coupon

import "errors"

var (
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponExists        = errors.New("coupon code already exists")
	ErrCouponInactive      = errors.New("coupon is not active")
	ErrCouponNotStarted    = errors.New("coupon is not active yet")
	ErrCouponExpired       = errors.New("coupon has expired")
	ErrMinOrderNotMet      = errors.New("order amount below coupon minimum")
	ErrTotalLimitReached   = errors.New("coupon usage limit reached")
	ErrPerUserLimitReached = errors.New("coupon already used the maximum number of times")
	ErrInvalidCoupon       = errors.New("invalid coupon configuration")
	ErrUsageCommitFailed   = errors.New("failed to record coupon usage")
	ErrFailedToStoreCoupon = errors.New("failed to store coupon")
	ErrFailedToLoadCoupon  = errors.New("failed to load coupon")
)
