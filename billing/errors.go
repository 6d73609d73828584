package billing

import "errors"

var (
	ErrOrderNotFound    = errors.New("payment order not found")
	ErrOrderAlreadyPaid = errors.New("payment order already settled")
	ErrSiteNotFound     = errors.New("site not found")
	ErrNoSubscription   = errors.New("driver has no subscription")
	ErrInvalidDuration  = errors.New("invalid subscription duration")
	ErrAmountTooLow     = errors.New("payable amount below gateway minimum")
)
