package billing

import (
	"math"
	"time"
)

// Prices are whole rupees everywhere in this package; the gateway alone
// speaks minor units.
const (
	// MinPayable is the floor for any order sent to the gateway, in rupees.
	// It doubles as the minimum upgrade fee: a credit can never reduce an
	// order below it.
	MinPayable int64 = 1

	// billingDaysPerMonth normalizes plan durations for proration. Calendar
	// months are used for expiry extension, but credits are computed on a
	// fixed-length month so two drivers with the same remaining days get the
	// same credit.
	billingDaysPerMonth = 30
)

// MinorUnits converts rupees to paise.
func MinorUnits(rupees int64) int64 {
	return rupees * 100
}

// ProrationCredit computes the unused value of an old plan when upgrading.
// The credit is the old price scaled by the remaining fraction of the plan's
// normalized term, rounded half away from zero, and never exceeds the old
// price.
func ProrationCredit(oldPrice int64, oldDurationMonths int, remaining time.Duration) int64 {
	if oldPrice <= 0 || oldDurationMonths <= 0 || remaining <= 0 {
		return 0
	}

	total := time.Duration(oldDurationMonths) * billingDaysPerMonth * 24 * time.Hour
	frac := float64(remaining) / float64(total)
	if frac > 1 {
		frac = 1
	}

	return int64(math.Round(float64(oldPrice) * frac))
}

// ExtendPaidTill returns the new expiry after buying months of service.
// Renewals extend from the current expiry rather than resetting it, so a
// driver who renews early keeps the remaining days. Lapsed subscriptions
// extend from now.
func ExtendPaidTill(paidTill, now time.Time, months int) time.Time {
	base := now
	if paidTill.After(now) {
		base = paidTill
	}
	return base.AddDate(0, months, 0)
}
