package domain

import "math"

// PlatformFeeCents computes the platform's cut of a booking fee:
// floor(totalCents * rate). The remainder is transferred to the mentor.
// A rate that leaves the mentor nothing (fee >= total) is a
// misconfiguration and must fail before any external call is made.
func PlatformFeeCents(totalCents int64, rate float64) (int64, error) {
	if totalCents <= 0 {
		return 0, NewInvalidAmountError(totalCents)
	}
	if rate < 0 {
		return 0, NewFeeMisconfiguredError(rate)
	}
	fee := int64(math.Floor(float64(totalCents) * rate))
	if fee >= totalCents {
		return 0, NewFeeMisconfiguredError(rate)
	}
	return fee, nil
}
