package engine

import (
	"stayledger/internal/tracking/models"
)

// WarningRatio is the fraction of the day limit at which status turns to
// warning. It is a fixed policy constant, not user-configurable, so the
// verdict stays predictable and testable.
const WarningRatio = 0.9

// StatusFor compares a counted total against the day limit.
// The limit itself is already a violation: exceeded at countedDays >= limit.
func StatusFor(countedDays float64, dayLimit int) models.Status {
	limit := float64(dayLimit)
	switch {
	case countedDays >= limit:
		return models.StatusExceeded
	case countedDays >= limit*WarningRatio:
		return models.StatusWarning
	default:
		return models.StatusSafe
	}
}

// DaysRemaining returns the allowance left, never negative.
func DaysRemaining(countedDays float64, dayLimit int) float64 {
	remaining := float64(dayLimit) - countedDays
	if remaining < 0 {
		return 0
	}
	return remaining
}
