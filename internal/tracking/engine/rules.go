// Package engine implements the day-counting pipeline: rule resolution,
// interval clipping and merging, day weighting, window aggregation, and the
// threshold verdict. Everything here is a pure function of a country
// snapshot and an as-of date; results are recomputed in full on every call
// so a retroactive settings change can never leave a stale count behind.
package engine

import (
	"stayledger/internal/tracking/models"
)

// EffectiveRules is the resolved counting configuration for one evaluation.
// Settings are versionless: the current configuration applies retroactively
// to the whole stay history.
type EffectiveRules struct {
	CountingMode      models.CountingMode
	PartialDayRule    models.PartialDayRule
	CountArrivalDay   *bool
	CountDepartureDay *bool
	WindowType        models.WindowType
	WindowSizeDays    int
	DayLimit          int
}

// Resolve produces the effective rules for a country, substituting the
// documented defaults for unset fields. It cannot fail: stored settings are
// validated at the mutation boundary.
func Resolve(c *models.TrackedCountry) EffectiveRules {
	rules := EffectiveRules{
		CountingMode:      c.Settings.CountingMode,
		PartialDayRule:    c.Settings.PartialDayRule,
		CountArrivalDay:   c.Settings.CountArrivalDay,
		CountDepartureDay: c.Settings.CountDepartureDay,
		WindowType:        c.WindowType,
		WindowSizeDays:    c.WindowSizeDays,
		DayLimit:          c.DayLimit,
	}
	if rules.CountingMode == "" {
		rules.CountingMode = models.CountingModeNights
	}
	if rules.PartialDayRule == "" {
		rules.PartialDayRule = models.PartialDayHalf
	}
	if rules.WindowType == "" {
		rules.WindowType = models.WindowCalendarYear
	}
	return rules
}

// arrivalWeight resolves the weight of a genuine arrival day. The explicit
// override takes precedence over the generic partial-day rule.
func (r EffectiveRules) arrivalWeight() float64 {
	if r.CountArrivalDay != nil {
		if *r.CountArrivalDay {
			return 1
		}
		return 0
	}
	return r.PartialDayRule.Weight()
}

// departureWeight resolves the weight of a genuine departure day.
func (r EffectiveRules) departureWeight() float64 {
	if r.CountDepartureDay != nil {
		if *r.CountDepartureDay {
			return 1
		}
		return 0
	}
	return r.PartialDayRule.Weight()
}
