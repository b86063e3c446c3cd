package engine

import (
	"time"

	"stayledger/internal/tracking/models"
)

// Compute runs the full pipeline for one country snapshot: resolve rules,
// count days, aggregate over the compliance window, and produce the
// verdict. It is idempotent and side-effect free; calling it twice against
// the same snapshot yields identical results.
//
// An inactive country still gets its days counted for transparency, but the
// status is reported as paused rather than a compliance verdict.
func Compute(c *models.TrackedCountry, asOf time.Time) models.CountResult {
	rules := Resolve(c)
	series := CountDays(c.Stays, rules, c.ResetAnchor, asOf)
	counted, bounds := Evaluate(series, rules, asOf)

	status := StatusFor(counted, rules.DayLimit)
	if !c.Active {
		status = models.StatusPaused
	}

	return models.CountResult{
		CountedDays:   counted,
		WindowStart:   bounds.Start,
		WindowEnd:     bounds.End,
		WindowDays:    bounds.Days(),
		DaysRemaining: DaysRemaining(counted, rules.DayLimit),
		Status:        status,
	}
}
