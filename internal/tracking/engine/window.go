package engine

import (
	"time"

	"stayledger/internal/tracking/models"
)

// WindowBounds is the inclusive compliance period an evaluation covers.
type WindowBounds struct {
	Start time.Time
	End   time.Time
}

// Days returns the window length in calendar days.
func (w WindowBounds) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// WindowFor resolves the compliance period ending at asOf. Callers may pass
// any asOf, not just today, so forward-looking projections reuse the same
// code path.
func WindowFor(rules EffectiveRules, asOf time.Time) WindowBounds {
	asOf = models.NormalizeDate(asOf)
	switch rules.WindowType {
	case models.WindowRolling:
		return WindowBounds{
			Start: asOf.AddDate(0, 0, -(rules.WindowSizeDays - 1)),
			End:   asOf,
		}
	default:
		return WindowBounds{
			Start: time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   asOf,
		}
	}
}

// Evaluate aggregates the day weights that fall inside the compliance
// period ending at asOf.
func Evaluate(series DaySeries, rules EffectiveRules, asOf time.Time) (float64, WindowBounds) {
	bounds := WindowFor(rules, asOf)
	return series.SumRange(bounds.Start, bounds.End), bounds
}
