package engine

import (
	"sort"
	"time"

	"stayledger/internal/tracking/models"
)

// DateRange is a clipped, disjoint run of presence produced by merging stay
// intervals. Entry and Exit are inclusive calendar dates. The Real flags
// record whether the boundary is the person's actual arrival or departure,
// or merely an artifact of clipping at the reset anchor / as-of date — a
// clipped boundary is a full presence day and never gets partial weighting.
type DateRange struct {
	Entry, Exit                time.Time
	ArrivalReal, DepartureReal bool
}

// DaySeries is the day-to-weight map produced by the calculator, kept
// sorted with prefix sums so window queries cost O(log n). It is the single
// source of truth the window evaluator consumes.
type DaySeries struct {
	days    []time.Time
	weights []float64
	prefix  []float64
}

// CountDays computes the weighted set of calendar days that count toward
// residency for the given stays under the given rules.
//
// The pipeline follows the counting policy exactly: clip every stay to
// (resetAnchor, asOf], merge overlapping and contiguous stays into disjoint
// runs of presence, then weight each run's days — arrival and departure
// days per the partial-day policy (explicit overrides win), interior days
// always 1. Where two interpretations assign different weights to the same
// date, the maximum wins: a day the person was present under any reading
// counts.
func CountDays(stays []models.StayInterval, rules EffectiveRules, resetAnchor *time.Time, asOf time.Time) DaySeries {
	ranges := ClipAndMerge(stays, resetAnchor, asOf)

	byDate := make(map[time.Time]float64)
	for _, r := range ranges {
		emitRange(byDate, r, rules)
	}

	return newDaySeries(byDate)
}

// ClipAndMerge clips stays to the countable horizon and merges overlapping
// or contiguous stays (gap of at most one day) into a minimal set of
// disjoint ranges. The reset anchor is an exclusive bound: the anchor day
// itself does not count, which is what makes an explicit reset zero the
// active count immediately. Future-dated stays are retained in the store
// but contribute nothing here.
func ClipAndMerge(stays []models.StayInterval, resetAnchor *time.Time, asOf time.Time) []DateRange {
	asOf = models.NormalizeDate(asOf)

	var low time.Time
	if resetAnchor != nil {
		low = models.NormalizeDate(*resetAnchor).AddDate(0, 0, 1)
	}

	clipped := make([]DateRange, 0, len(stays))
	for _, s := range stays {
		entry := models.NormalizeDate(s.EntryDate)
		exit := asOf // open stay: still present, count through asOf
		departureReal := false
		if s.ExitDate != nil {
			exit = models.NormalizeDate(*s.ExitDate)
			departureReal = true
		}

		if entry.After(asOf) || (resetAnchor != nil && exit.Before(low)) {
			continue
		}

		r := DateRange{Entry: entry, Exit: exit, ArrivalReal: true, DepartureReal: departureReal}
		if resetAnchor != nil && entry.Before(low) {
			r.Entry = low
			r.ArrivalReal = false
		}
		if exit.After(asOf) {
			r.Exit = asOf
			r.DepartureReal = false
		}
		clipped = append(clipped, r)
	}

	sort.Slice(clipped, func(i, j int) bool {
		if !clipped[i].Entry.Equal(clipped[j].Entry) {
			return clipped[i].Entry.Before(clipped[j].Entry)
		}
		return clipped[i].Exit.Before(clipped[j].Exit)
	})

	merged := make([]DateRange, 0, len(clipped))
	for _, r := range clipped {
		if len(merged) == 0 {
			merged = append(merged, r)
			continue
		}
		cur := &merged[len(merged)-1]
		if r.Entry.After(cur.Exit.AddDate(0, 0, 1)) {
			merged = append(merged, r)
			continue
		}

		// Same start date: the boundary is a genuine arrival only if
		// every contributing stay arrives there.
		if r.Entry.Equal(cur.Entry) {
			cur.ArrivalReal = cur.ArrivalReal && r.ArrivalReal
		}
		switch {
		case r.Exit.After(cur.Exit):
			cur.Exit = r.Exit
			cur.DepartureReal = r.DepartureReal
		case r.Exit.Equal(cur.Exit):
			cur.DepartureReal = cur.DepartureReal && r.DepartureReal
		}
	}

	return merged
}

// emitRange writes one merged range's day weights into the map, taking the
// maximum on conflicts.
func emitRange(byDate map[time.Time]float64, r DateRange, rules EffectiveRules) {
	last := r.Exit
	if rules.CountingMode == models.CountingModeNights {
		// The exit date contributes no night. An open stay was already
		// extended to asOf by clipping, so its last counted night is
		// the one before asOf.
		last = r.Exit.AddDate(0, 0, -1)
	}
	if last.Before(r.Entry) {
		return // same-day round trip under nights: no night spent
	}

	for d := r.Entry; !d.After(last); d = d.AddDate(0, 0, 1) {
		w := 1.0
		isEntry := d.Equal(r.Entry)
		isExit := d.Equal(last) && rules.CountingMode == models.CountingModeDays

		switch {
		case isEntry && isExit:
			aw, dw := 1.0, 1.0
			if r.ArrivalReal {
				aw = rules.arrivalWeight()
			}
			if r.DepartureReal {
				dw = rules.departureWeight()
			}
			if r.ArrivalReal && r.DepartureReal {
				w = max(aw, dw)
			} else if r.ArrivalReal {
				w = aw
			} else if r.DepartureReal {
				w = dw
			}
		case isEntry:
			if r.ArrivalReal {
				w = rules.arrivalWeight()
			}
		case isExit:
			if r.DepartureReal {
				w = rules.departureWeight()
			}
		}

		if cur, ok := byDate[d]; !ok || w > cur {
			byDate[d] = w
		}
	}
}

func newDaySeries(byDate map[time.Time]float64) DaySeries {
	days := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	s := DaySeries{
		days:    days,
		weights: make([]float64, len(days)),
		prefix:  make([]float64, len(days)+1),
	}
	for i, d := range days {
		s.weights[i] = byDate[d]
		s.prefix[i+1] = s.prefix[i] + s.weights[i]
	}
	return s
}

// Total returns the sum of all day weights.
func (s DaySeries) Total() float64 {
	return s.prefix[len(s.prefix)-1]
}

// SumRange returns the sum of weights for dates in [from, to] inclusive.
// Cost is O(log n), which keeps what-if date pickers cheap even against
// years of history.
func (s DaySeries) SumRange(from, to time.Time) float64 {
	if to.Before(from) {
		return 0
	}
	lo := sort.Search(len(s.days), func(i int) bool { return !s.days[i].Before(from) })
	hi := sort.Search(len(s.days), func(i int) bool { return s.days[i].After(to) })
	return s.prefix[hi] - s.prefix[lo]
}

// Weight returns the weight recorded for a date, if any.
func (s DaySeries) Weight(date time.Time) (float64, bool) {
	date = models.NormalizeDate(date)
	i := sort.Search(len(s.days), func(i int) bool { return !s.days[i].Before(date) })
	if i < len(s.days) && s.days[i].Equal(date) {
		return s.weights[i], true
	}
	return 0, false
}

// Len returns the number of candidate dates in the series.
func (s DaySeries) Len() int { return len(s.days) }

// Each visits every date and weight in ascending date order.
func (s DaySeries) Each(fn func(date time.Time, weight float64)) {
	for i, d := range s.days {
		fn(d, s.weights[i])
	}
}
