package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayledger/internal/tracking/models"
	id "stayledger/pkg/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func stay(entry time.Time, exit *time.Time) models.StayInterval {
	return models.StayInterval{ID: id.NewStayID(), EntryDate: entry, ExitDate: exit}
}

func closedStay(entry, exit time.Time) models.StayInterval {
	return stay(entry, &exit)
}

func boolp(b bool) *bool { return &b }

func daysRules(rule models.PartialDayRule) EffectiveRules {
	return EffectiveRules{
		CountingMode:   models.CountingModeDays,
		PartialDayRule: rule,
		WindowType:     models.WindowCalendarYear,
		DayLimit:       183,
	}
}

func nightsRules(rule models.PartialDayRule) EffectiveRules {
	r := daysRules(rule)
	r.CountingMode = models.CountingModeNights
	return r
}

func TestClipAndMerge(t *testing.T) {
	asOf := date(2025, time.December, 31)

	t.Run("overlapping stays merge into one range", func(t *testing.T) {
		stays := []models.StayInterval{
			closedStay(date(2025, time.January, 1), date(2025, time.January, 10)),
			closedStay(date(2025, time.January, 5), date(2025, time.January, 15)),
		}
		merged := ClipAndMerge(stays, nil, asOf)
		require.Len(t, merged, 1)
		assert.Equal(t, date(2025, time.January, 1), merged[0].Entry)
		assert.Equal(t, date(2025, time.January, 15), merged[0].Exit)
	})

	t.Run("contiguous stays merge", func(t *testing.T) {
		stays := []models.StayInterval{
			closedStay(date(2025, time.January, 1), date(2025, time.January, 5)),
			closedStay(date(2025, time.January, 6), date(2025, time.January, 10)),
		}
		merged := ClipAndMerge(stays, nil, asOf)
		require.Len(t, merged, 1)
	})

	t.Run("gapped stays stay separate", func(t *testing.T) {
		stays := []models.StayInterval{
			closedStay(date(2025, time.January, 1), date(2025, time.January, 5)),
			closedStay(date(2025, time.January, 8), date(2025, time.January, 10)),
		}
		merged := ClipAndMerge(stays, nil, asOf)
		require.Len(t, merged, 2)
	})

	t.Run("merged ranges never overlap and cover the union", func(t *testing.T) {
		stays := []models.StayInterval{
			closedStay(date(2025, time.March, 3), date(2025, time.March, 9)),
			closedStay(date(2025, time.January, 1), date(2025, time.January, 20)),
			closedStay(date(2025, time.January, 15), date(2025, time.February, 2)),
			closedStay(date(2025, time.February, 3), date(2025, time.February, 10)),
			closedStay(date(2025, time.March, 1), date(2025, time.March, 5)),
		}
		merged := ClipAndMerge(stays, nil, asOf)

		for i := 1; i < len(merged); i++ {
			assert.True(t, merged[i].Entry.After(merged[i-1].Exit.AddDate(0, 0, 1)),
				"ranges %d and %d must be disjoint with a gap", i-1, i)
		}

		// Union equality: every stay day is inside some merged range and
		// every merged-range day is inside some stay.
		inStays := make(map[time.Time]bool)
		for _, s := range stays {
			for d := s.EntryDate; !d.After(*s.ExitDate); d = d.AddDate(0, 0, 1) {
				inStays[d] = true
			}
		}
		inMerged := make(map[time.Time]bool)
		for _, r := range merged {
			for d := r.Entry; !d.After(r.Exit); d = d.AddDate(0, 0, 1) {
				inMerged[d] = true
			}
		}
		assert.Equal(t, inStays, inMerged)
	})

	t.Run("future stays are ignored", func(t *testing.T) {
		stays := []models.StayInterval{
			closedStay(date(2026, time.June, 1), date(2026, time.June, 10)),
		}
		assert.Empty(t, ClipAndMerge(stays, nil, asOf))
	})

	t.Run("reset anchor is exclusive", func(t *testing.T) {
		anchor := date(2025, time.June, 30)
		stays := []models.StayInterval{
			closedStay(date(2025, time.June, 1), date(2025, time.July, 5)),
		}
		merged := ClipAndMerge(stays, &anchor, asOf)
		require.Len(t, merged, 1)
		assert.Equal(t, date(2025, time.July, 1), merged[0].Entry, "anchor day itself must not count")
		assert.False(t, merged[0].ArrivalReal, "clipped boundary is not a genuine arrival")
	})

	t.Run("open stay clips to asOf", func(t *testing.T) {
		stays := []models.StayInterval{
			stay(date(2025, time.December, 20), nil),
		}
		merged := ClipAndMerge(stays, nil, asOf)
		require.Len(t, merged, 1)
		assert.Equal(t, asOf, merged[0].Exit)
		assert.False(t, merged[0].DepartureReal)
	})
}

func TestCountDays_WeightBounds(t *testing.T) {
	stays := []models.StayInterval{
		closedStay(date(2025, time.January, 1), date(2025, time.January, 10)),
		closedStay(date(2025, time.January, 10), date(2025, time.January, 12)),
		closedStay(date(2025, time.February, 1), date(2025, time.February, 1)),
		stay(date(2025, time.March, 1), nil),
	}
	for _, rule := range []models.PartialDayRule{models.PartialDayFull, models.PartialDayHalf, models.PartialDayExclude} {
		for _, rules := range []EffectiveRules{daysRules(rule), nightsRules(rule)} {
			series := CountDays(stays, rules, nil, date(2025, time.March, 10))
			series.Each(func(d time.Time, w float64) {
				assert.Contains(t, []float64{0, 0.5, 1}, w, "weight for %s under %s/%s", d, rules.CountingMode, rule)
			})
		}
	}
}

func TestCountDays_OverlapDedup(t *testing.T) {
	// Two overlapping stays, DAYS mode, FULL rule: the union counts once.
	stays := []models.StayInterval{
		closedStay(date(2025, time.January, 1), date(2025, time.January, 10)),
		closedStay(date(2025, time.January, 5), date(2025, time.January, 15)),
	}
	series := CountDays(stays, daysRules(models.PartialDayFull), nil, date(2025, time.December, 31))
	assert.Equal(t, 15.0, series.Total(), "union of days, not 10+11")
}

func TestCountDays_PartialDayWeights(t *testing.T) {
	asOf := date(2025, time.December, 31)
	entry := date(2025, time.May, 1)
	exit := date(2025, time.May, 10)
	stays := []models.StayInterval{closedStay(entry, exit)}

	t.Run("days half rule weights both boundaries", func(t *testing.T) {
		series := CountDays(stays, daysRules(models.PartialDayHalf), nil, asOf)
		w, ok := series.Weight(entry)
		require.True(t, ok)
		assert.Equal(t, 0.5, w)
		w, ok = series.Weight(exit)
		require.True(t, ok)
		assert.Equal(t, 0.5, w)
		assert.Equal(t, 9.0, series.Total(), "8 interior days + two halves")
	})

	t.Run("days exclude rule drops boundaries", func(t *testing.T) {
		series := CountDays(stays, daysRules(models.PartialDayExclude), nil, asOf)
		assert.Equal(t, 8.0, series.Total())
	})

	t.Run("nights mode never counts the exit date", func(t *testing.T) {
		series := CountDays(stays, nightsRules(models.PartialDayFull), nil, asOf)
		_, ok := series.Weight(exit)
		assert.False(t, ok)
		assert.Equal(t, 9.0, series.Total(), "nights of May 1-9")
	})

	t.Run("arrival override beats partial rule", func(t *testing.T) {
		rules := daysRules(models.PartialDayExclude)
		rules.CountArrivalDay = boolp(true)
		series := CountDays(stays, rules, nil, asOf)
		w, ok := series.Weight(entry)
		require.True(t, ok)
		assert.Equal(t, 1.0, w)
		w, ok = series.Weight(exit)
		require.True(t, ok)
		assert.Equal(t, 0.0, w, "departure still follows the exclude rule")
	})

	t.Run("departure override can force-exclude under full rule", func(t *testing.T) {
		rules := daysRules(models.PartialDayFull)
		rules.CountDepartureDay = boolp(false)
		series := CountDays(stays, rules, nil, asOf)
		assert.Equal(t, 9.0, series.Total())
	})
}

func TestCountDays_SameDayStay(t *testing.T) {
	asOf := date(2025, time.December, 31)
	day := date(2025, time.July, 4)
	stays := []models.StayInterval{closedStay(day, day)}

	t.Run("days exclude counts nothing", func(t *testing.T) {
		// Same-day round trip under the exclude rule is a documented
		// policy choice: it counts zero.
		series := CountDays(stays, daysRules(models.PartialDayExclude), nil, asOf)
		w, ok := series.Weight(day)
		require.True(t, ok)
		assert.Equal(t, 0.0, w)
		assert.Equal(t, 0.0, series.Total())
	})

	t.Run("days full counts one", func(t *testing.T) {
		series := CountDays(stays, daysRules(models.PartialDayFull), nil, asOf)
		assert.Equal(t, 1.0, series.Total())
	})

	t.Run("arrival override forces the day in", func(t *testing.T) {
		rules := daysRules(models.PartialDayExclude)
		rules.CountArrivalDay = boolp(true)
		series := CountDays(stays, rules, nil, asOf)
		assert.Equal(t, 1.0, series.Total())
	})

	t.Run("nights mode counts no night", func(t *testing.T) {
		series := CountDays(stays, nightsRules(models.PartialDayFull), nil, asOf)
		assert.Equal(t, 0, series.Len())
	})
}

func TestCountDays_ContiguousStaysBecomeInterior(t *testing.T) {
	// Departing and re-arriving on adjacent days is continuous presence:
	// the shared boundary days count in full even under exclude.
	stays := []models.StayInterval{
		closedStay(date(2025, time.January, 1), date(2025, time.January, 5)),
		closedStay(date(2025, time.January, 6), date(2025, time.January, 10)),
	}
	series := CountDays(stays, daysRules(models.PartialDayExclude), nil, date(2025, time.December, 31))
	w, ok := series.Weight(date(2025, time.January, 5))
	require.True(t, ok)
	assert.Equal(t, 1.0, w)
	w, ok = series.Weight(date(2025, time.January, 6))
	require.True(t, ok)
	assert.Equal(t, 1.0, w)
	assert.Equal(t, 8.0, series.Total(), "only the outer boundaries are excluded")
}

func TestCountDays_Monotonicity(t *testing.T) {
	asOf := date(2025, time.December, 31)
	base := []models.StayInterval{
		closedStay(date(2025, time.February, 1), date(2025, time.February, 10)),
		closedStay(date(2025, time.April, 1), date(2025, time.April, 4)),
	}
	added := closedStay(date(2025, time.February, 8), date(2025, time.March, 2))

	for _, rule := range []models.PartialDayRule{models.PartialDayFull, models.PartialDayHalf, models.PartialDayExclude} {
		for _, rules := range []EffectiveRules{daysRules(rule), nightsRules(rule)} {
			before := CountDays(base, rules, nil, asOf)
			after := CountDays(append(append([]models.StayInterval{}, base...), added), rules, nil, asOf)
			assert.GreaterOrEqual(t, after.Total(), before.Total(),
				"adding a stay must never decrease the count (%s/%s)", rules.CountingMode, rule)

			// Per-date monotonicity: no individual day's weight drops.
			before.Each(func(d time.Time, w float64) {
				aw, ok := after.Weight(d)
				require.True(t, ok, "date %s vanished after adding a stay", d)
				assert.GreaterOrEqual(t, aw, w)
			})
		}
	}
}

func TestCountDays_ResetProperty(t *testing.T) {
	now := date(2025, time.August, 15)
	stays := []models.StayInterval{
		closedStay(date(2025, time.January, 1), date(2025, time.March, 1)),
		stay(date(2025, time.August, 1), nil), // still present through the reset
	}

	for _, rules := range []EffectiveRules{daysRules(models.PartialDayFull), nightsRules(models.PartialDayFull)} {
		series := CountDays(stays, rules, &now, now)
		assert.Equal(t, 0.0, series.Total(),
			"count as of the reset day must be zero regardless of history (%s)", rules.CountingMode)
	}
}

func TestCountDays_AfterResetPresenceResumes(t *testing.T) {
	anchor := date(2025, time.August, 15)
	stays := []models.StayInterval{stay(date(2025, time.August, 1), nil)}

	series := CountDays(stays, daysRules(models.PartialDayHalf), &anchor, date(2025, time.August, 20))
	// Aug 16-20 count; the clipped entry is not an arrival so no half day.
	assert.Equal(t, 5.0, series.Total())
}

func TestDaySeries_SumRange(t *testing.T) {
	stays := []models.StayInterval{
		closedStay(date(2025, time.January, 1), date(2025, time.January, 31)),
	}
	series := CountDays(stays, daysRules(models.PartialDayFull), nil, date(2025, time.December, 31))

	assert.Equal(t, 31.0, series.SumRange(date(2025, time.January, 1), date(2025, time.January, 31)))
	assert.Equal(t, 10.0, series.SumRange(date(2025, time.January, 5), date(2025, time.January, 14)))
	assert.Equal(t, 0.0, series.SumRange(date(2025, time.March, 1), date(2025, time.March, 31)))
	assert.Equal(t, 0.0, series.SumRange(date(2025, time.January, 10), date(2025, time.January, 5)), "inverted range sums to zero")
}
