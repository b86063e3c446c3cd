package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "stayledger/pkg/domain-errors"
)

func TestParseEnums(t *testing.T) {
	t.Run("counting mode", func(t *testing.T) {
		m, err := ParseCountingMode("days")
		require.NoError(t, err)
		assert.Equal(t, CountingModeDays, m)

		m, err = ParseCountingMode("")
		require.NoError(t, err)
		assert.Equal(t, CountingModeNights, m, "empty falls back to the default")

		_, err = ParseCountingMode("fortnights")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("partial day rule", func(t *testing.T) {
		r, err := ParsePartialDayRule("")
		require.NoError(t, err)
		assert.Equal(t, PartialDayHalf, r)

		_, err = ParsePartialDayRule("quarter")
		require.Error(t, err)
	})

	t.Run("window type", func(t *testing.T) {
		w, err := ParseWindowType("")
		require.NoError(t, err)
		assert.Equal(t, WindowCalendarYear, w)

		_, err = ParseWindowType("lunar")
		require.Error(t, err)
	})
}

func TestPartialDayRule_Weight(t *testing.T) {
	assert.Equal(t, 1.0, PartialDayFull.Weight())
	assert.Equal(t, 0.5, PartialDayHalf.Weight())
	assert.Equal(t, 0.0, PartialDayExclude.Weight())
}

func TestNewStayInterval(t *testing.T) {
	entry := time.Date(2025, time.June, 1, 15, 30, 0, 0, time.UTC)

	t.Run("normalizes to the calendar date", func(t *testing.T) {
		s, err := NewStayInterval(entry, nil)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), s.EntryDate)
		assert.Nil(t, s.ExitDate)
		assert.False(t, s.ID.IsNil())
	})

	t.Run("rejects exit before entry", func(t *testing.T) {
		exit := entry.AddDate(0, 0, -2)
		_, err := NewStayInterval(entry, &exit)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("same-day exit is allowed", func(t *testing.T) {
		exit := entry.Add(2 * time.Hour)
		s, err := NewStayInterval(entry, &exit)
		require.NoError(t, err)
		assert.True(t, s.EntryDate.Equal(*s.ExitDate))
	})
}

func TestTrackedCountry_Clone(t *testing.T) {
	exit := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	anchor := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	arrival := true

	original := &TrackedCountry{
		CountryCode: "ES",
		Settings:    Settings{CountingMode: CountingModeDays, PartialDayRule: PartialDayFull, CountArrivalDay: &arrival},
		ResetAnchor: &anchor,
		Stays: []StayInterval{
			{EntryDate: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), ExitDate: &exit},
		},
	}

	clone := original.Clone()
	*clone.ResetAnchor = clone.ResetAnchor.AddDate(0, 0, 7)
	*clone.Stays[0].ExitDate = clone.Stays[0].ExitDate.AddDate(0, 0, 7)
	clone.Stays = append(clone.Stays, StayInterval{})

	assert.True(t, original.ResetAnchor.Equal(anchor), "clone must not share the anchor")
	assert.True(t, original.Stays[0].ExitDate.Equal(exit), "clone must not share stay dates")
	assert.Len(t, original.Stays, 1)
}

func TestAddCountryRequest_Validate(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		input, err := AddCountryRequest{CountryCode: "pt", DayLimit: 183}.Validate()
		require.NoError(t, err)
		assert.Equal(t, "PT", input.CountryCode)
		assert.Equal(t, "PT", input.CountryName)
		assert.Equal(t, CountingModeNights, input.Settings.CountingMode)
		assert.Equal(t, PartialDayHalf, input.Settings.PartialDayRule)
		assert.Equal(t, WindowCalendarYear, input.WindowType)
	})

	t.Run("rolling window requires a size", func(t *testing.T) {
		_, err := AddCountryRequest{CountryCode: "FR", DayLimit: 90, WindowType: "rolling"}.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects missing code and bad limit", func(t *testing.T) {
		_, err := AddCountryRequest{DayLimit: 90}.Validate()
		require.Error(t, err)
		_, err = AddCountryRequest{CountryCode: "DE", DayLimit: 0}.Validate()
		require.Error(t, err)
	})
}

func TestUpdateSettingsRequest_Validate(t *testing.T) {
	t.Run("requires complete enums", func(t *testing.T) {
		// Unlike creation, a settings replacement must be explicit:
		// an empty field here is a client bug, not a default request.
		_, err := UpdateSettingsRequest{CountingMode: "days"}.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("valid replacement", func(t *testing.T) {
		s, err := UpdateSettingsRequest{CountingMode: "days", PartialDayRule: "exclude"}.Validate()
		require.NoError(t, err)
		assert.Equal(t, CountingModeDays, s.CountingMode)
		assert.Equal(t, PartialDayExclude, s.PartialDayRule)
	})
}

func TestAddStayRequest_Validate(t *testing.T) {
	t.Run("parses wire dates", func(t *testing.T) {
		exit := "2025-02-01"
		s, err := AddStayRequest{EntryDate: "2025-01-15", ExitDate: &exit}.Validate()
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), s.EntryDate)
		require.NotNil(t, s.ExitDate)
	})

	t.Run("rejects inverted interval", func(t *testing.T) {
		exit := "2025-01-01"
		_, err := AddStayRequest{EntryDate: "2025-01-15", ExitDate: &exit}.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		_, err := AddStayRequest{EntryDate: "15/01/2025"}.Validate()
		require.Error(t, err)
	})
}
