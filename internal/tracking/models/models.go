// Package models defines the tracked-country domain model and its closed
// enum types. Enums are validated at the mutation boundary so stored state
// never holds an out-of-range value.
package models

import (
	"time"

	id "stayledger/pkg/domain"
	dErrors "stayledger/pkg/domain-errors"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// CountingMode determines whether presence is measured in calendar days or
// nights spent.
type CountingMode string

const (
	CountingModeDays   CountingMode = "days"
	CountingModeNights CountingMode = "nights"
)

// IsValid checks if the counting mode is one of the supported enum values.
func (m CountingMode) IsValid() bool {
	switch m {
	case CountingModeDays, CountingModeNights:
		return true
	}
	return false
}

// ParseCountingMode creates a CountingMode from a string, validating it.
// Empty input falls back to the documented default (nights).
func ParseCountingMode(s string) (CountingMode, error) {
	if s == "" {
		return CountingModeNights, nil
	}
	m := CountingMode(s)
	if !m.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid counting mode %q: must be 'days' or 'nights'", s)
	}
	return m, nil
}

// PartialDayRule is the weighting policy applied to arrival and departure
// days: count as a full day, half a day, or not at all.
type PartialDayRule string

const (
	PartialDayFull    PartialDayRule = "full"
	PartialDayHalf    PartialDayRule = "half"
	PartialDayExclude PartialDayRule = "exclude"
)

// IsValid checks if the partial-day rule is one of the supported enum values.
func (r PartialDayRule) IsValid() bool {
	switch r {
	case PartialDayFull, PartialDayHalf, PartialDayExclude:
		return true
	}
	return false
}

// ParsePartialDayRule creates a PartialDayRule from a string, validating it.
// Empty input falls back to the documented default (half).
func ParsePartialDayRule(s string) (PartialDayRule, error) {
	if s == "" {
		return PartialDayHalf, nil
	}
	r := PartialDayRule(s)
	if !r.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid partial day rule %q: must be 'full', 'half' or 'exclude'", s)
	}
	return r, nil
}

// Weight returns the fractional day contribution this rule assigns to a
// partial day.
func (r PartialDayRule) Weight() float64 {
	switch r {
	case PartialDayFull:
		return 1
	case PartialDayExclude:
		return 0
	default:
		return 0.5
	}
}

// WindowType selects the compliance period a country is evaluated against.
type WindowType string

const (
	WindowCalendarYear WindowType = "calendar_year"
	WindowRolling      WindowType = "rolling"
)

// IsValid checks if the window type is one of the supported enum values.
func (w WindowType) IsValid() bool {
	switch w {
	case WindowCalendarYear, WindowRolling:
		return true
	}
	return false
}

// ParseWindowType creates a WindowType from a string, validating it.
// Empty input falls back to the documented default (calendar year).
func ParseWindowType(s string) (WindowType, error) {
	if s == "" {
		return WindowCalendarYear, nil
	}
	w := WindowType(s)
	if !w.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid window type %q: must be 'calendar_year' or 'rolling'", s)
	}
	return w, nil
}

// Status is the compliance verdict for a country as of a given date.
type Status string

const (
	StatusSafe     Status = "safe"
	StatusWarning  Status = "warning"
	StatusExceeded Status = "exceeded"
	// StatusPaused is reported for inactive countries instead of a
	// compliance verdict, so a paused country never silently looks safe.
	StatusPaused Status = "paused"
)

// Settings bundles the counting configuration replaced atomically by
// settings updates. The arrival/departure override pointers are tri-state:
// nil follows PartialDayRule, non-nil forces the day in or out.
type Settings struct {
	CountingMode      CountingMode   `json:"counting_mode"`
	PartialDayRule    PartialDayRule `json:"partial_day_rule"`
	CountArrivalDay   *bool          `json:"count_arrival_day,omitempty"`
	CountDepartureDay *bool          `json:"count_departure_day,omitempty"`
}

// DefaultSettings returns the documented fallback configuration.
func DefaultSettings() Settings {
	return Settings{
		CountingMode:   CountingModeNights,
		PartialDayRule: PartialDayHalf,
	}
}

// Validate rejects settings holding out-of-range enum values.
func (s Settings) Validate() error {
	if !s.CountingMode.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "invalid counting mode %q", s.CountingMode)
	}
	if !s.PartialDayRule.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "invalid partial day rule %q", s.PartialDayRule)
	}
	return nil
}

// StayInterval is a contiguous date range of physical presence. A nil
// ExitDate means the person is still present.
type StayInterval struct {
	ID        id.StayID  `json:"id"`
	EntryDate time.Time  `json:"entry_date"`
	ExitDate  *time.Time `json:"exit_date,omitempty"`
}

// NewStayInterval validates and normalizes a stay. Entry and exit collapse
// to UTC midnight; an exit before the entry is rejected here so it never
// reaches the store.
func NewStayInterval(entry time.Time, exit *time.Time) (StayInterval, error) {
	entryDay := NormalizeDate(entry)
	stay := StayInterval{ID: id.NewStayID(), EntryDate: entryDay}
	if exit != nil {
		exitDay := NormalizeDate(*exit)
		if exitDay.Before(entryDay) {
			return StayInterval{}, dErrors.New(dErrors.CodeInvalidInput, "exit date cannot be before entry date")
		}
		stay.ExitDate = &exitDay
	}
	return stay, nil
}

// Clone returns a deep copy of the stay.
func (s StayInterval) Clone() StayInterval {
	out := s
	if s.ExitDate != nil {
		exit := *s.ExitDate
		out.ExitDate = &exit
	}
	return out
}

// TrackedCountry is one tracked residency ledger. The same country code can
// be tracked more than once under different conventions, so identity is the
// record ID, not the code.
type TrackedCountry struct {
	ID          id.CountryID `json:"id"`
	CountryCode string       `json:"country_code"`
	CountryName string       `json:"country_name"`

	DayLimit int      `json:"day_limit"`
	Settings Settings `json:"settings"`

	WindowType     WindowType `json:"window_type"`
	WindowSizeDays int        `json:"window_size_days,omitempty"`

	// Active=false keeps counting but excludes the country from
	// compliance verdicts (reported as paused).
	Active bool `json:"active"`

	// ResetAnchor is an exclusive lower bound: only dates strictly after
	// it contribute to the active count. Nil means no reset has happened.
	ResetAnchor *time.Time `json:"reset_anchor,omitempty"`

	Stays []StayInterval `json:"stays"`

	// Version increments on every mutation; derived-result caches key on
	// it so a stale entry can never be served.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy, the unit of copy-on-write snapshot isolation:
// every reader computes against its own copy while writers build new ones.
func (c *TrackedCountry) Clone() *TrackedCountry {
	out := *c
	if c.ResetAnchor != nil {
		anchor := *c.ResetAnchor
		out.ResetAnchor = &anchor
	}
	out.Stays = make([]StayInterval, len(c.Stays))
	for i, s := range c.Stays {
		out.Stays[i] = s.Clone()
	}
	return &out
}

// FindStay returns the index of the stay with the given ID, or -1.
func (c *TrackedCountry) FindStay(stayID id.StayID) int {
	for i, s := range c.Stays {
		if s.ID == stayID {
			return i
		}
	}
	return -1
}

// CountResult is the derived compliance view consumed by dashboard panels.
// It is always recomputed from stored state, never persisted as
// authoritative data.
type CountResult struct {
	CountedDays   float64   `json:"counted_days"`
	WindowStart   time.Time `json:"window_start"`
	WindowEnd     time.Time `json:"window_end"`
	WindowDays    int       `json:"window_days"`
	DaysRemaining float64   `json:"days_remaining"`
	Status        Status    `json:"status"`
}

// NormalizeDate collapses a timestamp to its UTC calendar date. All engine
// arithmetic runs on these normalized midnights.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a wire-format calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, dErrors.Newf(dErrors.CodeInvalidInput, "invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}
