package models

import (
	"strings"
	"time"

	dErrors "stayledger/pkg/domain-errors"
)

// AddCountryRequest is the wire payload for tracking a new country.
// Settings fields are optional; absent values take the documented defaults.
type AddCountryRequest struct {
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`
	DayLimit    int    `json:"day_limit"`

	CountingMode      string `json:"counting_mode,omitempty"`
	PartialDayRule    string `json:"partial_day_rule,omitempty"`
	CountArrivalDay   *bool  `json:"count_arrival_day,omitempty"`
	CountDepartureDay *bool  `json:"count_departure_day,omitempty"`

	WindowType     string `json:"window_type,omitempty"`
	WindowSizeDays int    `json:"window_size_days,omitempty"`
}

// NewCountryInput is the validated form of AddCountryRequest.
type NewCountryInput struct {
	CountryCode    string
	CountryName    string
	DayLimit       int
	Settings       Settings
	WindowType     WindowType
	WindowSizeDays int
}

// Validate checks the request and resolves enums and defaults.
func (r AddCountryRequest) Validate() (NewCountryInput, error) {
	code := strings.ToUpper(strings.TrimSpace(r.CountryCode))
	if code == "" {
		return NewCountryInput{}, dErrors.New(dErrors.CodeInvalidInput, "country_code is required")
	}
	if r.DayLimit <= 0 {
		return NewCountryInput{}, dErrors.New(dErrors.CodeInvalidInput, "day_limit must be positive")
	}

	mode, err := ParseCountingMode(r.CountingMode)
	if err != nil {
		return NewCountryInput{}, err
	}
	rule, err := ParsePartialDayRule(r.PartialDayRule)
	if err != nil {
		return NewCountryInput{}, err
	}
	windowType, err := ParseWindowType(r.WindowType)
	if err != nil {
		return NewCountryInput{}, err
	}
	if windowType == WindowRolling && r.WindowSizeDays <= 0 {
		return NewCountryInput{}, dErrors.New(dErrors.CodeInvalidInput, "window_size_days must be positive for a rolling window")
	}

	name := strings.TrimSpace(r.CountryName)
	if name == "" {
		name = code
	}

	return NewCountryInput{
		CountryCode: code,
		CountryName: name,
		DayLimit:    r.DayLimit,
		Settings: Settings{
			CountingMode:      mode,
			PartialDayRule:    rule,
			CountArrivalDay:   r.CountArrivalDay,
			CountDepartureDay: r.CountDepartureDay,
		},
		WindowType:     windowType,
		WindowSizeDays: r.WindowSizeDays,
	}, nil
}

// UpdateSettingsRequest replaces a country's counting settings atomically.
// All enum fields must be present; a partial update would make a failed
// validation leave half-applied settings behind.
type UpdateSettingsRequest struct {
	CountingMode      string `json:"counting_mode"`
	PartialDayRule    string `json:"partial_day_rule"`
	CountArrivalDay   *bool  `json:"count_arrival_day,omitempty"`
	CountDepartureDay *bool  `json:"count_departure_day,omitempty"`
}

// Validate resolves the request into a complete Settings value.
func (r UpdateSettingsRequest) Validate() (Settings, error) {
	mode := CountingMode(r.CountingMode)
	if !mode.IsValid() {
		return Settings{}, dErrors.Newf(dErrors.CodeInvalidInput, "invalid counting mode %q", r.CountingMode)
	}
	rule := PartialDayRule(r.PartialDayRule)
	if !rule.IsValid() {
		return Settings{}, dErrors.Newf(dErrors.CodeInvalidInput, "invalid partial day rule %q", r.PartialDayRule)
	}
	return Settings{
		CountingMode:      mode,
		PartialDayRule:    rule,
		CountArrivalDay:   r.CountArrivalDay,
		CountDepartureDay: r.CountDepartureDay,
	}, nil
}

// UpdateLimitRequest replaces a country's day limit.
type UpdateLimitRequest struct {
	DayLimit int `json:"day_limit"`
}

// AddStayRequest records a stay interval. ExitDate may be omitted for a
// stay that is still in progress.
type AddStayRequest struct {
	EntryDate string  `json:"entry_date"`
	ExitDate  *string `json:"exit_date,omitempty"`
}

// Validate parses the wire dates into a stay interval.
func (r AddStayRequest) Validate() (StayInterval, error) {
	if r.EntryDate == "" {
		return StayInterval{}, dErrors.New(dErrors.CodeInvalidInput, "entry_date is required")
	}
	entry, err := ParseDate(r.EntryDate)
	if err != nil {
		return StayInterval{}, err
	}
	var exit *time.Time
	if r.ExitDate != nil {
		parsed, err := ParseDate(*r.ExitDate)
		if err != nil {
			return StayInterval{}, err
		}
		exit = &parsed
	}
	return NewStayInterval(entry, exit)
}
