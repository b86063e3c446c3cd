package service

import (
	"context"

	"stayledger/internal/tracking/models"
	id "stayledger/pkg/domain"
	dErrors "stayledger/pkg/domain-errors"
	"stayledger/pkg/requestcontext"
)

// AddCountry starts tracking a country. The same country code may be
// tracked more than once under different conventions; identity is the new
// record's ID.
func (s *Service) AddCountry(ctx context.Context, req models.AddCountryRequest) (*models.TrackedCountry, error) {
	input, err := req.Validate()
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	country := &models.TrackedCountry{
		ID:             id.NewCountryID(),
		CountryCode:    input.CountryCode,
		CountryName:    input.CountryName,
		DayLimit:       input.DayLimit,
		Settings:       input.Settings,
		WindowType:     input.WindowType,
		WindowSizeDays: input.WindowSizeDays,
		Active:         true,
		Stays:          []models.StayInterval{},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.Create(ctx, country); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create tracked country")
	}

	if s.metrics != nil {
		s.metrics.CountriesTracked.Inc()
	}
	s.logger.InfoContext(ctx, "country tracked",
		"request_id", requestcontext.RequestID(ctx),
		"country_id", country.ID,
		"country_code", country.CountryCode,
		"day_limit", country.DayLimit,
	)

	return country, nil
}

// RemoveCountry deletes a tracked country and all its stays.
func (s *Service) RemoveCountry(ctx context.Context, countryID id.CountryID) error {
	if err := s.store.Delete(ctx, countryID); err != nil {
		if isNotFound(err) {
			return dErrors.New(dErrors.CodeNotFound, "unknown country")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove tracked country")
	}

	if s.metrics != nil {
		s.metrics.CountriesTracked.Dec()
	}
	s.logger.InfoContext(ctx, "country removed",
		"request_id", requestcontext.RequestID(ctx),
		"country_id", countryID,
	)
	return nil
}

// UpdateSettings atomically replaces the counting configuration. The new
// settings apply retroactively to the whole stay history on the next read.
func (s *Service) UpdateSettings(ctx context.Context, countryID id.CountryID, req models.UpdateSettingsRequest) (*models.TrackedCountry, error) {
	settings, err := req.Validate()
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, countryID, "settings updated", func(c *models.TrackedCountry) error {
		c.Settings = settings
		c.UpdatedAt = requestcontext.Now(ctx)
		return nil
	})
}

// UpdateLimit replaces the day limit.
func (s *Service) UpdateLimit(ctx context.Context, countryID id.CountryID, dayLimit int) (*models.TrackedCountry, error) {
	if dayLimit <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "day_limit must be positive")
	}

	return s.mutate(ctx, countryID, "limit updated", func(c *models.TrackedCountry) error {
		c.DayLimit = dayLimit
		c.UpdatedAt = requestcontext.Now(ctx)
		return nil
	})
}

// ResetCountry moves the reset anchor to the request time. History stays in
// the store for audit; only dates strictly after the anchor count, so the
// active total drops to zero immediately.
func (s *Service) ResetCountry(ctx context.Context, countryID id.CountryID) (*models.TrackedCountry, error) {
	anchor := models.NormalizeDate(requestcontext.Now(ctx))

	country, err := s.mutate(ctx, countryID, "country reset", func(c *models.TrackedCountry) error {
		c.ResetAnchor = &anchor
		c.UpdatedAt = requestcontext.Now(ctx)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Resets.Inc()
	}
	return country, nil
}

// ToggleCountDays flips the active flag. An inactive country keeps its
// history and counts but reports a paused status instead of a verdict.
func (s *Service) ToggleCountDays(ctx context.Context, countryID id.CountryID) (*models.TrackedCountry, error) {
	return s.mutate(ctx, countryID, "tracking toggled", func(c *models.TrackedCountry) error {
		c.Active = !c.Active
		c.UpdatedAt = requestcontext.Now(ctx)
		return nil
	})
}

// AddStay records a stay interval. Overlapping and contiguous stays are
// accepted (imports from multiple sources produce them); the engine
// deduplicates at counting time. Future-dated stays are stored but ignored
// by counting until their dates arrive.
func (s *Service) AddStay(ctx context.Context, countryID id.CountryID, req models.AddStayRequest) (*models.TrackedCountry, error) {
	stay, err := req.Validate()
	if err != nil {
		return nil, err
	}

	country, err := s.mutate(ctx, countryID, "stay added", func(c *models.TrackedCountry) error {
		c.Stays = append(c.Stays, stay)
		c.UpdatedAt = requestcontext.Now(ctx)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.StaysRecorded.Inc()
	}
	return country, nil
}

// RemoveStay deletes one stay interval.
func (s *Service) RemoveStay(ctx context.Context, countryID id.CountryID, stayID id.StayID) (*models.TrackedCountry, error) {
	return s.mutate(ctx, countryID, "stay removed", func(c *models.TrackedCountry) error {
		i := c.FindStay(stayID)
		if i < 0 {
			return dErrors.New(dErrors.CodeNotFound, "unknown stay")
		}
		c.Stays = append(c.Stays[:i], c.Stays[i+1:]...)
		c.UpdatedAt = requestcontext.Now(ctx)
		return nil
	})
}

// mutate funnels every country mutation through the store's
// validate-then-commit contract and logs the outcome uniformly.
func (s *Service) mutate(ctx context.Context, countryID id.CountryID, event string, fn func(*models.TrackedCountry) error) (*models.TrackedCountry, error) {
	country, err := s.store.Mutate(ctx, countryID, fn)
	if err != nil {
		if isNotFound(err) {
			return nil, dErrors.New(dErrors.CodeNotFound, "unknown country")
		}
		if dErrors.HasCode(err, dErrors.CodeNotFound) || dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update tracked country")
	}

	s.logger.InfoContext(ctx, event,
		"request_id", requestcontext.RequestID(ctx),
		"country_id", countryID,
		"version", country.Version,
	)
	return country, nil
}
