package service

import (
	"context"
	"time"

	"stayledger/internal/tracking/engine"
	"stayledger/internal/tracking/models"
	id "stayledger/pkg/domain"
	dErrors "stayledger/pkg/domain-errors"
	"stayledger/pkg/requestcontext"
)

// GetCountry returns a snapshot of one tracked country, stays included.
func (s *Service) GetCountry(ctx context.Context, countryID id.CountryID) (*models.TrackedCountry, error) {
	country, err := s.store.Get(ctx, countryID)
	if err != nil {
		if isNotFound(err) {
			return nil, dErrors.New(dErrors.CodeNotFound, "unknown country")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tracked country")
	}
	return country, nil
}

// ListCountries returns snapshots of every tracked country.
func (s *Service) ListCountries(ctx context.Context) ([]*models.TrackedCountry, error) {
	countries, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tracked countries")
	}
	return countries, nil
}

// CountResult computes the compliance view for a country as of the given
// date, defaulting to the request time. Safe to call repeatedly: it has no
// side effects beyond the derived-result cache.
func (s *Service) CountResult(ctx context.Context, countryID id.CountryID, asOf *time.Time) (*models.CountResult, error) {
	at := requestcontext.Now(ctx)
	if asOf != nil {
		at = *asOf
	}
	return s.compute(ctx, countryID, at)
}

// ProjectCountResult runs the same computation against a hypothetical date,
// the "if I stay until X" planning path. Any date is accepted, past or
// future.
func (s *Service) ProjectCountResult(ctx context.Context, countryID id.CountryID, date time.Time) (*models.CountResult, error) {
	return s.compute(ctx, countryID, date)
}

func (s *Service) compute(ctx context.Context, countryID id.CountryID, asOf time.Time) (*models.CountResult, error) {
	asOf = models.NormalizeDate(asOf)

	country, err := s.GetCountry(ctx, countryID)
	if err != nil {
		return nil, err
	}

	if result, ok := s.cache.Get(ctx, countryID, country.Version, asOf); ok {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		return result, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	start := time.Now()
	result := engine.Compute(country, asOf)
	if s.metrics != nil {
		s.metrics.ObserveEvaluation(time.Since(start).Seconds())
	}

	s.cache.Put(ctx, countryID, country.Version, asOf, &result)
	return &result, nil
}
