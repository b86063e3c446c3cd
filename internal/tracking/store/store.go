// Package store persists tracked countries and their stay intervals.
//
// Stores are pure I/O with a snapshot contract: reads return deep copies,
// and Mutate applies a change as read-copy-apply-commit so a computation in
// progress never observes a partially written record. Domain logic lives in
// the service and engine layers.
package store

import (
	"context"
	"errors"

	"stayledger/internal/tracking/models"
	id "stayledger/pkg/domain"
)

// ErrNotFound is returned when the referenced country does not exist.
var ErrNotFound = errors.New("tracked country not found")

// ErrAlreadyExists is returned when creating a country whose ID is taken.
var ErrAlreadyExists = errors.New("tracked country already exists")

// Store is the persistence contract for tracked countries.
type Store interface {
	// Create inserts a new tracked country.
	Create(ctx context.Context, country *models.TrackedCountry) error

	// Get returns a snapshot of one country. Callers own the returned
	// record and may compute against it without holding any lock.
	Get(ctx context.Context, countryID id.CountryID) (*models.TrackedCountry, error)

	// List returns snapshots of all tracked countries ordered by
	// creation time.
	List(ctx context.Context) ([]*models.TrackedCountry, error)

	// Mutate applies fn to a copy of the stored record and commits the
	// copy only if fn succeeds, bumping the record version. A failed fn
	// leaves stored state untouched (validate, then commit).
	Mutate(ctx context.Context, countryID id.CountryID, fn func(*models.TrackedCountry) error) (*models.TrackedCountry, error)

	// Delete removes a country and all its stays.
	Delete(ctx context.Context, countryID id.CountryID) error
}
