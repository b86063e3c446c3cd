package store

import (
	"context"
	"sort"
	"sync"

	"stayledger/internal/tracking/models"
	id "stayledger/pkg/domain"
)

// MemoryStore keeps tracked countries in memory with copy-on-write records:
// every mutation builds a fresh record, so readers holding a snapshot keep
// a consistent view for the duration of their computation.
type MemoryStore struct {
	mu        sync.RWMutex
	countries map[id.CountryID]*models.TrackedCountry
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		countries: make(map[id.CountryID]*models.TrackedCountry),
	}
}

func (s *MemoryStore) Create(_ context.Context, country *models.TrackedCountry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.countries[country.ID]; exists {
		return ErrAlreadyExists
	}
	s.countries[country.ID] = country.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, countryID id.CountryID) (*models.TrackedCountry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	country, exists := s.countries[countryID]
	if !exists {
		return nil, ErrNotFound
	}
	return country.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context) ([]*models.TrackedCountry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.TrackedCountry, 0, len(s.countries))
	for _, country := range s.countries {
		out = append(out, country.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *MemoryStore) Mutate(_ context.Context, countryID id.CountryID, fn func(*models.TrackedCountry) error) (*models.TrackedCountry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.countries[countryID]
	if !exists {
		return nil, ErrNotFound
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		// Stored state untouched: the old record is still what readers see.
		return nil, err
	}
	next.Version++
	s.countries[countryID] = next

	return next.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, countryID id.CountryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.countries[countryID]; !exists {
		return ErrNotFound
	}
	delete(s.countries, countryID)
	return nil
}
