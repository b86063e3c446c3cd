// Package service owns the mutation boundary of the tracking domain:
// validate, then commit. Reads recompute compliance in full from a store
// snapshot on every call, so settings changes apply retroactively and
// nothing served is ever stale.
package service

import (
	"errors"
	"fmt"
	"log/slog"

	"stayledger/internal/tracking/cache"
	"stayledger/internal/tracking/metrics"
	"stayledger/internal/tracking/store"
)

type Service struct {
	store   store.Store
	cache   *cache.ResultCache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithResultCache(c *cache.ResultCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func New(st store.Store, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("tracking store is required")
	}

	svc := &Service{
		store:  st,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// errors.Is against the store sentinels keeps the store free of transport
// concerns while the service owns the error taxonomy.
func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
