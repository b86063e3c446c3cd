// Package cache memoizes computed count results in Redis.
//
// Every cache key embeds the country record version, and every mutation
// bumps the version, so a stale entry is simply unreachable — the "full
// recomputation from state" guarantee holds whether or not Redis is
// configured. The cache is best-effort: any Redis failure degrades to a
// recompute, never to a wrong answer. A circuit breaker stops it from
// paying a round-trip timeout on every read while Redis is down.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"stayledger/internal/platform/redis"
	"stayledger/internal/tracking/models"
	id "stayledger/pkg/domain"
	"stayledger/pkg/platform/circuit"
)

// ResultCache stores derived CountResults keyed by country, version, and
// as-of date.
type ResultCache struct {
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	breaker *circuit.Breaker
}

// New constructs a result cache. A nil client yields a disabled cache that
// always misses, so callers never branch on configuration.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *ResultCache {
	return &ResultCache{
		client:  client,
		ttl:     ttl,
		logger:  logger,
		breaker: circuit.New("result-cache"),
	}
}

func key(countryID id.CountryID, version int64, asOf time.Time) string {
	return fmt.Sprintf("stayledger:count:%s:%d:%s", countryID, version, asOf.Format(models.DateLayout))
}

// Get returns a previously computed result for this exact country version
// and as-of date, if present.
func (c *ResultCache) Get(ctx context.Context, countryID id.CountryID, version int64, asOf time.Time) (*models.CountResult, bool) {
	if c == nil || c.client == nil || c.breaker.IsOpen() {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key(countryID, version, asOf)).Bytes()
	if err != nil {
		if !redis.IsNil(err) {
			c.recordFailure(ctx, err)
		}
		return nil, false
	}
	c.recordSuccess(ctx)

	var result models.CountResult
	if err := json.Unmarshal(raw, &result); err != nil {
		c.logger.WarnContext(ctx, "discarding undecodable cached result",
			"country_id", countryID,
			"error", err.Error(),
		)
		return nil, false
	}
	return &result, true
}

// Put stores a computed result. Failures are logged and swallowed; the
// cache never blocks a read path.
func (c *ResultCache) Put(ctx context.Context, countryID id.CountryID, version int64, asOf time.Time, result *models.CountResult) {
	if c == nil || c.client == nil || c.breaker.IsOpen() {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(countryID, version, asOf), raw, c.ttl).Err(); err != nil {
		c.recordFailure(ctx, err)
		return
	}
	c.recordSuccess(ctx)
}

func (c *ResultCache) recordFailure(ctx context.Context, err error) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "result cache circuit opened, serving recomputes only",
			"error", err.Error(),
		)
	}
}

func (c *ResultCache) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "result cache circuit closed")
	}
}
