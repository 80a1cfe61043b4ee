// Package cache provides a Redis read-through cache in front of the
// scenario store. Cache failures degrade to the store; they are never fatal.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/resilink/disruption-engine/internal/config"
	"github.com/resilink/disruption-engine/internal/domain"
)

// ScenarioSource is the underlying store the cache falls back to.
type ScenarioSource interface {
	GetByID(ctx context.Context, id string) (*domain.Scenario, error)
}

// ScenarioCache caches persisted scenarios by id. Scenarios are immutable
// once stored, so entries only ever expire, never invalidate.
type ScenarioCache struct {
	source ScenarioSource
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewClient creates a Redis client from configuration.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// NewScenarioCache wraps source with a Redis read-through cache. A nil
// client disables caching entirely.
func NewScenarioCache(source ScenarioSource, client *redis.Client, ttl time.Duration, logger *slog.Logger) *ScenarioCache {
	return &ScenarioCache{
		source: source,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// GetByID returns the cached scenario when present, falling back to the
// store and populating the cache on a miss.
func (c *ScenarioCache) GetByID(ctx context.Context, id string) (*domain.Scenario, error) {
	if c.client == nil {
		return c.source.GetByID(ctx, id)
	}

	key := cacheKey(id)
	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var s domain.Scenario
		if err := json.Unmarshal(data, &s); err == nil {
			return &s, nil
		}
		c.logger.Warn("Discarding corrupt cache entry", "key", key)
		c.client.Del(ctx, key)
	}

	s, err := c.source.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(s); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("Failed to cache scenario", "scenario_id", id, "error", err)
		}
	}
	return s, nil
}

func cacheKey(id string) string {
	return "scenario:" + id
}
