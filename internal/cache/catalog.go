package cache

import (
	"LeagueStatsApi/internal/stats"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const DefaultCatalogTTL = 10 * time.Minute

// StatTypeSource is the authoritative store a CatalogCache reads through to.
type StatTypeSource interface {
	ListBySport(ctx context.Context, sportID int64) ([]stats.StatType, error)
}

// CatalogCache keeps each sport's stat type definitions in Redis. Only definitions are
// cached, never aggregates. A nil client disables caching.
type CatalogCache struct {
	client *redis.Client
	source StatTypeSource
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCatalogCache(client *redis.Client, source StatTypeSource, ttl time.Duration,
	logger zerolog.Logger) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}

	return &CatalogCache{
		client: client,
		source: source,
		ttl:    ttl,
		logger: logger.With().Str("component", "catalog_cache").Logger(),
	}
}

func catalogKey(sportID int64) string {
	return fmt.Sprintf("catalog:sport:%d:stat_types", sportID)
}

// Catalog returns the validated catalog of a sport. Redis failures fall back to the source.
func (c *CatalogCache) Catalog(ctx context.Context, sportID int64) (*stats.Catalog, error) {
	types, err := c.StatTypes(ctx, sportID)
	if err != nil {
		return nil, err
	}

	return stats.NewCatalog(types)
}

func (c *CatalogCache) StatTypes(ctx context.Context, sportID int64) ([]stats.StatType, error) {
	if c.client == nil {
		return c.source.ListBySport(ctx, sportID)
	}

	key := catalogKey(sportID)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var types []stats.StatType
		if err := json.Unmarshal(raw, &types); err == nil {
			return types, nil
		}
		c.logger.Warn().Str("key", key).Msg("discarding undecodable catalog entry")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
	}

	types, err := c.source.ListBySport(ctx, sportID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(types)
	if err != nil {
		return nil, fmt.Errorf("marshaling catalog: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}

	return types, nil
}

// Evict drops a sport's cached catalog so the next read goes to the source.
func (c *CatalogCache) Evict(ctx context.Context, sportID int64) error {
	if c.client == nil {
		return nil
	}

	return c.client.Del(ctx, catalogKey(sportID)).Err()
}
