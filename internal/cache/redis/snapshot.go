// Package redis persists per-provider record snapshots so the store can be
// warmed on startup before the first live refresh completes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/pricelens/internal/domain"
	"github.com/davidbz/pricelens/internal/observability"
)

const snapshotKeyPrefix = "pricelens:snapshot:"

// SnapshotCache implements domain.SnapshotCache on top of Redis. One key
// per provider holding the JSON-encoded record set.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache creates a new Redis-backed snapshot cache. A zero TTL
// keeps snapshots until the next refresh overwrites them.
func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		client: client,
		ttl:    ttl,
	}
}

// Save replaces the cached snapshot for one provider.
func (c *SnapshotCache) Save(ctx context.Context, providerName string, records []domain.PricingRecord) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := snapshotKeyPrefix + providerName
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	observability.FromContext(ctx).Debug("snapshot saved",
		observability.String("provider", providerName),
		observability.Int("models", len(records)),
	)
	return nil
}

// Load returns the cached snapshot for one provider, or domain.ErrCacheMiss
// when none exists.
func (c *SnapshotCache) Load(ctx context.Context, providerName string) ([]domain.PricingRecord, error) {
	key := snapshotKeyPrefix + providerName

	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var records []domain.PricingRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return records, nil
}
