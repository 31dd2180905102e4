package progress

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 5 * time.Minute

// Cache keeps serialized snapshots in Redis to offload Postgres reads.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ SnapshotCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(userID string) string {
	return "progress:snapshot:" + userID
}

func (c *Cache) Get(ctx context.Context, userID string) (*Snapshot, error) {
	data, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Cache) Set(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(snap.UserID), data, c.ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, userID string) error {
	return c.client.Del(ctx, cacheKey(userID)).Err()
}
