package articles

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	viewCountKey   = "articles:views"
	latestCacheKey = "articles:latest"
)

// Cache accumulates view counters and caches the hot article listings in
// Redis. Counters are flushed to Postgres by the background worker so reads
// never write the articles table.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client degrades to
// pass-through behaviour.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// RecordView increments the pending view counter for an article.
func (c *Cache) RecordView(ctx context.Context, articleID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.HIncrBy(ctx, viewCountKey, articleID.String(), 1).Err()
}

// DrainViews atomically reads and clears all pending view counters.
func (c *Cache) DrainViews(ctx context.Context) (map[uuid.UUID]int64, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	pipe := c.client.TxPipeline()
	getAll := pipe.HGetAll(ctx, viewCountKey)
	pipe.Del(ctx, viewCountKey)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	raw, err := getAll.Result()
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(raw))
	for key, value := range raw {
		id, err := uuid.Parse(key)
		if err != nil {
			continue
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		counts[id] = n
	}
	return counts, nil
}

// FetchLatest loads the cached latest-articles listing or populates it.
func (c *Cache) FetchLatest(ctx context.Context, loader func(context.Context) ([]Article, error)) ([]Article, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	raw, err := c.client.Get(ctx, latestCacheKey).Bytes()
	if err == nil {
		var cached []Article
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	list, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, latestCacheKey, encoded, c.ttl).Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// Invalidate drops the cached listings after a mutation.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, latestCacheKey).Err()
}
