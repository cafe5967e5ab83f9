package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// FeedCache stores rendered public listings. Entries are namespaced by a
// generation counter; Invalidate bumps the generation so every older entry
// becomes unreachable at once and expires on its own TTL.
//
// Get reports the generation it read under and Set writes under the
// generation it is given. A page computed before an Invalidate is therefore
// stored under a generation nobody reads any more.
type FeedCache interface {
	Get(ctx context.Context, key string, dest interface{}) (Generation, bool, error)
	Set(ctx context.Context, gen Generation, key string, value interface{}) error
	Invalidate(ctx context.Context) error
}

// Generation identifies one cache namespace between two invalidations.
type Generation string

const generationKey = "newsroom:feed:generation"

type redisFeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisFeedCache(client *redis.Client, ttl time.Duration) FeedCache {
	return &redisFeedCache{client: client, ttl: ttl}
}

// NewRedisClient connects and pings. Callers decide whether a failure is fatal.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (c *redisFeedCache) generation(ctx context.Context) (Generation, error) {
	gen, err := c.client.Get(ctx, generationKey).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return Generation(gen), err
}

func fullKey(gen Generation, key string) string {
	return "newsroom:feed:" + string(gen) + ":" + key
}

func (c *redisFeedCache) Get(ctx context.Context, key string, dest interface{}) (Generation, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return "", false, err
	}

	raw, err := c.client.Get(ctx, fullKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return gen, false, nil
	}
	if err != nil {
		return gen, false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return gen, false, err
	}
	return gen, true, nil
}

func (c *redisFeedCache) Set(ctx context.Context, gen Generation, key string, value interface{}) error {
	if gen == "" {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, fullKey(gen, key), raw, c.ttl).Err()
}

func (c *redisFeedCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}

type nopFeedCache struct{}

// NewNopFeedCache returns a cache that never hits. Used when redis is not
// configured.
func NewNopFeedCache() FeedCache {
	return nopFeedCache{}
}

func (nopFeedCache) Get(context.Context, string, interface{}) (Generation, bool, error) {
	return "", false, nil
}
func (nopFeedCache) Set(context.Context, Generation, string, interface{}) error { return nil }
func (nopFeedCache) Invalidate(context.Context) error                         { return nil }
