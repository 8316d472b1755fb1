package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis so several machines can share blurred
// rasters. Transient network failures are retried with backoff.
type RedisCache struct {
	client  *redis.Client
	backoff Backoff
}

// NewRedisCache connects to url ("redis://[:password@]host:port/db") and
// pings the server once.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	c := &RedisCache{client: redis.NewClient(opts), backoff: DefaultBackoff}
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.client.Close()
		return nil, err
	}
	return c, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		data []byte
		hit  bool
	)
	err := c.backoff.Retry(ctx, func() error {
		b, err := c.client.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			return nil
		case err != nil:
			return transient(err)
		}
		data, hit = b, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return data, hit, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.backoff.Retry(ctx, func() error {
		return transient(c.client.Set(ctx, key, data, ttl).Err())
	})
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.backoff.Retry(ctx, func() error {
		return transient(c.client.Del(ctx, key).Err())
	})
}

func (c *RedisCache) Close() error { return c.client.Close() }

// transient marks everything except context errors as retryable.
func transient(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return Retryable(err)
}

var _ Cache = (*RedisCache)(nil)
