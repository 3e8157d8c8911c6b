package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/maker-go/domain/cache"
)

const scanBatch = 100

// Cache is a cache.Cache on a Redis server.
type Cache struct {
	client *redis.Client
	prefix string

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache connects and pings the server.
func NewCache(cfg Config, opts ...ConfigOption) (*Cache, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	options, err := cfg.options()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cache.ErrUnavailable, err)
	}
	client := redis.NewClient(options)

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", cache.ErrUnavailable, err)
	}
	return NewCacheFromClient(client, cfg.KeyPrefix), nil
}

// NewCacheFromClient uses an existing client. Close closes it.
func NewCacheFromClient(client *redis.Client, keyPrefix string) *Cache {
	return &Cache{client: client, prefix: keyPrefix}
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	value, err := c.client.Get(ctx, c.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.misses.Add(1)
		return nil, false, nil
	case err != nil:
		return nil, false, classify(err)
	}

	c.hits.Add(1)
	return value, true, nil
}

// Set uses the server-side expiry for ttl; zero keeps the key.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return cache.ErrInvalidKey
	}
	return classify(c.client.Set(ctx, c.key(key), value, ttl).Err())
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return classify(c.client.Del(ctx, c.key(key)).Err())
}

// Clear unlinks every key under the prefix, one pipelined batch per scan page.
func (c *Cache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.scan(ctx, func(keys []string) error {
		_, err := c.client.Pipelined(ctx, func(p redis.Pipeliner) error {
			p.Unlink(ctx, keys...)
			return nil
		})
		return err
	})
}

// Stats counts the keys under the prefix with SCAN.
func (c *Cache) Stats(ctx context.Context) (cache.Stats, error) {
	if err := ctx.Err(); err != nil {
		return cache.Stats{}, err
	}

	var n int64
	err := c.scan(ctx, func(keys []string) error {
		n += int64(len(keys))
		return nil
	})
	if err != nil {
		return cache.Stats{}, err
	}
	return cache.Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Entries: n}, nil
}

func (c *Cache) scan(ctx context.Context, page func([]string) error) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", scanBatch).Iterator()

	keys := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == scanBatch {
			if err := page(keys); err != nil {
				return classify(err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return classify(err)
	}
	if len(keys) > 0 {
		return classify(page(keys))
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// classify maps timeouts to cache.ErrTimeout, keeping the cause.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", cache.ErrTimeout, err)
	}
	return err
}

var (
	_ cache.Cache     = (*Cache)(nil)
	_ cache.Inspector = (*Cache)(nil)
)
