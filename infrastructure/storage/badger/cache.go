package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/felixgeelhaar/maker-go/domain/cache"
)

// Cache is a cache.Cache over one BadgerDB. All keys live under the
// configured prefix, so several caches may share a directory.
type Cache struct {
	db     *badger.DB
	prefix []byte

	hits   atomic.Int64
	misses atomic.Int64

	stopGC context.CancelFunc
	gcDone sync.WaitGroup
	closed sync.Once
}

// NewCache opens the database described by cfg after applying opts.
func NewCache(cfg Config, opts ...Option) (*Cache, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := badger.Open(cfg.options())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cache.ErrUnavailable, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{db: db, prefix: []byte(cfg.KeyPrefix), stopGC: cancel}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		c.gcDone.Add(1)
		go c.collect(ctx, cfg.GCInterval, cfg.GCDiscardRatio)
	}
	return c, nil
}

func (c *Cache) collect(ctx context.Context, every time.Duration, ratio float64) {
	defer c.gcDone.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// RunValueLogGC reports ErrNoRewrite once nothing is left to reclaim.
			for c.db.RunValueLogGC(ratio) == nil {
			}
		}
	}
}

func (c *Cache) key(k string) []byte {
	return append(append([]byte(nil), c.prefix...), k...)
}

// Get returns a copy of the stored value. Expired entries are misses.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		c.misses.Add(1)
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}

	c.hits.Add(1)
	return value, true, nil
}

// Set writes value with badger's native TTL when ttl is positive.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return cache.ErrInvalidKey
	}

	entry := badger.NewEntry(c.key(key), value)
	if ttl > 0 {
		entry = entry.WithTTL(ttl)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	})
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(c.key(key))
	})
}

// Clear drops every key under the prefix.
func (c *Cache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.DropPrefix(c.prefix)
}

// Stats walks the prefix to count live entries.
func (c *Cache) Stats(ctx context.Context) (cache.Stats, error) {
	var n int64
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = c.prefix

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return cache.Stats{}, err
	}
	return cache.Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Entries: n}, nil
}

// Close stops value log collection and closes the database. It is safe to
// call more than once.
func (c *Cache) Close() error {
	var err error
	c.closed.Do(func() {
		c.stopGC()
		c.gcDone.Wait()
		err = c.db.Close()
	})
	return err
}

var (
	_ cache.Cache     = (*Cache)(nil)
	_ cache.Inspector = (*Cache)(nil)
)
