package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/felixgeelhaar/maker-go/domain/cache"
)

type cached struct {
	key       string
	value     []byte
	expiresAt time.Time
}

func (c *cached) expired(now time.Time) bool {
	return !c.expiresAt.IsZero() && !now.Before(c.expiresAt)
}

// Cache is a process-local cache.Cache. Once Capacity entries are held, the
// least recently read or written entry is evicted.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front is most recent
	index    map[string]*list.Element
	hits     int64
	misses   int64
	now      func() time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithMaxSize bounds the number of entries. Zero or less means unbounded.
func WithMaxSize(size int) CacheOption {
	return func(c *Cache) { c.capacity = size }
}

// NewCache holds 4096 entries unless WithMaxSize says otherwise.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		capacity: 4096,
		order:    list.New(),
		index:    make(map[string]*list.Element),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the stored value.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if ok && el.Value.(*cached).expired(c.now()) {
		c.remove(el)
		ok = false
	}
	if !ok {
		c.misses++
		return nil, false, nil
	}

	c.hits++
	c.order.MoveToFront(el)
	return append([]byte(nil), el.Value.(*cached).value...), true, nil
}

// Set stores a copy of value.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return cache.ErrInvalidKey
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cached{key: key, value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	if el, ok := c.index[key]; ok {
		el.Value = entry
		c.order.MoveToFront(el)
		return nil
	}

	c.index[key] = c.order.PushFront(entry)
	for c.capacity > 0 && c.order.Len() > c.capacity {
		c.remove(c.order.Back())
	}
	return nil
}

// Delete removes key if present.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		c.remove(el)
	}
	return nil
}

// Clear removes all entries. Hit and miss counts are kept.
func (c *Cache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.index = make(map[string]*list.Element)
	return nil
}

// Stats counts unexpired entries.
func (c *Cache) Stats(ctx context.Context) (cache.Stats, error) {
	if err := ctx.Err(); err != nil {
		return cache.Stats{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var live int64
	for el := c.order.Front(); el != nil; el = el.Next() {
		if !el.Value.(*cached).expired(now) {
			live++
		}
	}
	return cache.Stats{Hits: c.hits, Misses: c.misses, Entries: live}, nil
}

// remove must be called with mu held.
func (c *Cache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.index, el.Value.(*cached).key)
}

var (
	_ cache.Cache     = (*Cache)(nil)
	_ cache.Inspector = (*Cache)(nil)
)
