package badger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/maker-go/domain/cache"
	"github.com/felixgeelhaar/maker-go/infrastructure/storage/badger"
)

func newTestCache(t *testing.T, opts ...badger.Option) *badger.Cache {
	t.Helper()

	c, err := badger.NewCache(badger.Config{InMemory: true}, opts...)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func entries(t *testing.T, c *badger.Cache) int64 {
	t.Helper()

	s, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	return s.Entries
}

func TestCache_SetAndGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "step:1", []byte("value"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, found, err := c.Get(ctx, "step:1")
	if err != nil || !found || string(value) != "value" {
		t.Fatalf("Get() = %q, %v, %v", value, found, err)
	}
	if _, found, err := c.Get(ctx, "step:2"); err != nil || found {
		t.Errorf("Get(missing) = %v, %v", found, err)
	}

	s, err := c.Stats(ctx)
	if err != nil || s.Hits != 1 || s.Misses != 1 || s.Entries != 1 {
		t.Errorf("Stats() = %+v, %v", s, err)
	}
}

func TestCache_Overwrite(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("one"), 0)
	_ = c.Set(ctx, "k", []byte("two"), 0)

	if value, _, _ := c.Get(ctx, "k"); string(value) != "two" {
		t.Errorf("Get() = %q, want two", value)
	}
}

func TestCache_TTL(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "short", []byte("v"), time.Second); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, found, _ := c.Get(ctx, "short"); !found {
		t.Fatal("Get() should hit before expiry")
	}

	time.Sleep(2100 * time.Millisecond)

	if _, found, _ := c.Get(ctx, "short"); found {
		t.Error("Get() should miss after expiry")
	}
}

func TestCache_PrefixIsolation(t *testing.T) {
	c := newTestCache(t, badger.WithKeyPrefix("maker:"))
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, key, []byte(key), 0)
	}
	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n := entries(t, c); n != 2 {
		t.Errorf("Entries after Delete = %d, want 2", n)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if n := entries(t, c); n != 0 {
		t.Errorf("Entries after Clear = %d", n)
	}
}

func TestCache_InvalidKeyAndCancelled(t *testing.T) {
	c := newTestCache(t)

	if err := c.Set(context.Background(), "", []byte("v"), 0); !errors.Is(err, cache.ErrInvalidKey) {
		t.Errorf("Set(\"\") error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := c.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v", err)
	}
	if err := c.Clear(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Clear() error = %v", err)
	}
}

func TestCache_CloseTwice(t *testing.T) {
	c, err := badger.NewCache(badger.Config{InMemory: true})
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
