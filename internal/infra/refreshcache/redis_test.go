package refreshcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"yundao/internal/domain"

	"github.com/alicebob/miniredis/v2"
)

func newRedisTestCache(t *testing.T) (domain.RefreshCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache, err := NewRedisCache(mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	return cache, mr
}

func TestRedisCacheSetGet(t *testing.T) {
	cache, _ := newRedisTestCache(t)
	ctx := context.Background()

	key := domain.RefreshKey("alice")
	if err := cache.Set(ctx, key, "1700000000000", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	ok, err := cache.Has(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Has = %v, %v; want true, nil", ok, err)
	}
	value, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value != "1700000000000" {
		t.Fatalf("Get = %q", value)
	}
}

func TestRedisCacheMissingKey(t *testing.T) {
	cache, _ := newRedisTestCache(t)
	ctx := context.Background()

	ok, err := cache.Has(ctx, domain.RefreshKey("nobody"))
	if err != nil || ok {
		t.Fatalf("Has = %v, %v; want false, nil", ok, err)
	}
	if _, err := cache.Get(ctx, domain.RefreshKey("nobody")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get: expected ErrNotFound, got %v", err)
	}
}

func TestRedisCacheTTLExpiry(t *testing.T) {
	cache, mr := newRedisTestCache(t)
	ctx := context.Background()

	key := domain.RefreshKey("alice")
	if err := cache.Set(ctx, key, "marker", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	ok, err := cache.Has(ctx, key)
	if err != nil || ok {
		t.Fatalf("Has after expiry = %v, %v; want false, nil", ok, err)
	}
}

func TestRedisCacheDelete(t *testing.T) {
	cache, _ := newRedisTestCache(t)
	ctx := context.Background()

	key := domain.RefreshKey("alice")
	if err := cache.Set(ctx, key, "marker", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := cache.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := cache.Get(ctx, key); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get after delete: expected ErrNotFound, got %v", err)
	}
}

func TestRedisCacheOverwriteSupersedes(t *testing.T) {
	cache, _ := newRedisTestCache(t)
	ctx := context.Background()

	key := domain.RefreshKey("alice")
	if err := cache.Set(ctx, key, "first", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := cache.Set(ctx, key, "second", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value != "second" {
		t.Fatalf("Get = %q; the later write must win", value)
	}
}
