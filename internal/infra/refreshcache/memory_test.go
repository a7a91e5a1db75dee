package refreshcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"yundao/internal/domain"
)

func TestMemoryCacheExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	cache := NewMemory(func() time.Time { return *clock })
	ctx := context.Background()

	key := domain.RefreshKey("alice")
	if err := cache.Set(ctx, key, "marker", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ok, _ := cache.Has(ctx, key); !ok {
		t.Fatal("Has = false before expiry")
	}

	later := now.Add(2 * time.Minute)
	clock = &later
	if ok, _ := cache.Has(ctx, key); ok {
		t.Fatal("Has = true after expiry")
	}
	if _, err := cache.Get(ctx, key); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get after expiry: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryCacheZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewMemory(func() time.Time { return now.Add(24 * time.Hour) })
	ctx := context.Background()

	if err := cache.Set(ctx, "key", "value", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, err := cache.Get(ctx, "key")
	if err != nil || value != "value" {
		t.Fatalf("Get = %q, %v", value, err)
	}
}
