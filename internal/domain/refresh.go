package domain

import (
	"context"
	"time"
)

// RefreshKeyPrefix prefixes per-account refresh marker keys.
const RefreshKeyPrefix = "refresh:"

// RefreshCache is the shared store holding the one authoritative
// issue-time marker per account. All gateway instances agree through it;
// no transactional guarantee is assumed across Get+Set.
type RefreshCache interface {
	Has(ctx context.Context, key string) (bool, error)
	// Get returns ErrNotFound when the key is absent or expired.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

func RefreshKey(account string) string {
	return RefreshKeyPrefix + account
}
