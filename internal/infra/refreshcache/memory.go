package refreshcache

import (
	"context"
	"sync"
	"time"

	"yundao/internal/domain"
)

// Memory is an in-process refresh cache for tests and single-instance
// deployments without Redis.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
	hasExpiry bool
}

func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

func (m *Memory) Has(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)
	if err == domain.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	if entry.hasExpiry && m.now().After(entry.expiresAt) {
		delete(m.entries, key)
		return "", domain.ErrNotFound
	}
	return entry.value, nil
}

func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.hasExpiry = true
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = entry
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

var _ domain.RefreshCache = (*Memory)(nil)
