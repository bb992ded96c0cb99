// Package cache provides a time-boxed in-memory memoization layer for read
// queries, with coarse invalidation on every write.
package cache

import (
	"context"
	"sync"
	"time"
)

// Store memoizes computed query results by key. Writers call InvalidateAll so
// readers never serve a page staler than the writer's own commit.
type Store interface {
	// GetOrCompute returns the cached value for key if present and not expired,
	// otherwise runs compute, caches its result for ttl, and returns it.
	// Compute errors are returned as-is and never cached.
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (any, error)) (any, error)
	// InvalidateAll drops every cached entry. Called synchronously after each
	// successful write, before the write's response is returned.
	InvalidateAll()
}

type entry struct {
	value     any
	expiresAt time.Time
}

// MemoryStore is an in-memory Store implementation. Expiry is lazy: entries
// are checked on access, there is no background sweep.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]entry
	gen  uint64
	nowF func() time.Time
}

// NewMemoryStore returns a new in-memory result cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]entry),
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCompute returns the cached value for key or computes and caches it.
// Concurrent misses on the same key may compute more than once; last write
// wins, which is acceptable for idempotent reads. A result computed before an
// InvalidateAll is returned to its caller but not stored, so a writer's own
// read after invalidation never hits a pre-write page.
func (s *MemoryStore) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (any, error)) (any, error) {
	s.mu.RLock()
	e, ok := s.m[key]
	gen := s.gen
	s.mu.RUnlock()
	if ok && e.expiresAt.After(s.nowF()) {
		return e.value, nil
	}

	value, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.gen == gen {
		s.m[key] = entry{value: value, expiresAt: s.nowF().Add(ttl)}
	}
	s.mu.Unlock()
	return value, nil
}

// InvalidateAll drops every cached entry and marks in-flight computations
// stale so they do not repopulate the cache with pre-invalidation results.
func (s *MemoryStore) InvalidateAll() {
	s.mu.Lock()
	s.m = make(map[string]entry)
	s.gen++
	s.mu.Unlock()
}
