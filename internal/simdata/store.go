// Package simdata keeps the last-known SIM balance and data usage reported by
// the device. The snapshot lives in process memory for the process lifetime
// and resets on restart; it is shared across concurrent requests and guarded
// by a single mutex.
package simdata

import (
	"context"
	"sync"
	"time"
)

// Snapshot is the last-known SIM state.
type Snapshot struct {
	ID        int64
	Balance   string
	DataUsage float64
	Timestamp time.Time
}

// Store holds the latest SIM snapshot.
type Store interface {
	// Put replaces the snapshot, stamping it with the current time, and
	// returns the assigned id.
	Put(ctx context.Context, balance string, dataUsage float64) int64
	// Latest returns the current snapshot. Returns ok false when nothing has
	// been recorded since process start.
	Latest(ctx context.Context) (Snapshot, bool)
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu     sync.RWMutex
	latest *Snapshot
	nextID int64
	nowF   func() time.Time
}

// NewMemoryStore returns a new in-memory SIM data store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nowF: func() time.Time { return time.Now().UTC() }}
}

// Put replaces the snapshot and returns the assigned id.
func (s *MemoryStore) Put(ctx context.Context, balance string, dataUsage float64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.latest = &Snapshot{
		ID:        s.nextID,
		Balance:   balance,
		DataUsage: dataUsage,
		Timestamp: s.nowF(),
	}
	return s.nextID
}

// Latest returns the current snapshot if one exists.
func (s *MemoryStore) Latest(ctx context.Context) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return Snapshot{}, false
	}
	return *s.latest, true
}
