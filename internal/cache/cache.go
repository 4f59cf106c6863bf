// Package cache provides the injected TTL store backing the answer cache and
// the rate limiter. Both are advisory: losing the store loses nothing but an
// optimization.
package cache

import (
	"context"
	"sync"
	"time"
)

// Store is a minimal TTL key/value + counter store. Implementations: in-memory
// (default) and redis (shared across replicas).
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Incr increments the counter at key and returns the new value. The ttl
	// applies from the first increment, giving fixed-window semantics.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type memEntry struct {
	value   string
	count   int64
	expires time.Time
}

// MemoryStore is a bounded in-process Store. Entries past their TTL are swept
// lazily; when the bound is hit the soonest-expiring entry is evicted.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]memEntry
	maxEntries int
	now        func() time.Time
}

func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &MemoryStore{
		entries:    make(map[string]memEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// WithClock swaps the time source; tests use it to fast-forward TTLs.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || s.now().After(e.expires) {
		delete(s.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.makeRoom(key)
	s.entries[key] = memEntry{value: value, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || s.now().After(e.expires) {
		s.makeRoom(key)
		s.entries[key] = memEntry{count: 1, expires: s.now().Add(ttl)}
		return 1, nil
	}
	e.count++
	s.entries[key] = e
	return e.count, nil
}

// makeRoom sweeps expired entries and, if the store is still full, evicts the
// entry closest to expiry. Caller holds the lock.
func (s *MemoryStore) makeRoom(key string) {
	if _, exists := s.entries[key]; exists || len(s.entries) < s.maxEntries {
		return
	}

	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, k)
		}
	}
	if len(s.entries) < s.maxEntries {
		return
	}

	var victim string
	var soonest time.Time
	for k, e := range s.entries {
		if victim == "" || e.expires.Before(soonest) {
			victim = k
			soonest = e.expires
		}
	}
	delete(s.entries, victim)
}

// Limiter is a fixed-window rate limiter on top of a Store.
type Limiter struct {
	store  Store
	limit  int64
	window time.Duration
}

func NewLimiter(store Store, limit int64, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window}
}

// Allow reports whether the caller identified by key is within budget for the
// current window. Store failures fail open: limiting is best-effort.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	n, err := l.store.Incr(ctx, "ratelimit:"+key, l.window)
	if err != nil {
		return true
	}
	return n <= l.limit
}
