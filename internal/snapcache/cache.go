package snapcache

import (
    "sync"
    "time"

    "pricesnap/internal/snapshot"
)

// entry stores a cached snapshot for a single symbol with its insert time.
type entry struct {
    insertedAt time.Time
    value      snapshot.PriceSnapshot
}

// Store caches snapshots per symbol for a TTL. Expired entries are not
// purged eagerly; they are ignored on read and overwritten on the next
// Put. The key set is the registry's supported tickers, so the map
// stays small and needs no size-based eviction.
type Store struct {
    ttl time.Duration

    mu    sync.RWMutex
    items map[string]entry // key: normalized symbol
}

// New creates a store with the given TTL. A TTL <= 0 disables caching:
// Get never hits.
func New(ttl time.Duration) *Store {
    return &Store{ttl: ttl, items: make(map[string]entry)}
}

// Get returns the cached snapshot for key if one exists and is still
// valid at now (age < TTL).
func (s *Store) Get(key string, now time.Time) (snapshot.PriceSnapshot, bool) {
    if s.ttl <= 0 {
        return snapshot.PriceSnapshot{}, false
    }
    s.mu.RLock()
    e, ok := s.items[key]
    s.mu.RUnlock()
    if !ok || now.Sub(e.insertedAt) >= s.ttl {
        return snapshot.PriceSnapshot{}, false
    }
    return e.value, true
}

// Put unconditionally replaces any existing entry for key.
func (s *Store) Put(key string, value snapshot.PriceSnapshot, now time.Time) {
    s.mu.Lock()
    s.items[key] = entry{insertedAt: now, value: value}
    s.mu.Unlock()
}
