package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// entry stores a cached value and its absolute expiration timestamp.
type entry struct {
	value     string
	expiresAt time.Time // zero means no expiration
}

// MemoryStore is a map-backed Store used when no cache service is configured
// and in tests. It supports per-entry TTL with lazy cleanup on access.
type MemoryStore struct {
	mu        sync.RWMutex
	items     map[string]entry
	available bool
}

// now is a small indirection to allow test stubbing if needed.
var now = time.Now

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:     make(map[string]entry),
		available: true,
	}
}

// SetAvailable toggles the simulated connectivity state. When unavailable the
// store behaves like an unreachable remote: absent reads and failed writes.
func (s *MemoryStore) SetAvailable(available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = available
}

// Get implements Store.Get.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.available {
		return "", false
	}
	e, ok := s.items[key]
	if !ok {
		return "", false
	}
	if !e.expiresAt.IsZero() && now().After(e.expiresAt) {
		// expired; treat as miss, cleanup is lazy
		return "", false
	}
	return e.value, true
}

// Set implements Store.Set.
func (s *MemoryStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available {
		return ErrStoreUnavailable
	}
	var exp time.Time
	if ttl > 0 {
		exp = now().Add(ttl)
	}
	s.items[key] = entry{value: value, expiresAt: exp}
	return nil
}

// DeleteMatching implements Store.DeleteMatching.
func (s *MemoryStore) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available {
		return 0, ErrStoreUnavailable
	}
	deleted := 0
	for k := range s.items {
		if matchPattern(pattern, k) {
			delete(s.items, k)
			deleted++
		}
	}
	return deleted, nil
}

// Available implements Store.Available.
func (s *MemoryStore) Available(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.available
}

// Close implements Store.Close.
func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the number of non-expired entries currently stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, e := range s.items {
		if e.expiresAt.IsZero() || now().Before(e.expiresAt) {
			count++
		}
	}
	return count
}

// matchPattern reports whether key matches a redis KEYS-style glob where '*'
// matches any run of characters, including separators.
func matchPattern(pattern, key string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == key
	}
	if !strings.HasPrefix(key, parts[0]) {
		return false
	}
	key = key[len(parts[0]):]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(key, part)
		if idx < 0 {
			return false
		}
		key = key[idx+len(part):]
	}
	return strings.HasSuffix(key, parts[len(parts)-1])
}

var _ Store = (*MemoryStore)(nil)
