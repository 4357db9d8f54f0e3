package cache

import (
	"context"
	"time"
)

// Store defines the key-value operations the caching layer needs from a
// backing cache service. Implementations must never treat a plain miss or a
// lost connection as a fatal condition: callers degrade to "no caching".
type Store interface {
	// Get returns the stored value for key and whether it was present.
	// A miss and an unreachable store both report absent.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores value under key, expiring automatically after ttl.
	// A returned error is advisory; callers log it and move on.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// DeleteMatching removes every key matching the glob pattern and returns
	// how many were removed. A pattern matching nothing returns (0, nil).
	DeleteMatching(ctx context.Context, pattern string) (int, error)

	// Available reports whether the store is currently reachable.
	Available(ctx context.Context) bool

	// Close releases the underlying connection.
	Close() error
}
