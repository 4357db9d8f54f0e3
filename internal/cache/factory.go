package cache

import (
	"errors"

	"finance-tracker-api/internal/logger"
)

// ErrStoreUnavailable reports that the backing cache service cannot be
// reached. Callers treat it as "caching disabled", never as a request error.
var ErrStoreUnavailable = errors.New("cache store unavailable")

// NewStore selects a Store implementation from configuration: Redis when a
// URL is provided, an in-process store otherwise.
func NewStore(redisURL string) Store {
	if redisURL == "" {
		logger.GetLogger().Info("cache: no REDIS_URL configured, using in-process store")
		return NewMemoryStore()
	}
	return NewRedisStore(redisURL)
}
