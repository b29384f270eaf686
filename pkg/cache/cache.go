// Package cache stores JSON-encoded values under string keys with a TTL.
//
// Two drivers implement Store: RedisStore (shared across instances) and
// MemoryStore (process-local). Values are marshalled on Set and unmarshalled
// into a fresh destination on Get, so callers always receive a copy.
package cache

import (
	"context"
	"time"
)

// Store is the cache contract used by the application.
type Store interface {
	// Get unmarshals the value under key into dest. It reports false on a
	// miss, an expired entry, or any backend/decoding failure.
	Get(ctx context.Context, key string, dest interface{}) bool
	// Set stores value under key for ttl. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Del removes keys. Missing keys are not an error.
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	// Driver names the backend ("redis" or "memory") for logs and metrics.
	Driver() string
}

// Forget is an alias for Del (Laravel-style).
func Forget(ctx context.Context, s Store, key string) error {
	return s.Del(ctx, key)
}
