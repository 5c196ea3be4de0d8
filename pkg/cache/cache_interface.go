package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when the backing store cannot be reached.
var ErrUnavailable = errors.New("cache unavailable")

// Cache is the key/value contract shared by the HTTP layer and services.
// Implementations: Redis (internal/infrastructure/cache).
type Cache interface {
	// Get loads a value and unmarshals it into dest.
	// found = false on a miss, dest stays untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with a TTL (0 = no expiry).
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}
