package cache

import (
	"context"
	"time"
)

// Cache stores JSON-encoded values under string keys.
// Implementations must treat a missing key as found=false, not an error.
type Cache interface {
	// Get unmarshals the cached value into dest; dest is untouched on a miss
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
