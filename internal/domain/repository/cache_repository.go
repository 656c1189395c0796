package repository

import (
	"context"
	"time"
)

// CacheRepository is a small TTL key-value store for short-lived state:
// two-factor login challenges and captcha challenges. Values are never
// empty strings, so a miss is reported as ("", nil).
type CacheRepository interface {
	// Set stores a value with the given TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value, or "" when the key is absent or expired.
	Get(ctx context.Context, key string) (string, error)

	// GetDel atomically reads and removes the value. Exactly one concurrent
	// caller observes a non-empty result.
	GetDel(ctx context.Context, key string) (string, error)

	// Delete removes keys and returns how many existed.
	Delete(ctx context.Context, keys ...string) (int64, error)
}
