package repository

import (
	"context"
	"errors"
	"time"

	"github.com/wekeepgrowing/semo-authn/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

type CacheRepositoryImpl struct {
	client *redis.Client
}

// NewCacheRepository creates the Redis-backed cache repository.
func NewCacheRepository(client *redis.Client) repository.CacheRepository {
	return &CacheRepositoryImpl{client: client}
}

// Set stores a value under key with the given TTL.
func (r *CacheRepositoryImpl) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Get returns the value for key, or "" when the key is absent or expired.
func (r *CacheRepositoryImpl) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// GetDel atomically reads and removes key. Under concurrent calls exactly one
// caller observes the value; the rest get "".
func (r *CacheRepositoryImpl) GetDel(ctx context.Context, key string) (string, error) {
	value, err := r.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// Delete removes the given keys and reports how many existed.
func (r *CacheRepositoryImpl) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	return r.client.Del(ctx, keys...).Result()
}
