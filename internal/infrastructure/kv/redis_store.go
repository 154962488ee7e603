package kv

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/ibrahimkeyboad/agrilink/domain"
)

// RedisStore implements domain.KeyValueStore on Redis. Keys are namespaced
// with a prefix so several clients can share one database.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed key-value store
func NewRedisStore(client *redis.Client, prefix string) domain.KeyValueStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Get implements domain.KeyValueStore
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrKeyNotFound
		}
		return "", err
	}
	return val, nil
}

// Set implements domain.KeyValueStore. Values persist without TTL; callers
// remove keys explicitly.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

// Remove implements domain.KeyValueStore
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
