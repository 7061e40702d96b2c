package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aiInsider/business/experiment"

	"github.com/redis/go-redis/v9"
)

// KVStore persists visitor markers, assignments and consent in redis.
type KVStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ experiment.Persistence = (*KVStore)(nil)

// NewKVStore returns a store whose keys expire after ttl; zero keeps them forever.
func NewKVStore(client *redis.Client, ttl time.Duration) *KVStore {
	return &KVStore{
		client: client,
		ttl:    ttl,
	}
}

func (r *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s from Redis: %w", key, err)
	}

	return val, true, nil
}

func (r *KVStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store %s in Redis: %w", key, err)
	}

	return nil
}

// Ping reports whether redis is reachable.
func (r *KVStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
