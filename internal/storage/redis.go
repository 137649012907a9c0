package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore tracks URLs already spent on captures so a source page is
// used at most once across batch runs.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr string, ttl time.Duration) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{client: rdb, ttl: ttl}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// MarkCaptured sets a key with a TTL so the URL is skipped by later runs.
func (s *RedisStore) MarkCaptured(ctx context.Context, url string) error {
	key := fmt.Sprintf("captured:%s", url)
	return s.client.Set(ctx, key, "1", s.ttl).Err()
}

// WasCaptured checks if a URL was captured within the TTL window.
func (s *RedisStore) WasCaptured(ctx context.Context, url string) (bool, error) {
	key := fmt.Sprintf("captured:%s", url)
	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
