package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisAccessCache stores hasAccess verdicts with short TTLs. Purchases and
// ownership changes invalidate eagerly, so a cached entry is only ever a
// bounded-staleness optimization over the grant table.
type RedisAccessCache struct {
	client *redis.Client
}

// NewRedisAccessCache creates the access verdict cache adapter.
func NewRedisAccessCache(client *redis.Client) *RedisAccessCache {
	return &RedisAccessCache{client: client}
}

func accessKey(moderatorID uuid.UUID, address string) string {
	return "market:access:" + moderatorID.String() + ":" + address
}

func (s *RedisAccessCache) GetAccess(ctx context.Context, moderatorID uuid.UUID, address string) (bool, bool, error) {
	val, err := s.client.Get(ctx, accessKey(moderatorID, address)).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return val == "1", true, nil
}

func (s *RedisAccessCache) SetAccess(ctx context.Context, moderatorID uuid.UUID, address string, allowed bool, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	val := "0"
	if allowed {
		val = "1"
	}
	return s.client.Set(ctx, accessKey(moderatorID, address), val, ttl).Err()
}

func (s *RedisAccessCache) InvalidateAccess(ctx context.Context, moderatorID uuid.UUID, address string) error {
	return s.client.Del(ctx, accessKey(moderatorID, address)).Err()
}
