package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyTTL = 24 * time.Hour

	lowStockKeyPrefix = "lowstock:"
	lowStockCountTTL  = 5 * time.Minute
)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (r *RedisAdapter) GetLowStockCount(ctx context.Context, tenantID string) (int, bool, error) {
	val, err := r.client.Get(ctx, lowStockKeyPrefix+tenantID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

func (r *RedisAdapter) SetLowStockCount(ctx context.Context, tenantID string, count int) error {
	return r.client.Set(ctx, lowStockKeyPrefix+tenantID, count, lowStockCountTTL).Err()
}

func (r *RedisAdapter) InvalidateLowStockCount(ctx context.Context, tenantID string) error {
	return r.client.Del(ctx, lowStockKeyPrefix+tenantID).Err()
}
