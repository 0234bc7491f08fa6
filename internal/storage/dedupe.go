package storage

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const dedupePrefix = "busline:idempotency:"

// RedisDeduper хранит ключи идемпотентности в Redis.
type RedisDeduper struct {
	client *redis.Client
}

func NewRedisDeduper(client *redis.Client) *RedisDeduper {
	return &RedisDeduper{client: client}
}

// Claim атомарно занимает ключ (SET NX) на ttl.
func (d *RedisDeduper) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return d.client.SetNX(ctx, dedupePrefix+key, 1, ttl).Result()
}

func (d *RedisDeduper) Release(ctx context.Context, key string) error {
	return d.client.Del(ctx, dedupePrefix+key).Err()
}
