package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context, sessionKey string) ([]byte, error) {
	data, err := r.client.Get(ctx, cacheKey(sessionKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r RedisCache) Set(ctx context.Context, sessionKey string, data []byte) error {
	if err := r.client.Set(ctx, cacheKey(sessionKey), data, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisCache) Fill(ctx context.Context, sessionKey string, data []byte) error {
	if err := r.client.SetNX(ctx, cacheKey(sessionKey), data, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis setnx failed: %w", err)
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context, sessionKey string) error {
	if err := r.client.Del(ctx, cacheKey(sessionKey)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// ttl spreads expirations so carts written together do not expire together.
func (r RedisCache) ttl() time.Duration {
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	return r.baseTTL + jitter
}

func cacheKey(sessionKey string) string {
	return fmt.Sprintf("cart:%s", sessionKey)
}
