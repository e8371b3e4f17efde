package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"food-manager/internal/infrastructure/config"
	"food-manager/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "food-manager:ai:"

// RedisStore Redis 緩存
type RedisStore struct {
	client *redis.Client
	config *config.CacheConfig
	hits   int64
	misses int64
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore 創建 Redis 緩存並測試連線
func NewRedisStore(cfg *config.CacheConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, cfg), nil
}

// NewRedisStoreWithClient 使用既有的 client
func NewRedisStoreWithClient(client *redis.Client, cfg *config.CacheConfig) *RedisStore {
	return &RedisStore{
		client: client,
		config: cfg,
	}
}

// Get 獲取緩存
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddInt64(&s.misses, 1)
			common.LogCacheMiss("redis")
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	atomic.AddInt64(&s.hits, 1)
	common.LogCacheHit("redis")
	return val, nil
}

// Set 設置緩存
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Stats 緩存統計
func (s *RedisStore) Stats() map[string]interface{} {
	return map[string]interface{}{
		"driver": "redis",
		"addr":   s.config.RedisAddr,
		"hits":   atomic.LoadInt64(&s.hits),
		"misses": atomic.LoadInt64(&s.misses),
	}
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
