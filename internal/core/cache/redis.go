package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// RedisCache Redis 緩存服務
type RedisCache struct {
	client *redis.Client
	config config.CacheConfig
	hits   atomic.Int64
	misses atomic.Int64
	errors atomic.Int64
}

// NewRedisCache 創建 Redis 緩存並測試連線
func NewRedisCache(cfg config.CacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCacheWithClient(client, cfg), nil
}

// NewRedisCacheWithClient 以既有連線建立
func NewRedisCacheWithClient(client *redis.Client, cfg config.CacheConfig) *RedisCache {
	return &RedisCache{client: client, config: cfg}
}

// Get 獲取緩存
func (s *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.misses.Add(1)
			common.LogCacheMiss(DriverRedis)
			return "", common.ErrCacheMiss
		}
		s.errors.Add(1)
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	s.hits.Add(1)
	common.LogCacheHit(DriverRedis)
	return val, nil
}

// Set 設置緩存
func (s *RedisCache) Set(ctx context.Context, key string, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.config.TTL).Err(); err != nil {
		s.errors.Add(1)
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// key 加上前綴
func (s *RedisCache) key(key string) string {
	if s.config.Redis.KeyPrefix == "" {
		return key
	}
	return s.config.Redis.KeyPrefix + ":" + key
}

// Stats 緩存統計
func (s *RedisCache) Stats() map[string]interface{} {
	return map[string]interface{}{
		"driver": DriverRedis,
		"addr":   s.config.Redis.Addr,
		"hits":   s.hits.Load(),
		"misses": s.misses.Load(),
		"errors": s.errors.Load(),
	}
}

// Close 關閉連線
func (s *RedisCache) Close() error {
	return s.client.Close()
}
