// Package cache 推薦結果快取，支援記憶體與 Redis
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"recipe-suggester/internal/infrastructure/config"
)

// Cache 推薦結果快取。未命中時回傳 common.ErrCacheMiss
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Stats() map[string]interface{}
	Close() error
}

// 快取驅動
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// New 依設定建立快取，快取關閉時回傳 nil
func New(cfg *config.Config) (Cache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	switch cfg.Cache.Driver {
	case DriverRedis:
		rc, err := NewRedisCache(cfg.Cache)
		if err != nil {
			return nil, err
		}
		return rc, nil
	case DriverMemory, "":
		return NewManager(cfg.Cache), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}

// BuildKey 產生快取鍵，包含索引版本，索引重建後舊結果自然失效
func BuildKey(version uint64, document string, topK int, minScore float64) string {
	raw := strconv.FormatUint(version, 10) + "|" +
		strconv.Itoa(topK) + "|" +
		strconv.FormatFloat(minScore, 'g', -1, 64) + "|" +
		document
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("suggest:v%d:%s", version, hex.EncodeToString(hash[:]))
}
