package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"food-manager/internal/infrastructure/config"
)

// Store AI 回應緩存
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Stats() map[string]interface{}
	Close() error
}

// Key 以 SHA-256 產生緩存鍵
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return "text:" + hex.EncodeToString(h.Sum(nil))
}

// New 依設定建立緩存，未啟用時返回 nil
func New(cfg *config.CacheConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Driver {
	case "", "memory":
		return NewManager(cfg), nil
	case "redis":
		return NewRedisStore(cfg)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}
