package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-manager/internal/infrastructure/config"
	"food-manager/internal/pkg/common"
)

const (
	defaultDedupWindow   = 1 * time.Second
	dedupCleanupInterval = 10 * time.Minute
)

// requestCache 請求指紋與最後出現時間
type requestCache struct {
	sync.Mutex
	requests    map[string]time.Time
	lastCleanup time.Time
}

// seen 記錄指紋，window 內重複出現時返回 true
func (rc *requestCache) seen(fingerprint string, now time.Time, window time.Duration) bool {
	rc.Lock()
	defer rc.Unlock()

	if now.Sub(rc.lastCleanup) > dedupCleanupInterval {
		for k, t := range rc.requests {
			if now.Sub(t) > 10*window {
				delete(rc.requests, k)
			}
		}
		rc.lastCleanup = now
	}

	if last, exists := rc.requests[fingerprint]; exists && now.Sub(last) <= window {
		return true
	}
	rc.requests[fingerprint] = now
	return false
}

// Deduplication 請求去重中間件，同一用戶端在 dedup_window 內重複送出相同的 POST 會被拒絕
func Deduplication(cfg *config.Config) gin.HandlerFunc {
	window := defaultDedupWindow
	if cfg != nil && cfg.DedupWindow > 0 {
		window = cfg.DedupWindow
	}
	cache := &requestCache{
		requests:    make(map[string]time.Time),
		lastCleanup: time.Now(),
	}

	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.Next()
				return
			}

			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		fingerprint := c.ClientIP() + ":" + c.Request.Method + ":" + c.Request.URL.Path
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		if cache.seen(fingerprint, time.Now(), window) {
			common.LogWarn("Duplicate request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "Request too frequent",
			})
			return
		}

		c.Next()
	}
}
