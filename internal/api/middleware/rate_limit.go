package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"food-manager/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
	now      func() time.Time
}

// NewRateLimiter 創建新的限流器，window 內最多 requests 個請求
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return newRateLimiter(requests, window, time.Now)
}

func newRateLimiter(requests int, window time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: now(),
		now:      now,
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(rl.lastTime).Seconds()
	rl.lastTime = now

	rl.tokens += elapsed * rl.rate
	if rl.tokens > rl.capacity {
		rl.tokens = rl.capacity
	}

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// clientLimiters 依用戶端 IP 分開限流
type clientLimiters struct {
	mu       sync.Mutex
	limiters map[string]*RateLimiter
	requests int
	window   time.Duration
}

func (cl *clientLimiters) get(ip string) *RateLimiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	l, ok := cl.limiters[ip]
	if !ok {
		l = NewRateLimiter(cl.requests, cl.window)
		cl.limiters[ip] = l
	}
	return l
}

// RateLimit 限流中間件
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	limiters := &clientLimiters{
		limiters: make(map[string]*RateLimiter),
		requests: requests,
		window:   window,
	}

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "Too many requests",
			})
			return
		}

		c.Next()
	}
}
