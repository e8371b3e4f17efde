package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"food-manager/internal/core/ai/cache"
	"food-manager/internal/core/ai/provider"
	"food-manager/internal/core/ai/queue"
	"food-manager/internal/infrastructure/config"
	"food-manager/internal/pkg/common"

	"go.uber.org/zap"
)

// Request AI 請求
type Request struct {
	Purpose     string // 用於日誌：advisory / recipe / update
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
	NoCache     bool
	// Validate 回應內容通過檢查才寫入快取，nil 表示不檢查
	Validate func(content string) bool
}

// Response AI 回應
type Response struct {
	Content  string
	CacheHit bool
}

// Service AI 服務
type Service struct {
	config   *config.Config
	provider provider.Provider
	cache    cache.Store
	queue    *queue.Manager
}

// NewService 創建 AI 服務
// provider 為 nil 時所有請求都返回 ErrAIServiceError，cache 可為 nil
func NewService(cfg *config.Config, p provider.Provider, store cache.Store, q *queue.Manager) *Service {
	return &Service{
		config:   cfg,
		provider: p,
		cache:    store,
		queue:    q,
	}
}

// ProcessRequest 統一對外方法
func (s *Service) ProcessRequest(ctx context.Context, req *Request) (*Response, error) {
	if s.provider == nil {
		return nil, common.ErrAIServiceError
	}

	// 統一 prompt 格式，確保快取 key 一致
	prompt := strings.TrimSpace(req.Prompt)
	key := cache.Key(req.System, prompt)

	useCache := s.cacheEnabled() && !req.NoCache
	if useCache {
		if val, err := s.cache.Get(ctx, key); err == nil && val != "" {
			return &Response{Content: val, CacheHit: true}, nil
		} else if err != nil && !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("Cache lookup failed", zap.Error(err))
		}
	}

	chat := provider.NewChatRequest(req.System, prompt)
	chat.Temperature = req.Temperature
	chat.MaxTokens = req.MaxTokens

	var content string
	call := func(ctx context.Context) error {
		if timeout := s.provider.GetTimeout(); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		start := time.Now()
		resp, err := s.provider.Generate(ctx, chat)
		common.LogAICall(req.Purpose, time.Since(start), err)
		if err != nil {
			return err
		}
		content = resp.Content
		return nil
	}

	var err error
	if s.queue != nil {
		err = s.queue.Do(ctx, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", req.Purpose, err)
	}

	if useCache {
		if req.Validate != nil && !req.Validate(content) {
			common.LogWarn("AI response failed validation, not cached", zap.String("purpose", req.Purpose))
		} else if err := s.cache.Set(ctx, key, content); err != nil {
			common.LogWarn("Failed to store AI response in cache", zap.Error(err))
		}
	}

	return &Response{Content: content}, nil
}

// Enabled AI 服務是否可用
func (s *Service) Enabled() bool {
	return s.provider != nil
}

// Model 使用中的模型
func (s *Service) Model() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.GetModel()
}

// QueueStatus 隊列狀態
func (s *Service) QueueStatus() *queue.Status {
	if s.queue == nil {
		return nil
	}
	return s.queue.GetQueueStatus()
}

// CacheStats 緩存統計
func (s *Service) CacheStats() map[string]interface{} {
	if s.cache == nil {
		return nil
	}
	return s.cache.Stats()
}

func (s *Service) cacheEnabled() bool {
	return s.cache != nil && s.config.AI.EnableCache
}
