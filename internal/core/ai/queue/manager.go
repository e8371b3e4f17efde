package queue

import (
	"context"
	"fmt"
	"sync/atomic"

	"food-manager/internal/infrastructure/config"
	"food-manager/internal/pkg/common"

	"go.uber.org/zap"
)

// Status 隊列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	Active         int `json:"active"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// Manager 限制同時進行的 AI 請求數量
// Workers 為同時執行上限，MaxSize 為等待中的請求上限
type Manager struct {
	workers   chan struct{}
	maxSize   int
	waiting   int64
	active    int64
	processed int64
	done      chan struct{}
	closed    int32
}

// NewManager 創建新的隊列管理器
func NewManager(cfg *config.QueueConfig) *Manager {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Manager{
		workers: make(chan struct{}, workers),
		maxSize: cfg.MaxSize,
		done:    make(chan struct{}),
	}
}

// Do 取得執行名額後執行 fn
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if atomic.LoadInt32(&m.closed) == 1 {
		return fmt.Errorf("queue manager is closed")
	}

	if n := atomic.AddInt64(&m.waiting, 1); m.maxSize > 0 && int(n) > m.maxSize {
		atomic.AddInt64(&m.waiting, -1)
		common.LogWarn("Request queue is full", zap.Int("max_queue_size", m.maxSize))
		return common.ErrQueueFull
	}

	select {
	case m.workers <- struct{}{}:
		atomic.AddInt64(&m.waiting, -1)
	case <-ctx.Done():
		atomic.AddInt64(&m.waiting, -1)
		return ctx.Err()
	case <-m.done:
		atomic.AddInt64(&m.waiting, -1)
		return fmt.Errorf("queue manager is closed")
	}

	atomic.AddInt64(&m.active, 1)
	defer func() {
		atomic.AddInt64(&m.active, -1)
		atomic.AddInt64(&m.processed, 1)
		<-m.workers
	}()

	return fn(ctx)
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    int(atomic.LoadInt64(&m.waiting)),
		Active:         int(atomic.LoadInt64(&m.active)),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.maxSize,
		Workers:        cap(m.workers),
	}
}

// Close 關閉隊列管理器，等待中的請求會返回錯誤
func (m *Manager) Close() {
	if atomic.CompareAndSwapInt32(&m.closed, 0, 1) {
		close(m.done)
	}
}
