package food

import (
	"context"
	"fmt"
	"sync"
	"time"

	"food-manager/internal/core/lifecycle"
	"food-manager/internal/pkg/common"

	"go.uber.org/zap"
)

// Sweeper 定期為已進入 24 小時範圍的行事曆事件補建通知
type Sweeper struct {
	mu       sync.RWMutex
	service  *Service
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSweeper 創建通知掃描器
func NewSweeper(svc *Service, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		service:  svc,
		interval: interval,
	}
}

// Start 啟動掃描迴圈，啟動時先掃描一次；已在執行時直接返回
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		common.LogWarn("Notification sweeper already running")
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.tick(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Running 掃描迴圈是否在執行
func (s *Sweeper) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cancel != nil
}

// Stop 停止掃描並等待迴圈結束
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	created, err := s.service.SweepNotifications(ctx)
	if err != nil {
		common.LogError("Notification sweep failed", zap.Error(err))
		return
	}
	if created > 0 {
		common.LogInfo("Notification sweep created notifications", zap.Int("count", created))
	}
}

// SweepNotifications 為事件日期落在 [now, now+24h] 且尚無通知的事件建立通知
func (s *Service) SweepNotifications(ctx context.Context) (int, error) {
	now := s.clock.Now()
	events, err := s.events.ListBetween(ctx, now, now.Add(lifecycle.NotificationWindow))
	if err != nil {
		return 0, fmt.Errorf("failed to list due calendar events: %w", err)
	}

	created := 0
	for _, e := range events {
		if !lifecycle.NotificationDue(e.EventDate, now) {
			continue
		}
		r, ok := lifecycle.ReminderFor(e.EventType)
		if !ok {
			continue
		}
		exists, err := s.notifications.Exists(ctx, e.FoodItemID, e.EventType)
		if err != nil {
			return created, fmt.Errorf("failed to check notification: %w", err)
		}
		if exists {
			continue
		}

		n := lifecycle.NewNotification(e.FoodItemID, e.FoodName, r, now, s.newID)
		if err := s.notifications.Insert(ctx, &n); err != nil {
			return created, fmt.Errorf("failed to save notification: %w", err)
		}
		s.notifier.NotificationCreated(n)
		created++
	}
	return created, nil
}
