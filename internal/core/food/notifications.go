package food

import (
	"context"
	"errors"
	"fmt"

	"food-manager/internal/core/model"
	"food-manager/internal/pkg/common"
)

// ListNotifications 全部通知，由新到舊
func (s *Service) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	list, err := s.notifications.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}

// UnreadCount 未讀通知數量
func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	n, err := s.notifications.CountUnread(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

// MarkNotificationRead 標記通知為已讀
func (s *Service) MarkNotificationRead(ctx context.Context, id string) error {
	if err := s.notifications.MarkRead(ctx, id); err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			return common.ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// ListCalendarEvents 全部行事曆事件，依日期排序
func (s *Service) ListCalendarEvents(ctx context.Context) ([]model.CalendarEvent, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}
	return events, nil
}
