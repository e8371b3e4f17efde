package food

import (
	"context"
	"time"

	"food-manager/internal/core/model"
)

// 找不到資料時各實作返回 common.ErrRecordNotFound

// ItemRepository 食材儲存
type ItemRepository interface {
	Create(ctx context.Context, item *model.FoodItem) error
	Get(ctx context.Context, id string) (*model.FoodItem, error)
	// List 依建立時間由新到舊
	List(ctx context.Context) ([]model.FoodItem, error)
	Update(ctx context.Context, item *model.FoodItem) error
	Delete(ctx context.Context, id string) error
}

// EventRepository 行事曆事件儲存
type EventRepository interface {
	InsertMany(ctx context.Context, events []model.CalendarEvent) error
	// List 依事件日期由早到晚
	List(ctx context.Context) ([]model.CalendarEvent, error)
	// ListBetween 事件日期落在 [from, to] 的事件，依事件日期排序
	ListBetween(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error)
	DeleteByItem(ctx context.Context, itemID string) (int, error)
}

// NotificationRepository 通知儲存
type NotificationRepository interface {
	Insert(ctx context.Context, n *model.Notification) error
	// List 依建立時間由新到舊
	List(ctx context.Context) ([]model.Notification, error)
	CountUnread(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id string) error
	Exists(ctx context.Context, itemID string, t model.EventType) (bool, error)
	DeleteByItem(ctx context.Context, itemID string) (int, error)
}

// Repositories 三個集合的儲存
type Repositories struct {
	Items         ItemRepository
	Events        EventRepository
	Notifications NotificationRepository
	// Close 釋放底層連線，可為 nil
	Close func() error
}

// Notifier 推播新建立的資料
type Notifier interface {
	NotificationCreated(n model.Notification)
	FoodItemChanged(action string, item *model.FoodItem)
}

type nopNotifier struct{}

func (nopNotifier) NotificationCreated(model.Notification)  {}
func (nopNotifier) FoodItemChanged(string, *model.FoodItem) {}
