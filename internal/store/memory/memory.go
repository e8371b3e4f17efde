// Package memory 以記憶體實作儲存介面，供開發與測試使用
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"food-manager/internal/core/food"
	"food-manager/internal/core/model"
	"food-manager/internal/pkg/common"
)

// Store 記憶體儲存
type Store struct {
	mu            sync.RWMutex
	items         map[string]model.FoodItem
	events        []model.CalendarEvent
	notifications []model.Notification
}

// New 創建記憶體儲存
func New() *Store {
	return &Store{items: make(map[string]model.FoodItem)}
}

// Repositories 返回三個集合的儲存
func (s *Store) Repositories() food.Repositories {
	return food.Repositories{
		Items:         itemRepo{s},
		Events:        eventRepo{s},
		Notifications: notificationRepo{s},
	}
}

type itemRepo struct{ s *Store }

func (r itemRepo) Create(ctx context.Context, item *model.FoodItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.items[item.ID] = *item
	return nil
}

func (r itemRepo) Get(ctx context.Context, id string) (*model.FoodItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	item, ok := r.s.items[id]
	if !ok {
		return nil, common.ErrRecordNotFound
	}
	return &item, nil
}

func (r itemRepo) List(ctx context.Context) ([]model.FoodItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.FoodItem, 0, len(r.s.items))
	for _, item := range r.s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r itemRepo) Update(ctx context.Context, item *model.FoodItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[item.ID]; !ok {
		return common.ErrRecordNotFound
	}
	r.s.items[item.ID] = *item
	return nil
}

func (r itemRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[id]; !ok {
		return common.ErrRecordNotFound
	}
	delete(r.s.items, id)
	return nil
}

type eventRepo struct{ s *Store }

func (r eventRepo) InsertMany(ctx context.Context, events []model.CalendarEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.events = append(r.s.events, events...)
	return nil
}

func (r eventRepo) List(ctx context.Context) ([]model.CalendarEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := append([]model.CalendarEvent{}, r.s.events...)
	sortEvents(out)
	return out, nil
}

func (r eventRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []model.CalendarEvent{}
	for _, e := range r.s.events {
		if !e.EventDate.Before(from) && !e.EventDate.After(to) {
			out = append(out, e)
		}
	}
	sortEvents(out)
	return out, nil
}

func (r eventRepo) DeleteByItem(ctx context.Context, itemID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.events[:0]
	removed := 0
	for _, e := range r.s.events {
		if e.FoodItemID == itemID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.s.events = kept
	return removed, nil
}

func sortEvents(events []model.CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EventDate.Before(events[j].EventDate)
	})
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Insert(ctx context.Context, n *model.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.notifications = append(r.s.notifications, *n)
	return nil
}

func (r notificationRepo) List(ctx context.Context) ([]model.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := append([]model.Notification{}, r.s.notifications...)
	// 同一時間建立的通知保持插入順序的反向
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r notificationRepo) CountUnread(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	count := 0
	for _, n := range r.s.notifications {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r notificationRepo) MarkRead(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.notifications {
		if r.s.notifications[i].ID == id {
			r.s.notifications[i].IsRead = true
			return nil
		}
	}
	return common.ErrRecordNotFound
}

func (r notificationRepo) Exists(ctx context.Context, itemID string, t model.EventType) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, n := range r.s.notifications {
		if n.FoodItemID == itemID && n.NotificationType == t {
			return true, nil
		}
	}
	return false, nil
}

func (r notificationRepo) DeleteByItem(ctx context.Context, itemID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.notifications[:0]
	removed := 0
	for _, n := range r.s.notifications {
		if n.FoodItemID == itemID {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	r.s.notifications = kept
	return removed, nil
}
