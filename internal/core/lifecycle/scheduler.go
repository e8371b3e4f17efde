package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"food-manager/internal/core/model"
	"food-manager/internal/pkg/common"
)

// NotificationWindow 通知的時間範圍 [now, now+24h]
const NotificationWindow = 24 * time.Hour

// Reminder 到期前提醒的設定
type Reminder struct {
	DaysBefore int
	Type       model.EventType
	Color      string
	Priority   model.Priority
}

// ReminderSchedule 固定的提醒排程，順序即為建立順序
var ReminderSchedule = []Reminder{
	{DaysBefore: 3, Type: model.EventWarning, Color: "#FFA500", Priority: model.PriorityMedium},
	{DaysBefore: 1, Type: model.EventUrgent, Color: "#FF4444", Priority: model.PriorityHigh},
	{DaysBefore: 0, Type: model.EventExpiresToday, Color: "#FF0000", Priority: model.PriorityCritical},
}

// ReminderFor 依事件類型取得提醒設定
func ReminderFor(t model.EventType) (Reminder, bool) {
	for _, r := range ReminderSchedule {
		if r.Type == t {
			return r, true
		}
	}
	return Reminder{}, false
}

// Plan 排程結果
type Plan struct {
	Events        []model.CalendarEvent
	Notifications []model.Notification
	// Skipped 到期時間無法解析，未產生任何事件
	Skipped bool
}

// EventDue 事件日期不早於 now 才建立行事曆事件
func EventDue(eventDate, now time.Time) bool {
	return !eventDate.Before(now)
}

// NotificationDue 事件日期落在 [now, now+24h] 內才建立通知
func NotificationDue(eventDate, now time.Time) bool {
	return !eventDate.Before(now) && !eventDate.After(now.Add(NotificationWindow))
}

// Schedule 依到期時間產生提醒事件與通知
// 相同輸入（含 ID 產生器的序列）會得到相同結果
func Schedule(itemID, name string, expiration, now time.Time, newID common.IDGenerator) Plan {
	if expiration.IsZero() {
		return Plan{Skipped: true}
	}

	plan := Plan{
		Events:        make([]model.CalendarEvent, 0, len(ReminderSchedule)),
		Notifications: []model.Notification{},
	}
	for _, r := range ReminderSchedule {
		eventDate := expiration.AddDate(0, 0, -r.DaysBefore)
		if EventDue(eventDate, now) {
			plan.Events = append(plan.Events, NewCalendarEvent(itemID, name, expiration, eventDate, r, now, newID))
		}
		if NotificationDue(eventDate, now) {
			plan.Notifications = append(plan.Notifications, NewNotification(itemID, name, r, now, newID))
		}
	}
	return plan
}

// NewCalendarEvent 建立行事曆事件
func NewCalendarEvent(itemID, name string, expiration, eventDate time.Time, r Reminder, now time.Time, newID common.IDGenerator) model.CalendarEvent {
	return model.CalendarEvent{
		ID:          newID(),
		FoodItemID:  itemID,
		FoodName:    name,
		EventType:   r.Type,
		EventDate:   eventDate,
		Title:       fmt.Sprintf("%s - %s", name, eventTitle(r.Type)),
		Description: fmt.Sprintf("%s expires on %s", name, expiration.UTC().Format("2006-01-02")),
		Color:       r.Color,
		CreatedAt:   now,
	}
}

// NewNotification 建立未讀通知
func NewNotification(itemID, name string, r Reminder, now time.Time, newID common.IDGenerator) model.Notification {
	return model.Notification{
		ID:               newID(),
		FoodItemID:       itemID,
		FoodName:         name,
		NotificationType: r.Type,
		Message:          notificationMessage(name, r.DaysBefore),
		Priority:         r.Priority,
		IsRead:           false,
		CreatedAt:        now,
	}
}

func notificationMessage(name string, daysBefore int) string {
	if daysBefore == 0 {
		return fmt.Sprintf("%s expires today!", name)
	}
	return fmt.Sprintf("%s expires in %d day(s)!", name, daysBefore)
}

// eventTitle expires_today -> Expires Today
func eventTitle(t model.EventType) string {
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
