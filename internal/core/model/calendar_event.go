package model

import "time"

// EventType 提醒事件類型，同時作為通知類型
type EventType string

const (
	EventWarning      EventType = "warning"
	EventUrgent       EventType = "urgent"
	EventExpiresToday EventType = "expires_today"
)

// Priority 通知優先級
type Priority string

const (
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// CalendarEvent 到期提醒事件
type CalendarEvent struct {
	ID          string    `json:"id" bson:"id"`
	FoodItemID  string    `json:"food_item_id" bson:"food_item_id"`
	FoodName    string    `json:"food_name" bson:"food_name"`
	EventType   EventType `json:"event_type" bson:"event_type"`
	EventDate   time.Time `json:"event_date" bson:"event_date"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Color       string    `json:"color" bson:"color"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
