package model

import "time"

// Notification 通知
type Notification struct {
	ID               string    `json:"id" bson:"id"`
	FoodItemID       string    `json:"food_item_id" bson:"food_item_id"`
	FoodName         string    `json:"food_name" bson:"food_name"`
	NotificationType EventType `json:"notification_type" bson:"notification_type"`
	Message          string    `json:"message" bson:"message"`
	Priority         Priority  `json:"priority" bson:"priority"`
	IsRead           bool      `json:"is_read" bson:"is_read"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
}
