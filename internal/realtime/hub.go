// Package realtime 透過 WebSocket 推播通知與食材異動
package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"food-manager/internal/core/model"
	"food-manager/internal/pkg/common"

	"go.uber.org/zap"
)

// 推播的資料種類
const (
	EntityNotification = "notification"
	EntityFoodItem     = "food_item"
)

// Message 推播給所有連線的訊息
type Message struct {
	Type   string      `json:"type"`
	Entity string      `json:"entity"`
	Action string      `json:"action"`
	ID     string      `json:"id,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// NewMessage 以 entity 與 action 組出 Type
func NewMessage(entity, action, id string, data interface{}) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		Data:   data,
	}
}

// Hub 管理所有 WebSocket 連線並廣播訊息
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub 創建 Hub
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Register 加入連線
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	common.LogDebug("WebSocket client connected", zap.Int("clients", h.ClientCount()))
}

// Unregister 移除連線並關閉其發送通道，重複呼叫無作用
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast 廣播訊息，緩衝已滿的連線會略過此訊息
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		common.LogError("Failed to marshal broadcast", zap.String("type", msg.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			common.LogWarn("WebSocket client buffer full, dropping message", zap.String("type", msg.Type))
		}
	}
}

// ClientCount 目前連線數
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NotificationCreated 推播新通知
func (h *Hub) NotificationCreated(n model.Notification) {
	h.Broadcast(NewMessage(EntityNotification, "created", n.ID, n))
}

// FoodItemChanged 推播食材新增、更新或刪除
func (h *Hub) FoodItemChanged(action string, item *model.FoodItem) {
	h.Broadcast(NewMessage(EntityFoodItem, action, item.ID, item))
}
