package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"food-manager/internal/core/food"
	"food-manager/internal/core/model"

	ws "github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ food.Notifier = (*Hub)(nil)

func mockClient(hub *Hub) *Client {
	return &Client{hub: hub, send: make(chan []byte, sendBufferSize)}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
		return Message{}
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub()
	c1, c2 := mockClient(hub), mockClient(hub)

	hub.Register(c1)
	hub.Register(c2)
	assert.Equal(t, 2, hub.ClientCount())

	hub.Unregister(c1)
	hub.Unregister(c1)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister(c2)
	assert.Zero(t, hub.ClientCount())
}

func TestNotificationBroadcast(t *testing.T) {
	hub := NewHub()
	c1, c2 := mockClient(hub), mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)
	defer hub.Unregister(c1)
	defer hub.Unregister(c2)

	hub.NotificationCreated(model.Notification{ID: "n1", FoodName: "Milk", Message: "Milk expires today!"})

	for _, c := range []*Client{c1, c2} {
		msg := receive(t, c)
		assert.Equal(t, "notification_created", msg.Type)
		assert.Equal(t, EntityNotification, msg.Entity)
		assert.Equal(t, "n1", msg.ID)
		data, ok := msg.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Milk expires today!", data["message"])
	}
}

func TestFoodItemBroadcast(t *testing.T) {
	hub := NewHub()
	c := mockClient(hub)
	hub.Register(c)
	defer hub.Unregister(c)

	hub.FoodItemChanged(food.ActionDeleted, &model.FoodItem{ID: "f1", Name: "Bread"})

	msg := receive(t, c)
	assert.Equal(t, "food_item_deleted", msg.Type)
	assert.Equal(t, "f1", msg.ID)
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub()
	c := mockClient(hub)
	hub.Register(c)
	defer hub.Unregister(c)

	for i := 0; i < sendBufferSize+5; i++ {
		hub.Broadcast(NewMessage(EntityFoodItem, "updated", "f1", nil))
	}
	assert.Len(t, c.send, sendBufferSize)
}

func TestHandlerDeliversMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	r := gin.New()
	r.GET("/ws", Handler(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close(ws.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.NotificationCreated(model.Notification{ID: "n1"})

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "notification_created", msg.Type)
}
