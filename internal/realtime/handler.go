package realtime

import (
	"food-manager/internal/pkg/common"

	ws "github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 將請求升級為 WebSocket 並加入 Hub
func Handler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := ws.Accept(c.Writer, c.Request, &ws.AcceptOptions{
			// 跨來源由 CORS 設定管理
			InsecureSkipVerify: true,
		})
		if err != nil {
			common.LogWarn("WebSocket accept failed", zap.Error(err))
			return
		}

		NewClient(hub, conn).Run(c.Request.Context())
	}
}
