package food

import (
	"net/http"

	foodService "food-manager/internal/core/food"
	"food-manager/internal/core/model"
	"food-manager/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AIUpdateRequest 自然語言更新請求
type AIUpdateRequest struct {
	Instruction string `json:"instruction"`
	Apply       bool   `json:"apply"`
}

// Handler 食材、通知與行事曆處理程序
type Handler struct {
	service *foodService.Service
}

// NewHandler 創建新的食材處理程序
func NewHandler(service *foodService.Service) *Handler {
	return &Handler{service: service}
}

// Register 註冊路由
func (h *Handler) Register(rg *gin.RouterGroup) {
	items := rg.Group("/food-items")
	{
		items.POST("", h.HandleCreate)
		items.GET("", h.HandleList)
		items.GET("/:id", h.HandleGet)
		items.PUT("/:id", h.HandleUpdate)
		items.DELETE("/:id", h.HandleDelete)
		items.POST("/:id/ai-update", h.HandleAIUpdate)
	}

	notifications := rg.Group("/notifications")
	{
		notifications.GET("", h.HandleListNotifications)
		notifications.GET("/unread", h.HandleUnreadCount)
		notifications.PUT("/:id/read", h.HandleMarkRead)
	}

	rg.GET("/calendar-events", h.HandleCalendarEvents)
	rg.GET("/dashboard/stats", h.HandleDashboardStats)
}

// HandleCreate 新增食材
func (h *Handler) HandleCreate(c *gin.Context) {
	var req foodService.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		common.WriteError(c, common.NewValidationError("Invalid request format: "+err.Error()))
		return
	}

	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "Failed to create food item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// HandleList 列出食材，可用 filter 篩選
func (h *Handler) HandleList(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Query("filter"))
	if err != nil {
		h.fail(c, "Failed to list food items", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// HandleGet 取得單一食材
func (h *Handler) HandleGet(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to get food item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// HandleUpdate 部分更新食材
func (h *Handler) HandleUpdate(c *gin.Context) {
	var patch model.FoodPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		common.WriteError(c, common.NewValidationError("Invalid request format: "+err.Error()))
		return
	}

	item, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, "Failed to update food item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// HandleDelete 刪除食材及其提醒
func (h *Handler) HandleDelete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "Failed to delete food item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Food item deleted successfully"})
}

// HandleAIUpdate 以自然語言更新食材
func (h *Handler) HandleAIUpdate(c *gin.Context) {
	var req AIUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteError(c, common.NewValidationError("Invalid request format: "+err.Error()))
		return
	}

	result, err := h.service.InterpretUpdate(c.Request.Context(), c.Param("id"), req.Instruction, req.Apply)
	if err != nil {
		h.fail(c, "AI update failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleListNotifications 列出通知
func (h *Handler) HandleListNotifications(c *gin.Context) {
	list, err := h.service.ListNotifications(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to list notifications", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// HandleUnreadCount 未讀通知數量
func (h *Handler) HandleUnreadCount(c *gin.Context) {
	count, err := h.service.UnreadCount(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to count unread notifications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// HandleMarkRead 標記通知為已讀
func (h *Handler) HandleMarkRead(c *gin.Context) {
	if err := h.service.MarkNotificationRead(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "Failed to mark notification read", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// HandleCalendarEvents 列出行事曆事件
func (h *Handler) HandleCalendarEvents(c *gin.Context) {
	events, err := h.service.ListCalendarEvents(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to list calendar events", err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// HandleDashboardStats 儀表板統計
func (h *Handler) HandleDashboardStats(c *gin.Context) {
	stats, err := h.service.DashboardStats(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to load dashboard stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// fail 記錄並回傳錯誤，驗證與找不到資料只記錄警告
func (h *Handler) fail(c *gin.Context, msg string, err error) {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
	}
	if common.IsValidationError(err) || common.IsNotFound(err) {
		common.LogWarn(msg, fields...)
	} else {
		common.LogError(msg, fields...)
	}
	_ = c.Error(err)
	common.WriteError(c, err)
}
