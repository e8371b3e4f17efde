package recipe

import (
	"errors"
	"io"
	"net/http"

	recipeService "food-manager/internal/core/recipe"
	"food-manager/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 食譜推薦處理程序
type Handler struct {
	suggestionService *recipeService.SuggestionService
}

// NewHandler 創建新的食譜推薦處理程序
func NewHandler(suggestionService *recipeService.SuggestionService) *Handler {
	return &Handler{suggestionService: suggestionService}
}

// HandleMealSuggestions 依庫存中即將到期的食材推薦食譜
// 請求體可省略，省略時使用預設偏好
func (h *Handler) HandleMealSuggestions(c *gin.Context) {
	requestID := requestid.Get(c)
	common.LogInfo("開始處理食譜推薦請求", zap.String("request_id", requestID), zap.String("client_ip", c.ClientIP()))

	var prefs common.MealPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil && !errors.Is(err, io.EOF) {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		common.WriteError(c, common.NewValidationError("Invalid request format: "+err.Error()))
		return
	}

	result, err := h.suggestionService.SuggestMeals(c.Request.Context(), prefs)
	if err != nil {
		common.LogError("食譜推薦失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		common.WriteError(c, err)
		return
	}

	common.LogInfo("食譜推薦完成",
		zap.String("request_id", requestID),
		zap.Bool("success", result.Success),
		zap.Int("recipes", len(result.Recipes)),
	)
	c.JSON(http.StatusOK, result)
}
