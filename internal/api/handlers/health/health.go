package health

import (
	"net/http"
	"runtime"
	"time"

	"food-manager/internal/core/ai/queue"
	"food-manager/internal/core/ai/service"
	"food-manager/internal/infrastructure/config"
	"food-manager/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Storage   string                 `json:"storage"`
	AI        *AIStatus              `json:"ai"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// AIStatus AI 服務狀態
type AIStatus struct {
	Enabled bool                   `json:"enabled"`
	Model   string                 `json:"model,omitempty"`
	Queue   *queue.Status          `json:"queue,omitempty"`
	Cache   map[string]interface{} `json:"cache,omitempty"`
}

func fromContext(c *gin.Context) (*config.Config, *service.Service, bool) {
	cfgValue, exists := c.Get("config")
	if !exists {
		common.LogError("Configuration not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Configuration not found"})
		return nil, nil, false
	}
	cfg, ok := cfgValue.(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid configuration type"})
		return nil, nil, false
	}

	var aiSvc *service.Service
	if v, exists := c.Get("ai_service"); exists {
		aiSvc, _ = v.(*service.Service)
	}
	return cfg, aiSvc, true
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	cfg, aiSvc, ok := fromContext(c)
	if !ok {
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	ai := &AIStatus{}
	if aiSvc != nil {
		ai.Enabled = aiSvc.Enabled()
		ai.Model = aiSvc.Model()
		ai.Queue = aiSvc.QueueStatus()
		ai.Cache = aiSvc.CacheStats()
	}

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		Storage:   cfg.Storage.Driver,
		AI:        ai,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器
// AI 服務停用時仍為就緒，建議改用預設值
func ReadinessCheck(c *gin.Context) {
	_, aiSvc, ok := fromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"ai_enabled": aiSvc != nil && aiSvc.Enabled(),
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
