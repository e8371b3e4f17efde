package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	foodHandler "food-manager/internal/api/handlers/food"
	"food-manager/internal/api/handlers/health"
	recipeHandler "food-manager/internal/api/handlers/recipe"
	"food-manager/internal/api/middleware"
	"food-manager/internal/core/ai/service"
	foodService "food-manager/internal/core/food"
	recipeService "food-manager/internal/core/recipe"
	"food-manager/internal/infrastructure/config"
	"food-manager/internal/pkg/common"
	"food-manager/internal/realtime"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (1MB)
	maxBodySize = 1 << 20
)

// Dependencies 路由需要的服務
type Dependencies struct {
	AIService         *service.Service
	FoodService       *foodService.Service
	SuggestionService *recipeService.SuggestionService
	Hub               *realtime.Hub
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if deps.FoodService == nil || deps.SuggestionService == nil || deps.Hub == nil {
		return nil, fmt.Errorf("failed to setup router: missing services")
	}

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	bodyLimit := int64(maxBodySize)
	if cfg.Server.MaxBodyBytes > 0 {
		bodyLimit = cfg.Server.MaxBodyBytes
	}
	router.Use(middleware.BodySizeLimit(bodyLimit))

	// 注入配置與 AI 服務，供健康檢查使用
	router.Use(func(c *gin.Context) {
		c.Set("config", cfg)
		if deps.AIService != nil {
			c.Set("ai_service", deps.AIService)
		}
		c.Next()
	})

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Home Food Management System API",
			"status":  "running",
			"version": cfg.App.Version,
		})
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// WebSocket 為長連線，不套用請求超時
	router.GET("/api/v1/ws", realtime.Handler(deps.Hub))

	api := router.Group("/api/v1")
	api.Use(requestTimeout(timeoutDuration))
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	api.Use(middleware.Deduplication(cfg))
	{
		foodHandler.NewHandler(deps.FoodService).Register(api)

		meals := recipeHandler.NewHandler(deps.SuggestionService)
		api.POST("/meal-suggestions", meals.HandleMealSuggestions)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("ai_service_initialized", deps.AIService != nil && deps.AIService.Enabled()),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.String("storage", cfg.Storage.Driver),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", bodyLimit),
	)

	return router, nil
}

// requestTimeout 設置請求超時，處理程序尚未回應時回傳 504
func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrorResponse{
				Code:    common.ErrCodeGatewayTimeout,
				Message: "Request timeout",
				Details: timeout.String(),
			})
		}
	}
}
