package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-manager/internal/api"
	"food-manager/internal/core/advisory"
	"food-manager/internal/core/ai/cache"
	"food-manager/internal/core/ai/openrouter"
	"food-manager/internal/core/ai/provider"
	"food-manager/internal/core/ai/queue"
	"food-manager/internal/core/ai/service"
	"food-manager/internal/core/food"
	"food-manager/internal/core/lifecycle"
	"food-manager/internal/core/recipe"
	"food-manager/internal/infrastructure/config"
	"food-manager/internal/pkg/common"
	"food-manager/internal/realtime"
	"food-manager/internal/store/memory"
	"food-manager/internal/store/mongo"
	"food-manager/internal/store/sqlite"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("openrouter_api_key", config.MaskAPIKey(cfg.OpenRouter.APIKey)),
		zap.String("openrouter_model", cfg.OpenRouter.Model),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	// 初始化快取，未啟用時為 nil
	cacheStore, err := cache.New(&cfg.Cache)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	if cacheStore != nil {
		defer cacheStore.Close()
	}

	// AI 服務未設定時所有建議改用預設值
	var aiProvider provider.Provider
	if cfg.OpenRouter.Enabled && cfg.OpenRouter.APIKey != "" {
		client := openrouter.NewClient(&cfg.OpenRouter)
		defer client.Close()
		aiProvider = client
	} else {
		common.LogWarn("AI provider disabled, using fallback advisory")
	}

	requestQueue := queue.NewManager(&cfg.Queue)
	defer requestQueue.Close()

	aiService := service.NewService(cfg, aiProvider, cacheStore, requestQueue)
	advisor := advisory.NewClient(aiService, advisory.DefaultOptions())

	repos, err := openStorage(context.Background(), cfg)
	if err != nil {
		common.LogFatal("Failed to open storage", zap.Error(err))
	}
	if repos.Close != nil {
		defer repos.Close()
	}

	hub := realtime.NewHub()
	foodService := food.NewService(repos, advisor,
		lifecycle.MergePolicy{PantryMeansUnset: cfg.Lifecycle.PantryMeansUnset},
		food.WithNotifier(hub),
	)
	suggestionService := recipe.NewSuggestionService(foodService, advisor)

	var sweeper *food.Sweeper
	if cfg.Scheduler.SweepEnabled {
		sweeper = food.NewSweeper(foodService, cfg.Scheduler.SweepInterval)
		sweeper.Start(context.Background())
	}

	// 設置路由
	router, err := api.SetupRouter(cfg, api.Dependencies{
		AIService:         aiService,
		FoodService:       foodService,
		SuggestionService: suggestionService,
		Hub:               hub,
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server",
				zap.Error(err),
			)
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	if sweeper != nil {
		sweeper.Stop()
	}

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
		return
	}

	common.LogInfo("Server exited")
}

// openStorage 依 storage.driver 開啟儲存
func openStorage(ctx context.Context, cfg *config.Config) (food.Repositories, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		store, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return food.Repositories{}, err
		}
		return store.Repositories(), nil
	case "mongo":
		store, err := mongo.Connect(ctx, &cfg.Storage)
		if err != nil {
			return food.Repositories{}, err
		}
		return store.Repositories(), nil
	case "memory", "":
		return memory.New().Repositories(), nil
	default:
		return food.Repositories{}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
