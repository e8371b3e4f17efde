package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	AI          AIConfig         `mapstructure:"ai"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Queue       QueueConfig      `mapstructure:"queue"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Storage     StorageConfig    `mapstructure:"storage"`
	Lifecycle   LifecycleConfig  `mapstructure:"lifecycle"`
	Scheduler   SchedulerConfig  `mapstructure:"scheduler"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// OpenRouterConfig OpenAI 相容 Chat Completion 服務配置（預設 DeepSeek）
type OpenRouterConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AIConfig AI 配置
type AIConfig struct {
	EnableCache bool `mapstructure:"enable_cache"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Driver          string        `mapstructure:"driver"` // memory | redis
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// QueueConfig 請求隊列設定
type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max_size"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// StorageConfig 儲存配置
type StorageConfig struct {
	Driver        string        `mapstructure:"driver"` // memory | sqlite | mongo
	SQLitePath    string        `mapstructure:"sqlite_path"`
	MongoURI      string        `mapstructure:"mongo_uri"`
	MongoDatabase string        `mapstructure:"mongo_database"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// LifecycleConfig 食材生命週期規則配置
type LifecycleConfig struct {
	// PantryMeansUnset 為 true 時，使用者明確送出 "pantry" 視同未指定
	PantryMeansUnset bool `mapstructure:"pantry_means_unset"`
}

// SchedulerConfig 通知掃描排程配置
type SchedulerConfig struct {
	SweepEnabled  bool          `mapstructure:"sweep_enabled"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時只依賴環境變數與預設值
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	_ = v.BindEnv("openrouter.api_key", "DEEPSEEK_API_KEY", "OPENROUTER_API_KEY")
	_ = v.BindEnv("openrouter.base_url", "DEEPSEEK_BASE_URL", "OPENROUTER_BASE_URL")
	_ = v.BindEnv("openrouter.model", "DEEPSEEK_MODEL", "OPENROUTER_MODEL")
	_ = v.BindEnv("openrouter.max_tokens", "MODEL_MAX_TOKENS")
	_ = v.BindEnv("cache.enabled", "CACHE_ENABLED")
	_ = v.BindEnv("cache.driver", "CACHE_DRIVER")
	_ = v.BindEnv("cache.redis_addr", "REDIS_ADDR")
	_ = v.BindEnv("storage.driver", "STORAGE_DRIVER")
	_ = v.BindEnv("storage.sqlite_path", "SQLITE_PATH")
	_ = v.BindEnv("storage.mongo_uri", "MONGO_URL")
	_ = v.BindEnv("storage.mongo_database", "MONGO_DATABASE")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("scheduler.sweep_interval", "SWEEP_INTERVAL")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// logger 尚未初始化，改用 fmt.Println
	fmt.Println("Loading configuration", "api_base:", v.GetString("openrouter.base_url"), "model:", v.GetString("openrouter.model"), "storage:", v.GetString("storage.driver"), "key:", MaskAPIKey(v.GetString("openrouter.api_key")))

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "food-manager")

	// 伺服器設定
	v.SetDefault("server.port", 8001)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// Chat Completion 設定
	v.SetDefault("openrouter.enabled", true)
	v.SetDefault("openrouter.base_url", "https://api.deepseek.com")
	v.SetDefault("openrouter.model", "deepseek-chat")
	v.SetDefault("openrouter.max_tokens", 500)
	v.SetDefault("openrouter.temperature", 0.3)
	v.SetDefault("openrouter.timeout", "30s")

	// AI 設定
	v.SetDefault("ai.enable_cache", true)

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 隊列設定
	v.SetDefault("queue.workers", 5)
	v.SetDefault("queue.max_size", 100)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 儲存設定
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "food_management.db")
	v.SetDefault("storage.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("storage.mongo_database", "food_management")
	v.SetDefault("storage.timeout", "10s")

	// 生命週期規則
	v.SetDefault("lifecycle.pantry_means_unset", true)

	// 通知掃描
	v.SetDefault("scheduler.sweep_enabled", true)
	v.SetDefault("scheduler.sweep_interval", "1h")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if config.Cache.Enabled {
		switch config.Cache.Driver {
		case "memory":
			if config.Cache.MaxSize <= 0 {
				return fmt.Errorf("invalid cache max size")
			}
			if config.Cache.CleanupInterval <= 0 {
				return fmt.Errorf("invalid cache cleanup interval")
			}
		case "redis":
			if config.Cache.RedisAddr == "" {
				return fmt.Errorf("redis address is required")
			}
		default:
			return fmt.Errorf("unknown cache driver %q", config.Cache.Driver)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	if config.Queue.Workers <= 0 {
		return fmt.Errorf("invalid queue workers")
	}
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}

	switch config.Storage.Driver {
	case "memory":
	case "sqlite":
		if config.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case "mongo":
		if config.Storage.MongoURI == "" || config.Storage.MongoDatabase == "" {
			return fmt.Errorf("mongo uri and database are required")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	if config.Scheduler.SweepEnabled && config.Scheduler.SweepInterval <= 0 {
		return fmt.Errorf("invalid sweep interval")
	}

	return nil
}
