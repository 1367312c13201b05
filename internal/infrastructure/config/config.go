package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"cooksy/internal/pkg/common"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	HuggingFace HuggingFaceConfig `mapstructure:"huggingface"`
	Generation  GenerationConfig  `mapstructure:"generation"`
	Corpus      CorpusConfig      `mapstructure:"corpus"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Queue       QueueConfig       `mapstructure:"queue"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	DedupWindow time.Duration     `mapstructure:"dedup_window"`
	LogLevel    string            `mapstructure:"log_level"`
	LogFile     string            `mapstructure:"log_file"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// HuggingFaceConfig 生成服務配置
type HuggingFaceConfig struct {
	Token   string        `mapstructure:"token"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"` // 0 表示不設超時
}

// GenerationConfig 生成參數
type GenerationConfig struct {
	RecipeMaxTokens     int     `mapstructure:"recipe_max_tokens"`
	ChatMaxTokens       int     `mapstructure:"chat_max_tokens"`
	ClassifierMaxTokens int     `mapstructure:"classifier_max_tokens"`
	Temperature         float64 `mapstructure:"temperature"`
	TopP                float64 `mapstructure:"top_p"`
}

// CorpusConfig 食譜資料集與檢索設定
type CorpusConfig struct {
	Path               string  `mapstructure:"path"`
	RelevanceThreshold float64 `mapstructure:"relevance_threshold"`
	MinimalistMax      int     `mapstructure:"minimalist_max"`
}

// CacheConfig 分類結果快取設定
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"` // memory 或 redis
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// QueueConfig 生成請求隊列配置
type QueueConfig struct {
	Workers    int `mapstructure:"workers"`     // 同時進行的生成請求數
	MaxWaiting int `mapstructure:"max_waiting"` // 超過則直接拒絕
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入並驗證設定，缺少 HF_TOKEN 時回傳 CONFIGURATION_MISSING
func LoadConfig() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load 載入設定但不檢查憑證，供不需要生成服務的指令使用
func Load() (*Config, error) {
	// 加載 .env 文件（不存在時忽略）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	_ = v.BindEnv("huggingface.token", "HF_TOKEN")
	_ = v.BindEnv("huggingface.model", "HF_MODEL")
	_ = v.BindEnv("huggingface.base_url", "HF_BASE_URL")
	_ = v.BindEnv("corpus.path", "CORPUS_PATH")
	_ = v.BindEnv("cache.enabled", "CACHE_ENABLED")
	_ = v.BindEnv("cache.backend", "CACHE_BACKEND")
	_ = v.BindEnv("cache.redis_addr", "REDIS_ADDR")
	_ = v.BindEnv("cache.redis_password", "REDIS_PASSWORD")
	_ = v.BindEnv("queue.workers", "QUEUE_WORKERS")
	_ = v.BindEnv("queue.max_waiting", "QUEUE_MAX_WAITING")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("log_file", "LOG_FILE")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateGeneral(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "cooksy")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "0s") // 串流回應不設寫入超時
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// 生成服務設定
	v.SetDefault("huggingface.model", "meta-llama/Llama-3.1-8B-Instruct")
	v.SetDefault("huggingface.base_url", "https://router.huggingface.co/v1")
	v.SetDefault("huggingface.timeout", "0s")

	// 生成參數
	v.SetDefault("generation.recipe_max_tokens", 2048)
	v.SetDefault("generation.chat_max_tokens", 512)
	v.SetDefault("generation.classifier_max_tokens", 5)
	v.SetDefault("generation.temperature", 0.7)
	v.SetDefault("generation.top_p", 0.95)

	// 資料集設定
	v.SetDefault("corpus.path", "Resep_makanan_indo.csv")
	v.SetDefault("corpus.relevance_threshold", 0.15)
	v.SetDefault("corpus.minimalist_max", 4)

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)

	// 隊列設定
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.max_waiting", 16)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 60)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "logs/app.log")
}

// Validate 驗證啟動生成服務所需的設定
func (c *Config) Validate() error {
	if strings.TrimSpace(c.HuggingFace.Token) == "" {
		return common.ConfigurationMissing("Token Hugging Face (HF_TOKEN) tidak ditemukan! Mohon atur di file .env")
	}
	return nil
}

// validateGeneral 驗證一般設定
func validateGeneral(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}
	if config.Corpus.Path == "" {
		return fmt.Errorf("corpus path is required")
	}
	if config.Corpus.RelevanceThreshold < 0 || config.Corpus.RelevanceThreshold >= 1 {
		return fmt.Errorf("invalid relevance threshold %v", config.Corpus.RelevanceThreshold)
	}
	if config.Generation.RecipeMaxTokens <= 0 || config.Generation.ChatMaxTokens <= 0 || config.Generation.ClassifierMaxTokens <= 0 {
		return fmt.Errorf("generation token budgets must be positive")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case "memory":
			if config.Cache.MaxSize <= 0 {
				return fmt.Errorf("invalid cache max size")
			}
			if config.Cache.CleanupInterval <= 0 {
				return fmt.Errorf("invalid cache cleanup interval")
			}
		case "redis":
			if config.Cache.RedisAddr == "" {
				return fmt.Errorf("redis address is required for redis cache backend")
			}
		default:
			return fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	if config.Queue.Workers <= 0 || config.Queue.MaxWaiting < 0 {
		return fmt.Errorf("invalid queue size")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}

	return nil
}
