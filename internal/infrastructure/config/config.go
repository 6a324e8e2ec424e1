package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Corpus    CorpusConfig    `mapstructure:"corpus"`
	Suggest   SuggestConfig   `mapstructure:"suggest"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	LogLevel  string          `mapstructure:"log_level"`
	LogFile   string          `mapstructure:"log_file"`
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
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// CorpusConfig 食譜資料來源設定
type CorpusConfig struct {
	Source        string        `mapstructure:"source"`    // sample, csv, yaml, remote
	Path          string        `mapstructure:"path"`      // csv / yaml 檔案路徑
	URL           string        `mapstructure:"url"`       // remote 來源網址
	Format        string        `mapstructure:"format"`    // remote 格式：csv, yaml，空值自動判斷
	Delimiter     string        `mapstructure:"delimiter"` // csv 分隔符號
	Watch         bool          `mapstructure:"watch"`     // 檔案變動時重建索引
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
	RemoteTimeout time.Duration `mapstructure:"remote_timeout"`
}

// SuggestConfig 推薦參數
type SuggestConfig struct {
	DefaultTopK     int     `mapstructure:"default_top_k"`
	DefaultMinScore float64 `mapstructure:"default_min_score"`
	MaxTopK         int     `mapstructure:"max_top_k"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Driver          string        `mapstructure:"driver"` // memory, redis
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Redis           RedisConfig   `mapstructure:"redis"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// MetricsConfig Prometheus 指標設定
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoadConfig 載入設定：預設值 < .env < 環境變數
func LoadConfig() (*Config, error) {
	// .env 不存在不是錯誤
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定常用的短環境變數
	_ = v.BindEnv("server.port", "APP_SERVER_PORT", "PORT")
	_ = v.BindEnv("corpus.source", "APP_CORPUS_SOURCE", "CORPUS_SOURCE")
	_ = v.BindEnv("corpus.path", "APP_CORPUS_PATH", "CORPUS_PATH")
	_ = v.BindEnv("corpus.url", "APP_CORPUS_URL", "CORPUS_URL")
	_ = v.BindEnv("corpus.watch", "APP_CORPUS_WATCH", "CORPUS_WATCH")
	_ = v.BindEnv("cache.enabled", "APP_CACHE_ENABLED", "CACHE_ENABLED")
	_ = v.BindEnv("cache.driver", "APP_CACHE_DRIVER", "CACHE_DRIVER")
	_ = v.BindEnv("cache.redis.addr", "APP_CACHE_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("cache.redis.password", "APP_CACHE_REDIS_PASSWORD", "REDIS_PASSWORD")
	_ = v.BindEnv("rate_limit.enabled", "APP_RATE_LIMIT_ENABLED", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "APP_RATE_LIMIT_REQUESTS", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "APP_RATE_LIMIT_WINDOW", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("log_level", "APP_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("log_file", "APP_LOG_FILE", "LOG_FILE")

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-suggester")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB

	// 食譜資料來源
	v.SetDefault("corpus.source", "sample")
	v.SetDefault("corpus.path", "")
	v.SetDefault("corpus.url", "")
	v.SetDefault("corpus.format", "")
	v.SetDefault("corpus.delimiter", ",")
	v.SetDefault("corpus.watch", false)
	v.SetDefault("corpus.watch_debounce", "500ms")
	v.SetDefault("corpus.remote_timeout", "30s")

	// 推薦參數
	v.SetDefault("suggest.default_top_k", 5)
	v.SetDefault("suggest.default_min_score", 0.1)
	v.SetDefault("suggest.max_top_k", 50)

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.cleanup_interval", "1m")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.key_prefix", "recipe:suggest")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 指標
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "logs/app.log")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}

	switch strings.ToLower(config.Corpus.Source) {
	case "sample":
	case "csv", "yaml":
		if config.Corpus.Path == "" {
			return fmt.Errorf("corpus.path is required for %s source", config.Corpus.Source)
		}
	case "remote":
		if config.Corpus.URL == "" {
			return fmt.Errorf("corpus.url is required for remote source")
		}
	default:
		return fmt.Errorf("unknown corpus source %q", config.Corpus.Source)
	}

	if config.Suggest.DefaultTopK < 1 {
		return fmt.Errorf("invalid suggest default top k")
	}
	if config.Suggest.MaxTopK < config.Suggest.DefaultTopK {
		return fmt.Errorf("suggest max top k must be >= default top k")
	}
	if config.Suggest.DefaultMinScore < 0 || config.Suggest.DefaultMinScore > 1 {
		return fmt.Errorf("suggest default min score must be in [0,1]")
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
			if config.Cache.Redis.Addr == "" {
				return fmt.Errorf("cache.redis.addr is required for redis driver")
			}
		default:
			return fmt.Errorf("unknown cache driver %q", config.Cache.Driver)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	if config.RateLimit.Enabled {
		if config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit")
		}
	}

	return nil
}
