package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	Database DatabaseConfig `envconfig:"DATABASE"`
	Logging  LoggingConfig  `envconfig:"LOGGING"`
	Ingest   IngestConfig   `envconfig:"INGEST"`
	Cache    CacheConfig    `envconfig:"CACHE"`
	AI       AIConfig       `envconfig:"AI"`
	Redis    RedisConfig    `envconfig:"REDIS"`
	Telegram TelegramConfig `envconfig:"TELEGRAM"`
}

// DatabaseConfig represents database connection parameters
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"newswire"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" default:""`
}

// IngestConfig represents feed ingestion parameters
type IngestConfig struct {
	Interval      time.Duration `envconfig:"INGEST_INTERVAL" default:"10m"`
	SourceDelay   time.Duration `envconfig:"INGEST_SOURCE_DELAY" default:"2s"`
	RecencyWindow time.Duration `envconfig:"INGEST_RECENCY_WINDOW" default:"168h"`
	FetchTimeout  time.Duration `envconfig:"INGEST_FETCH_TIMEOUT" default:"10s"`
	UserAgent     string        `envconfig:"INGEST_USER_AGENT" default:"newswire/1.0 (+https://github.com/selivandex/newswire)"`
	SummaryMaxLen int           `envconfig:"INGEST_SUMMARY_MAX_LEN" default:"500"`
}

// CacheConfig represents preprocessed cache parameters
type CacheConfig struct {
	TTL           time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	DefaultLimit  int           `envconfig:"CACHE_DEFAULT_LIMIT" default:"50"`
	WarmInterval  time.Duration `envconfig:"CACHE_WARM_INTERVAL" default:"5m"`
	PurgeInterval time.Duration `envconfig:"CACHE_PURGE_INTERVAL" default:"15m"`
}

// AIConfig represents optional AI sentiment escalation parameters
type AIConfig struct {
	Enabled       bool          `envconfig:"AI_ENABLED" default:"false"`
	APIKey        string        `envconfig:"AI_API_KEY" required:"false"`
	URL           string        `envconfig:"AI_URL" default:"https://api.openai.com/v1/chat/completions"`
	Model         string        `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	Timeout       time.Duration `envconfig:"AI_TIMEOUT" default:"3s"`
	MinConfidence float64       `envconfig:"AI_MIN_CONFIDENCE" default:"0.7"`
}

// RedisConfig represents optional run-lock parameters.
// An empty host disables distributed locking entirely.
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:""`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" required:"false"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// TelegramConfig represents optional breaking-news alert parameters.
// An empty token disables alerts.
type TelegramConfig struct {
	BotToken     string  `envconfig:"TELEGRAM_BOT_TOKEN" required:"false"`
	ChatID       int64   `envconfig:"TELEGRAM_CHAT_ID" required:"false"`
	MinRelevance float64 `envconfig:"TELEGRAM_MIN_RELEVANCE" default:"0.85"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Ingest.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if c.Ingest.RecencyWindow <= 0 {
		return fmt.Errorf("recency window must be positive")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	if c.Cache.DefaultLimit < 1 {
		return fmt.Errorf("cache default limit must be at least 1")
	}

	if c.AI.Enabled {
		if c.AI.APIKey == "" {
			return fmt.Errorf("AI escalation enabled but no API key configured")
		}
		if c.AI.Timeout <= 0 {
			return fmt.Errorf("AI timeout must be positive")
		}
		if c.AI.MinConfidence < 0 || c.AI.MinConfidence > 1 {
			return fmt.Errorf("AI min confidence must be between 0 and 1")
		}
	}

	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram chat_id is required when bot token is set")
	}

	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// LockEnabled reports whether a distributed run lock should be used
func (c *RedisConfig) LockEnabled() bool {
	return c.Host != ""
}

// AlertsEnabled reports whether Telegram alerts should be sent
func (c *TelegramConfig) AlertsEnabled() bool {
	return c.BotToken != "" && c.ChatID != 0
}
