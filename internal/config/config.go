package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Google    ProviderConfig  `mapstructure:"google"`
	OpenAI    ProviderConfig  `mapstructure:"openai"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	History   HistoryConfig   `mapstructure:"history"`
	Store     StoreConfig     `mapstructure:"store"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`

	// Outbound AI calls are capped at this many seconds. The timeout is the
	// only cancellation mechanism for an in-flight upstream call.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`

	UpdateCheck bool `mapstructure:"update_check"`
}

// ProviderConfig holds the per-provider secret and base URL. An empty key is
// legal: it degrades that provider, never the process.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"api_url"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CatalogConfig struct {
	// TTL for cached catalogs in seconds. Zero or negative keeps a catalog
	// for the whole server session until an explicit refresh.
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

type HistoryConfig struct {
	// Size bounds the in-memory call history ring.
	Size int `mapstructure:"size"`
}

type StoreConfig struct {
	DSN string `mapstructure:"dsn"`
}

func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

func (c CatalogConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./internal/config")

	// Default Values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.request_timeout_seconds", 30)
	v.SetDefault("server.update_check", false)
	v.SetDefault("google.api_key", "ENV:GOOGLE_API_KEY")
	v.SetDefault("google.api_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("openai.api_key", "ENV:OPENAI_API_KEY")
	v.SetDefault("openai.api_url", "https://api.openai.com")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("catalog.ttl_seconds", 0)
	v.SetDefault("history.size", 200)
	v.SetDefault("store.dsn", "file:guardrails.db?cache=shared&mode=rwc&_journal_mode=WAL&_busy_timeout=5000")

	// Environment Variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// Resolve API keys given as ENV: references
	cfg.Google.APIKey = resolveEnvRef(v, cfg.Google.APIKey)
	cfg.OpenAI.APIKey = resolveEnvRef(v, cfg.OpenAI.APIKey)

	return &cfg, nil
}

func resolveEnvRef(v *viper.Viper, value string) string {
	if !strings.HasPrefix(value, "ENV:") {
		return value
	}
	envVar := strings.TrimPrefix(value, "ENV:")
	// Check process environment first (explicit override)
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	// Then check viper (which might have it from other sources)
	return v.GetString(envVar)
}
