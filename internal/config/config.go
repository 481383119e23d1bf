package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/thomas-vilte/mateticket/internal/errors"
)

type (
	Config struct {
		Gemini    GeminiConfig    `toml:"gemini"`
		Redis     RedisConfig     `toml:"redis"`
		RateLimit RateLimitConfig `toml:"rate_limit"`
		API       APIConfig       `toml:"api"`

		DatabaseURL string `toml:"database_url"`
		SLAModel    string `toml:"sla_model"`
		Language    string `toml:"language"`
		Debug       bool   `toml:"debug"`
		LogFormat   string `toml:"log_format"`

		CacheTTL time.Duration `toml:"-"`

		// Path is the TOML file the configuration was read from, if any.
		Path string `toml:"-"`
	}

	GeminiConfig struct {
		APIKey         string  `toml:"api_key"`
		Model          string  `toml:"model"`
		EmbeddingModel string  `toml:"embedding_model"`
		MaxTokens      int     `toml:"max_tokens"`
		Temperature    float64 `toml:"temperature"`
		TimeoutSeconds int     `toml:"timeout_seconds"`
		BudgetDaily    float64 `toml:"budget_daily_usd"`
		AutoRoute      bool    `toml:"auto_route"`
	}

	RedisConfig struct {
		Host            string `toml:"host"`
		Port            int    `toml:"port"`
		Password        string `toml:"password"`
		DB              int    `toml:"db"`
		CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
	}

	RateLimitConfig struct {
		Requests      int `toml:"requests"`
		WindowSeconds int `toml:"window_seconds"`
	}

	APIConfig struct {
		Host string `toml:"host"`
		Port int    `toml:"port"`
	}
)

const (
	defaultModel          = string(ModelGemini15Flash)
	defaultEmbeddingModel = "text-embedding-004"
	defaultMaxTokens      = 1000
	defaultTemperature    = 0.3
	defaultTimeoutSeconds = 30
	defaultRedisPort      = 6379
	defaultCacheTTL       = 3600
	defaultRateRequests   = 100
	defaultRateWindow     = 3600
	defaultHost           = "0.0.0.0"
	defaultPort           = 8001
	defaultLanguage       = "en"

	SLAModelRules = "rules"
	SLAModelGBR   = "gbr"

	// placeholderAPIKey is the value shipped in example .env files.
	placeholderAPIKey = "your_gemini_api_key_here"
)

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Gemini: GeminiConfig{
			Model:          defaultModel,
			EmbeddingModel: defaultEmbeddingModel,
			MaxTokens:      defaultMaxTokens,
			Temperature:    defaultTemperature,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Redis: RedisConfig{
			Port:            defaultRedisPort,
			CacheTTLSeconds: defaultCacheTTL,
		},
		RateLimit: RateLimitConfig{
			Requests:      defaultRateRequests,
			WindowSeconds: defaultRateWindow,
		},
		API: APIConfig{
			Host: defaultHost,
			Port: defaultPort,
		},
		SLAModel:  SLAModelRules,
		Language:  defaultLanguage,
		LogFormat: "pretty",
		CacheTTL:  defaultCacheTTL * time.Second,
	}
}

// Load reads .env (when present), an optional TOML file and the environment,
// in that order of precedence from lowest to highest. path may be empty, in
// which case MATETICKET_CONFIG is consulted.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.ErrConfigInvalid.WithError(fmt.Errorf("error reading .env: %w", err))
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("MATETICKET_CONFIG")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, errors.ErrConfigInvalid.
				WithError(fmt.Errorf("error decoding %s: %w", path, err)).
				WithContext("path", path)
		}
		cfg.Path = path
	}

	applyEnv(cfg)

	cfg.CacheTTL = time.Duration(cfg.Redis.CacheTTLSeconds) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Gemini.APIKey = readString("GEMINI_API_KEY", cfg.Gemini.APIKey)
	cfg.Gemini.Model = readString("GEMINI_MODEL", cfg.Gemini.Model)
	cfg.Gemini.EmbeddingModel = readString("GEMINI_EMBEDDING_MODEL", cfg.Gemini.EmbeddingModel)
	cfg.Gemini.MaxTokens = readInt("GEMINI_MAX_TOKENS", cfg.Gemini.MaxTokens)
	cfg.Gemini.Temperature = readFloat("GEMINI_TEMPERATURE", cfg.Gemini.Temperature)
	cfg.Gemini.TimeoutSeconds = readInt("GEMINI_TIMEOUT_SECONDS", cfg.Gemini.TimeoutSeconds)
	cfg.Gemini.BudgetDaily = readFloat("AI_BUDGET_DAILY_USD", cfg.Gemini.BudgetDaily)
	cfg.Gemini.AutoRoute = readBool("AI_AUTO_ROUTE", cfg.Gemini.AutoRoute)

	cfg.Redis.Host = readString("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = readInt("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = readString("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = readInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.CacheTTLSeconds = readInt("CACHE_TTL_SECONDS", cfg.Redis.CacheTTLSeconds)

	cfg.RateLimit.Requests = readInt("RATE_LIMIT_REQUESTS", cfg.RateLimit.Requests)
	cfg.RateLimit.WindowSeconds = readInt("RATE_LIMIT_WINDOW", cfg.RateLimit.WindowSeconds)

	cfg.API.Host = readString("API_HOST", cfg.API.Host)
	cfg.API.Port = readInt("API_PORT", cfg.API.Port)

	cfg.DatabaseURL = readString("DATABASE_URL", cfg.DatabaseURL)
	cfg.SLAModel = strings.ToLower(readString("SLA_MODEL", cfg.SLAModel))
	cfg.Language = readString("LANGUAGE", cfg.Language)
	cfg.Debug = readBool("DEBUG", cfg.Debug)
	cfg.LogFormat = readString("LOG_FORMAT", cfg.LogFormat)
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	invalid := func(field, msg string) error {
		return errors.ErrConfigInvalid.
			WithError(fmt.Errorf("%s", msg)).
			WithContext("field", field)
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		return invalid("api.port", fmt.Sprintf("port %d out of range", c.API.Port))
	}
	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		return invalid("gemini.temperature", "temperature must be between 0 and 2")
	}
	if c.Gemini.MaxTokens <= 0 {
		return invalid("gemini.max_tokens", "max tokens must be positive")
	}
	if c.Gemini.BudgetDaily < 0 {
		return invalid("gemini.budget_daily_usd", "budget cannot be negative")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.WindowSeconds <= 0 {
		return invalid("rate_limit", "rate limit requests and window must be positive")
	}
	if c.Redis.CacheTTLSeconds <= 0 {
		return invalid("redis.cache_ttl_seconds", "cache TTL must be positive")
	}
	if c.SLAModel != SLAModelRules && c.SLAModel != SLAModelGBR {
		return invalid("sla_model", fmt.Sprintf("unknown SLA model %q", c.SLAModel))
	}
	if c.LogFormat != "pretty" && c.LogFormat != "json" {
		return invalid("log_format", fmt.Sprintf("unknown log format %q", c.LogFormat))
	}

	return nil
}

// AIEnabled reports whether a usable Gemini key is configured.
func (c *Config) AIEnabled() bool {
	key := strings.TrimSpace(c.Gemini.APIKey)
	return key != "" && key != placeholderAPIKey
}

// RedisAddr returns host:port, or "" when Redis is not configured.
func (c *Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// ListenAddr returns the HTTP listen address.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

func (c *Config) GeminiTimeout() time.Duration {
	return time.Duration(c.Gemini.TimeoutSeconds) * time.Second
}

func readString(key, fallback string) string {
	if raw, ok := os.LookupEnv(key); ok && raw != "" {
		return raw
	}
	return fallback
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func readFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fallback
	}
	return value
}

func readBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}
