package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/maltedev/terraplen/internal/locale"
)

const (
	BackendHTTP    = "http"
	BackendBrowser = "browser"
)

type Config struct {
	Server   ServerConfig
	Scraper  ScraperConfig
	Browser  BrowserConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type ScraperConfig struct {
	Country      string
	Language     string
	Currency     string
	Backend      string
	Timeout      time.Duration
	RateLimitMin time.Duration
	RateLimitMax time.Duration
	SkipInit     bool
	UserAgents   []string
}

type BrowserConfig struct {
	Headless    bool
	Timeout     time.Duration
	ProxyServer string
	MaxRetries  int
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PageCacheTTL time.Duration
	EntityStream string
	PollInterval time.Duration
	BatchSize    int
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; variables already set
// in the environment take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 90*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getStringSliceOrDefault("SERVER_ALLOWED_ORIGINS", []string{"*"}),
		},
		Scraper: ScraperConfig{
			Country:      getEnvOrDefault("SCRAPER_COUNTRY", "com"),
			Language:     os.Getenv("SCRAPER_LANGUAGE"),
			Currency:     os.Getenv("SCRAPER_CURRENCY"),
			Backend:      getEnvOrDefault("FETCH_BACKEND", BackendHTTP),
			Timeout:      getDurationOrDefault("SCRAPER_TIMEOUT", 30*time.Second),
			RateLimitMin: getDurationOrDefault("SCRAPER_RATE_LIMIT_MIN", 2*time.Second),
			RateLimitMax: getDurationOrDefault("SCRAPER_RATE_LIMIT_MAX", 5*time.Second),
			SkipInit:     getBoolOrDefault("SCRAPER_SKIP_INIT", false),
			UserAgents:   getStringSliceOrDefault("SCRAPER_USER_AGENTS", nil),
		},
		Browser: BrowserConfig{
			Headless:    getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:     getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ProxyServer: os.Getenv("BROWSER_PROXY"),
			MaxRetries:  getIntOrDefault("BROWSER_MAX_RETRIES", 3),
		},
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			MaxConns: int32(getIntOrDefault("DATABASE_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			Addr:         os.Getenv("REDIS_ADDR"),
			Password:     os.Getenv("REDIS_PASSWORD"),
			DB:           getIntOrDefault("REDIS_DB", 0),
			PageCacheTTL: getDurationOrDefault("PAGE_CACHE_TTL", 0),
			EntityStream: getEnvOrDefault("ENTITY_STREAM", "stream:scraped_entities"),
			PollInterval: getDurationOrDefault("RELAY_POLL_INTERVAL", 5*time.Second),
			BatchSize:    getIntOrDefault("RELAY_BATCH_SIZE", 100),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := locale.Lookup(c.Scraper.Country); err != nil {
		return fmt.Errorf("SCRAPER_COUNTRY: %w", err)
	}

	if c.Scraper.Backend != BackendHTTP && c.Scraper.Backend != BackendBrowser {
		return fmt.Errorf("FETCH_BACKEND must be %q or %q, got %q", BackendHTTP, BackendBrowser, c.Scraper.Backend)
	}

	if c.Scraper.RateLimitMin < 0 || c.Scraper.RateLimitMin > c.Scraper.RateLimitMax {
		return fmt.Errorf("SCRAPER_RATE_LIMIT_MIN must be between 0 and SCRAPER_RATE_LIMIT_MAX")
	}

	if c.Scraper.Timeout <= 0 {
		return fmt.Errorf("SCRAPER_TIMEOUT must be positive")
	}

	if c.Redis.BatchSize < 1 {
		return fmt.Errorf("RELAY_BATCH_SIZE must be at least 1")
	}

	return nil
}

// PersistenceEnabled reports whether scraped entities are written to the
// database.
func (c *Config) PersistenceEnabled() bool {
	return c.Database.URL != ""
}

// RedisEnabled reports whether the page cache and the outbox relay run.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

func (c LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger: JSON unless LOG_FORMAT is "text".
func (c LoggingConfig) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
