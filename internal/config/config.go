package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr              string
	DBPath            string
	LogLevel          string
	TelegramToken     string
	TelegramWorkers   int
	TelegramQueueSize int
	IdleSessionTTL    time.Duration
	IdleSweepInterval time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		DBPath:            envOr("DB_PATH", "file:flashqueue.db"),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
		TelegramWorkers:   envIntOr("TELEGRAM_WORKERS", 4),
		TelegramQueueSize: envIntOr("TELEGRAM_QUEUE_SIZE", 64),
		IdleSessionTTL:    envDurationOr("IDLE_SESSION_TTL", 0),
		IdleSweepInterval: envDurationOr("IDLE_SWEEP_INTERVAL", 10*time.Minute),
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel)
	}
	if c.TelegramWorkers < 1 || c.TelegramWorkers > 256 {
		return fmt.Errorf("TELEGRAM_WORKERS must be between 1 and 256 (got %d)", c.TelegramWorkers)
	}
	if c.TelegramQueueSize < 1 {
		return fmt.Errorf("TELEGRAM_QUEUE_SIZE must be positive (got %d)", c.TelegramQueueSize)
	}
	if c.IdleSessionTTL < 0 {
		return fmt.Errorf("IDLE_SESSION_TTL cannot be negative")
	}
	if c.IdleSessionTTL > 0 && c.IdleSweepInterval <= 0 {
		return fmt.Errorf("IDLE_SWEEP_INTERVAL must be positive when IDLE_SESSION_TTL is set")
	}
	return nil
}

// BotEnabled reports whether a Telegram token was configured.
func (c Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

// ReaperEnabled reports whether idle sessions should be expired.
func (c Config) ReaperEnabled() bool {
	return c.IdleSessionTTL > 0
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
