package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds application configuration from env.
type Config struct {
	CacheDir        string `validate:"required"`
	SaveFormat      string `validate:"required,oneof=csv parquet json"`
	LogLevel        string `validate:"oneof=debug info warn error"`
	CalendarURL     string `validate:"omitempty,url"`
	FetchTimeoutSec int    `validate:"min=1,max=3600"`
	CompactWorkers  int    `validate:"min=1,max=64"`
}

// LoadConfig reads config from environment and validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		CacheDir:        getEnv("CACHE_DIR", ".twscache"),
		SaveFormat:      getSaveFormat(),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CalendarURL:     os.Getenv("CALENDAR_URL"),
		FetchTimeoutSec: getEnvInt("FETCH_TIMEOUT_SEC", 60),
		CompactWorkers:  getEnvInt("COMPACT_WORKERS", 4),
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// FetchTimeout returns the configured fetch bound as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getSaveFormat() string {
	if v := os.Getenv("SAVE_FORMAT"); v != "" {
		return v
	}
	switch os.Getenv("PROFILE") {
	case "dev", "development":
		return "json"
	case "prod", "production", "":
		return "parquet"
	default:
		return "parquet"
	}
}
