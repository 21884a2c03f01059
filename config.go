package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

const defaultDatabaseURL = "sqlite:///./portfolio.db"

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	DatabaseURL        string
	Addr               string
	AllowedOrigins     []string
	CacheTTL           time.Duration
	LogLevel           zap.AtomicLevel
	DBLogLevel         logger.LogLevel
	RevalidationURL    string
	RevalidationSecret string
}

// loadDotEnv reads .env into the process environment without overriding
// variables that are already set.
func loadDotEnv() error {
	err := godotenv.Load()
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

func loadConfig() (*Config, error) {
	cfg := &Config{
		DatabaseURL:        getenv("DATABASE_URL", defaultDatabaseURL),
		Addr:               os.Getenv("ADDR"),
		RevalidationURL:    os.Getenv("NEXT_REVALIDATION_URL"),
		RevalidationSecret: os.Getenv("REVALIDATION_SECRET"),
	}
	if cfg.Addr == "" {
		cfg.Addr = ":" + getenv("PORT", "8081")
	}

	origins := splitList(os.Getenv("CORS_ORIGINS"))
	for _, key := range []string{"FRONTEND_URL", "FRONTEND_URL2"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			origins = append(origins, v)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cfg.AllowedOrigins = origins

	ttl, err := time.ParseDuration(getenv("CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("parsing CACHE_TTL: %w", err)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("CACHE_TTL must not be negative, got %s", ttl)
	}
	cfg.CacheTTL = ttl

	if err := cfg.setLogLevel(getenv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}

	dbLevel, err := parseDBLogLevel(getenv("DB_LOG_LEVEL", "warn"))
	if err != nil {
		return nil, err
	}
	cfg.DBLogLevel = dbLevel

	return cfg, nil
}

func (c *Config) setLogLevel(text string) error {
	lvl, err := zap.ParseAtomicLevel(text)
	if err != nil {
		return fmt.Errorf("parsing log level %q: %w", text, err)
	}
	c.LogLevel = lvl
	return nil
}

func parseDBLogLevel(text string) (logger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "silent":
		return logger.Silent, nil
	case "error":
		return logger.Error, nil
	case "warn", "warning":
		return logger.Warn, nil
	case "info":
		return logger.Info, nil
	}
	return 0, fmt.Errorf("unknown DB_LOG_LEVEL %q", text)
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
