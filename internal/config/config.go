package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	Port    string
	GinMode string

	LogLevel  slog.Level
	LogFormat string

	QuestionStore string
	RedisURL      string
	DatabaseURL   string

	// пустой секрет отключает защиту изменения вопросов
	AdminJWTSecret string
	AdminTokenTTL  time.Duration

	TurnTimer      bool
	SendBuffer     int
	AllowedOrigins []string

	ShutdownTimeout time.Duration
}

// LoadEnvFiles подгружает .env.local, затем .env. Отсутствие файлов не ошибка.
func LoadEnvFiles() {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			slog.Debug(".env not found, using environment variables")
		}
	}
}

// Load читает конфигурацию из окружения
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "release"),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "text")),
		QuestionStore:  strings.ToLower(getEnv("QUESTION_STORE", StoreMemory)),
		RedisURL:       os.Getenv("REDIS_URL"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	var err error
	if cfg.TurnTimer, err = strconv.ParseBool(getEnv("TURN_TIMER", "false")); err != nil {
		return nil, fmt.Errorf("TURN_TIMER: %w", err)
	}
	if cfg.SendBuffer, err = strconv.Atoi(getEnv("SEND_BUFFER", "256")); err != nil || cfg.SendBuffer <= 0 {
		return nil, fmt.Errorf("SEND_BUFFER must be a positive integer")
	}
	if cfg.AdminTokenTTL, err = time.ParseDuration(getEnv("ADMIN_TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("ADMIN_TOKEN_TTL: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}

	switch c.QuestionStore {
	case StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for QUESTION_STORE=redis")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for QUESTION_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown QUESTION_STORE %q", c.QuestionStore)
	}
	return nil
}

// Addr адрес для http.Server
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
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
