package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string

	// Database
	DatabaseURL string

	// Redis (cache, job status, event broadcast)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Cache TTLs per view class
	ListTTL    time.Duration
	ItemTTL    time.Duration
	PyramidTTL time.Duration

	// Bulk import
	ImportBatchSize int

	// CORS
	CORSOrigins string // Comma-separated allowed origins
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:             getEnv("ENV", "development"),
		ServerAddr:      getEnv("SERVER_ADDR", ":3000"),
		DatabaseURL:     getEnv("DATABASE_URL", "postgres://localhost:5432/keywordpyramid?sslmode=disable"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		ListTTL:         getEnvDuration("CACHE_LIST_TTL", 5*time.Minute),
		ItemTTL:         getEnvDuration("CACHE_ITEM_TTL", 30*time.Minute),
		PyramidTTL:      getEnvDuration("CACHE_PYRAMID_TTL", time.Hour),
		ImportBatchSize: getEnvInt("IMPORT_BATCH_SIZE", 100),
		CORSOrigins:     getEnv("CORS_ORIGINS", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}
