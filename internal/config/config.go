// Package config handles loading and validation of application configuration
// from environment variables. Supports .env files via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Dictionary sources
const (
	DictionaryFromFile     = "file"
	DictionaryFromPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port        int
	Environment string // "development" | "staging" | "production"

	// Database. Empty selects the in-memory store outside production.
	DatabaseURL string

	// Security. An empty JWTSecret disables bearer auth.
	JWTSecret      string
	AllowedOrigins []string
	RateLimitRPM   int

	// Redis (for rate limiting & dictionary caching)
	RedisURL string

	// Dictionary
	DictionaryFile     string
	DictionarySource   string
	DictionaryCacheTTL time.Duration

	// Statistics
	UrgentLevels []string

	// Merkle tree
	IntegrityRebuildInterval time.Duration

	// Tracing. Empty disables the exporter.
	OTLPEndpoint string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"),
		RateLimitRPM:   getEnvInt("RATE_LIMIT_RPM", 120),

		RedisURL: getEnv("REDIS_URL", ""),

		DictionaryFile:     getEnv("DICTIONARY_FILE", "config/dictionary.yaml"),
		DictionarySource:   getEnv("DICTIONARY_SOURCE", DictionaryFromFile),
		DictionaryCacheTTL: time.Duration(getEnvInt("DICTIONARY_CACHE_TTL", 10)) * time.Minute,

		UrgentLevels: getEnvList("URGENT_LEVELS", "urgent"),

		IntegrityRebuildInterval: time.Duration(getEnvInt("INTEGRITY_REBUILD_INTERVAL", 5)) * time.Minute,

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DictionarySource != DictionaryFromFile && cfg.DictionarySource != DictionaryFromPostgres {
		return nil, fmt.Errorf("DICTIONARY_SOURCE must be %q or %q", DictionaryFromFile, DictionaryFromPostgres)
	}
	if cfg.DictionarySource == DictionaryFromPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DICTIONARY_SOURCE=postgres requires DATABASE_URL")
	}
	if cfg.IntegrityRebuildInterval <= 0 {
		return nil, fmt.Errorf("INTEGRITY_REBUILD_INTERVAL must be positive")
	}

	// Validate required fields in production
	if cfg.IsProduction() {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required in production")
		}
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	return cfg, nil
}

// IsProduction reports whether the server runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment reports whether the server runs in development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, fallback), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
