// Package config loads the server configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"renodevis/internal/core/types"
	"renodevis/internal/domain/pricing"
)

const insecureJWTSecret = "change-me-in-production"

// Config holds all application configuration values.
type Config struct {
	Env      string
	HTTPAddr string
	LogLevel string

	DatabaseURL string
	RedisURL    string

	JWTSecret   string
	JWTTokenTTL time.Duration

	TariffsFile     string
	CatalogCacheTTL time.Duration

	CORSOrigins []string

	DefaultVATRate    types.Money
	QuoteValidityDays int

	IdempotencyTTL time.Duration

	ShutdownTimeout time.Duration
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// IsDevelopment reports whether APP_ENV is development.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the configuration from the process environment and
// validates it.
func FromEnv() (*Config, error) {
	var errs []error

	vat, err := types.NewMoneyFromString(getEnv("DEFAULT_VAT_RATE", pricing.DefaultVATRate.String()))
	if err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_VAT_RATE: %w", err))
	} else if err := pricing.ValidateVATRate(vat); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_VAT_RATE: %w", err))
	}

	cfg := &Config{
		Env:               getEnv("APP_ENV", "development"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTTokenTTL:       parseDuration("JWT_TOKEN_TTL", getEnv("JWT_TOKEN_TTL", "168h"), &errs),
		TariffsFile:       getEnv("TARIFFS_FILE", ""),
		CatalogCacheTTL:   parseDuration("CATALOG_CACHE_TTL", getEnv("CATALOG_CACHE_TTL", "5m"), &errs),
		CORSOrigins:       splitCSV(getEnv("CORS_ORIGINS", "*")),
		DefaultVATRate:    vat,
		QuoteValidityDays: parseInt("QUOTE_VALIDITY_DAYS", getEnv("QUOTE_VALIDITY_DAYS", "30"), &errs),
		IdempotencyTTL:    parseDuration("IDEMPOTENCY_TTL", getEnv("IDEMPOTENCY_TTL", "24h"), &errs),
		ShutdownTimeout:   parseDuration("SHUTDOWN_TIMEOUT", getEnv("SHUTDOWN_TIMEOUT", "30s"), &errs),
	}

	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		}
		cfg.JWTSecret = insecureJWTSecret
	}
	if cfg.QuoteValidityDays <= 0 {
		errs = append(errs, fmt.Errorf("QUOTE_VALIDITY_DAYS must be positive, got %d", cfg.QuoteValidityDays))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && strings.TrimSpace(val) != "" {
		return strings.TrimSpace(val)
	}
	return fallback
}

func parseDuration(key, value string, errs *[]error) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return 0
	}
	return d
}

func parseInt(key, value string, errs *[]error) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return 0
	}
	return n
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}
