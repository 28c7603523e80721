package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Parser    ParserConfig
	Transform TransformConfig
	Storage   StorageConfig
	LogLevel  string
}

type ParserConfig struct {
	MinAmount          decimal.Decimal
	IncludeZeroAmounts bool
}

type TransformConfig struct {
	ContinueOnError  bool
	MaxErrors        int
	IncludeDebugInfo bool
	ValidationMode   string
}

type StorageConfig struct {
	Dir string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Parser: ParserConfig{
			MinAmount:          getEnvAsDecimal("LEDGERBRIDGE_MIN_AMOUNT", "0.01"),
			IncludeZeroAmounts: getEnvAsBool("LEDGERBRIDGE_INCLUDE_ZERO", false),
		},
		Transform: TransformConfig{
			ContinueOnError:  getEnvAsBool("LEDGERBRIDGE_CONTINUE_ON_ERROR", true),
			MaxErrors:        getEnvAsInt("LEDGERBRIDGE_MAX_ERRORS", 100),
			IncludeDebugInfo: getEnvAsBool("LEDGERBRIDGE_DEBUG_INFO", false),
			ValidationMode:   getEnv("LEDGERBRIDGE_VALIDATION_MODE", "lenient"),
		},
		Storage: StorageConfig{
			Dir: getEnv("LEDGERBRIDGE_STORAGE_DIR", "./artifacts"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.Transform.ValidationMode != "lenient" && cfg.Transform.ValidationMode != "strict" {
		return nil, fmt.Errorf("LEDGERBRIDGE_VALIDATION_MODE must be lenient or strict, got %q", cfg.Transform.ValidationMode)
	}
	if cfg.Transform.MaxErrors <= 0 {
		return nil, fmt.Errorf("LEDGERBRIDGE_MAX_ERRORS must be positive, got %d", cfg.Transform.MaxErrors)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDecimal(key, defaultValue string) decimal.Decimal {
	if value, err := decimal.NewFromString(os.Getenv(key)); err == nil {
		return value
	}
	return decimal.RequireFromString(defaultValue)
}
