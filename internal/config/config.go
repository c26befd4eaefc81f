// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/zapponejosh/igbo-calendar-api/internal/calendar"
)

// Config holds all application configuration.
// Fields are populated from environment variables.
type Config struct {
	// Server settings
	Port int    // HTTP port to listen on
	Env  string // development, staging, production

	// Database
	DatabasePath string // Path to SQLite file

	// Authentication
	APIKey string // API key for admin endpoints

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text

	// Calendar
	LeapAnchorYear   int    // Igbo year index that starts the leap cycle
	LeapCycle        int    // Years between leap corrections
	NewMoonWindow    int    // Days searched either side of the approximate start
	DefaultMarketDay string // Market day of the first day of a year
	SeedDate         string // Default approximate start as MM-DD
	LabelsPath       string // Optional YAML label registry
	CacheEnabled     bool   // Persist built years in the database
}

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// MaxNewMoonWindow bounds the alignment search.
const MaxNewMoonWindow = 15

// Load reads configuration from environment variables.
// In development, it first loads from .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	// This is a no-op in production where env vars are set directly
	_ = godotenv.Load()

	cfg := &Config{}

	// Server settings
	cfg.Port = getEnvInt("PORT", 8080)
	cfg.Env = getEnv("ENV", EnvDevelopment)

	// Database
	cfg.DatabasePath = getEnv("DATABASE_PATH", "./data/igbo-calendar.db")

	// Authentication
	cfg.APIKey = getEnv("API_KEY", "")

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "text")

	// Calendar
	cfg.LeapAnchorYear = getEnvInt("IGBO_LEAP_ANCHOR_YEAR", calendar.DefaultLeapAnchorYear)
	cfg.LeapCycle = getEnvInt("IGBO_LEAP_CYCLE", calendar.DefaultLeapCycle)
	cfg.NewMoonWindow = getEnvInt("IGBO_NEW_MOON_WINDOW", calendar.DefaultNewMoonWindow)
	cfg.DefaultMarketDay = getEnv("IGBO_MARKET_ANCHOR", calendar.DefaultMarketAnchor)
	cfg.SeedDate = getEnv("IGBO_SEED_DATE", "02-01")
	cfg.LabelsPath = getEnv("IGBO_LABELS_FILE", "")
	cfg.CacheEnabled = getEnvBool("IGBO_CACHE_ENABLED", true)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []error

	// Validate port range
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	// Validate environment
	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// Valid
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of: development, staging, production; got %q", c.Env))
	}

	// Validate database path is set
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("DATABASE_PATH is required"))
	}

	// API key is required in production
	if c.Env == EnvProduction && c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required in production"))
	}

	// Validate log level
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", c.LogLevel))
	}

	// Validate log format
	switch c.LogFormat {
	case "json", "text":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of: json, text; got %q", c.LogFormat))
	}

	if c.LeapCycle < 1 {
		errs = append(errs, fmt.Errorf("IGBO_LEAP_CYCLE must be at least 1, got %d", c.LeapCycle))
	}

	if c.NewMoonWindow < 0 || c.NewMoonWindow > MaxNewMoonWindow {
		errs = append(errs, fmt.Errorf("IGBO_NEW_MOON_WINDOW must be between 0 and %d, got %d", MaxNewMoonWindow, c.NewMoonWindow))
	}

	if strings.TrimSpace(c.DefaultMarketDay) == "" {
		errs = append(errs, errors.New("IGBO_MARKET_ANCHOR is required"))
	}

	if _, _, err := c.SeedMonthDay(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// SeedMonthDay parses SeedDate into a month and day.
// February 29 is rejected because it does not exist every year.
func (c *Config) SeedMonthDay() (time.Month, int, error) {
	t, err := time.Parse("01-02", c.SeedDate)
	if err != nil {
		return 0, 0, fmt.Errorf("IGBO_SEED_DATE must be MM-DD, got %q", c.SeedDate)
	}
	if t.Month() == time.February && t.Day() == 29 {
		return 0, 0, errors.New("IGBO_SEED_DATE cannot be 02-29")
	}
	return t.Month(), t.Day(), nil
}

// LeapRule returns the configured leap correction rule.
func (c *Config) LeapRule() calendar.LeapRule {
	return calendar.LeapRule{
		AnchorYear: c.LeapAnchorYear,
		Cycle:      c.LeapCycle,
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// getEnv reads an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool reads an environment variable as a boolean with a default fallback.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
