// Package config provides application configuration management.
// It loads settings from environment variables (optionally seeded from a
// .env file) and validates them before the server starts.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIBaseURL = "https://api.vk.com/method"
	defaultAPIVersion = "5.199"
)

// Config holds all application configuration
type Config struct {
	// VK community configuration
	AccessToken       string // Community access token with the messages scope
	ConfirmationToken string // String returned to the confirmation callback
	GroupID           int64  // Community id the callback server is bound to
	Secret            string // Callback secret (empty = not checked)

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Dispatch Configuration
	CommandPrefix  string        // Optional prefix stripped before exact/prefix matching (e.g. "/")
	WebhookTimeout time.Duration // Timeout for background dispatch + send (see config/timeouts.go)

	// VK API Configuration
	APIBaseURL    string
	APIVersion    string
	APITimeout    time.Duration
	APIMaxRetries int

	// Data Configuration
	DataDir              string        // Data directory for the SQLite database
	DedupTTL             time.Duration // How long a seen event_id is remembered
	DedupCleanupInterval time.Duration

	// Error tracking and log shipping (empty token = disabled)
	SentryToken         string
	SentryHost          string
	SentryEnvironment   string
	SentrySampleRate    float64
	BetterStackToken    string
	BetterStackEndpoint string
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		AccessToken:       getEnv(EnvAccessToken, ""),
		ConfirmationToken: getEnv(EnvConfirmationToken, ""),
		GroupID:           getInt64Env(EnvGroupID, 0),
		Secret:            getEnv(EnvSecret, ""),

		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),

		CommandPrefix:  getEnv(EnvCommandPrefix, ""),
		WebhookTimeout: getDurationEnv(EnvWebhookTimeout, WebhookProcessing),

		APIBaseURL:    getEnv(EnvAPIBaseURL, defaultAPIBaseURL),
		APIVersion:    getEnv(EnvAPIVersion, defaultAPIVersion),
		APITimeout:    getDurationEnv(EnvAPITimeout, VKAPIRequest),
		APIMaxRetries: getIntEnv(EnvAPIMaxRetries, 3),

		DataDir:              getEnv(EnvDataDir, getDefaultDataDir()),
		DedupTTL:             getDurationEnv(EnvDedupTTL, DedupTTL),
		DedupCleanupInterval: getDurationEnv(EnvDedupCleanupInterval, DedupCleanupInterval),

		SentryToken:         getEnv(EnvSentryToken, ""),
		SentryHost:          getEnv(EnvSentryHost, ""),
		SentryEnvironment:   getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:    getFloatEnv(EnvSentrySampleRate, 1.0),
		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.AccessToken == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvAccessToken))
	}
	if c.ConfirmationToken == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvConfirmationToken))
	}
	if c.GroupID <= 0 {
		errs = append(errs, fmt.Errorf("%s must be a positive community id, got %d", EnvGroupID, c.GroupID))
	}
	if c.Port == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvPort))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvShutdownTimeout, c.ShutdownTimeout))
	}
	if c.WebhookTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvWebhookTimeout, c.WebhookTimeout))
	}
	if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", EnvAPIBaseURL, c.APIBaseURL))
	}
	if c.APIVersion == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvAPIVersion))
	}
	if c.APITimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvAPITimeout, c.APITimeout))
	}
	if c.APIMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", EnvAPIMaxRetries, c.APIMaxRetries))
	}
	if c.DataDir == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvDataDir))
	}
	if c.DedupTTL <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvDedupTTL, c.DedupTTL))
	}
	if c.DedupCleanupInterval <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvDedupCleanupInterval, c.DedupCleanupInterval))
	}
	if c.SentryToken != "" && c.SentryHost == "" {
		errs = append(errs, fmt.Errorf("%s is required when %s is set", EnvSentryHost, EnvSentryToken))
	}
	if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
		errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", EnvSentrySampleRate, c.SentrySampleRate))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64Env retrieves int64 environment variable with fallback to default value
func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "vkbot.db")
}

// MetricsAuthEnabled reports whether /metrics requires Basic Auth.
func (c *Config) MetricsAuthEnabled() bool {
	return c.MetricsPassword != ""
}
