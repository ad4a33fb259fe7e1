// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Core (Required)
	EnvAccessToken       = "VKBOT_ACCESS_TOKEN"
	EnvConfirmationToken = "VKBOT_CONFIRMATION_TOKEN"
	EnvGroupID           = "VKBOT_GROUP_ID"
	EnvSecret            = "VKBOT_SECRET"

	// Server
	EnvPort            = "VKBOT_PORT"
	EnvLogLevel        = "VKBOT_LOG_LEVEL"
	EnvShutdownTimeout = "VKBOT_SHUTDOWN_TIMEOUT"

	// Dispatch
	EnvCommandPrefix  = "VKBOT_COMMAND_PREFIX"
	EnvWebhookTimeout = "VKBOT_WEBHOOK_TIMEOUT"

	// VK API
	EnvAPIBaseURL    = "VKBOT_API_BASE_URL"
	EnvAPIVersion    = "VKBOT_API_VERSION"
	EnvAPITimeout    = "VKBOT_API_TIMEOUT"
	EnvAPIMaxRetries = "VKBOT_API_MAX_RETRIES"

	// Data
	EnvDataDir              = "VKBOT_DATA_DIR"
	EnvDedupTTL             = "VKBOT_DEDUP_TTL"
	EnvDedupCleanupInterval = "VKBOT_DEDUP_CLEANUP_INTERVAL"

	// Sentry Feature
	EnvSentryToken       = "VKBOT_SENTRY_TOKEN"
	EnvSentryHost        = "VKBOT_SENTRY_HOST"
	EnvSentryEnvironment = "VKBOT_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "VKBOT_SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackToken    = "VKBOT_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "VKBOT_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsUsername = "VKBOT_METRICS_USERNAME"
	EnvMetricsPassword = "VKBOT_METRICS_PASSWORD"
)
