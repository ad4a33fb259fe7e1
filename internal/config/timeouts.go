// Package config provides centralized timeout constants for the application.
//
// # VK Callback API Constraints
//
// VK expects the literal "ok" quickly and redelivers a callback when it does
// not get one, so the webhook acknowledges first and processes afterwards.
// WebhookProcessing bounds that background work, which is dominated by the
// messages.send round trip including retries.
package config

import "time"

// Webhook timeouts
const (
	// WebhookProcessing is the timeout for dispatching one callback and
	// sending its reply.
	WebhookProcessing = 30 * time.Second

	// WebhookHTTPRead is the HTTP server read timeout for callback requests.
	// VK sends small JSON bodies.
	WebhookHTTPRead = 10 * time.Second

	// WebhookHTTPWrite is the HTTP server write timeout.
	WebhookHTTPWrite = 15 * time.Second

	// WebhookHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	WebhookHTTPIdle = 120 * time.Second
)

// VK API timeouts
const (
	// VKAPIRequest is the timeout for a single messages.send request.
	VKAPIRequest = 10 * time.Second

	// VKAPIRetryWait is the initial delay before retrying a failed request.
	VKAPIRetryWait = 500 * time.Millisecond

	// VKAPIRetryMaxWait caps the exponential backoff between retries.
	VKAPIRetryMaxWait = 5 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	DatabaseBusyTimeout = 5 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	DatabaseConnMaxLifetime = time.Hour
)

// Background job intervals
const (
	// DedupTTL is how long a seen event_id is remembered. VK gives up
	// redelivering well within this window.
	DedupTTL = 24 * time.Hour

	// DedupCleanupInterval is how often expired event ids are deleted.
	DedupCleanupInterval = time.Hour

	// DedupCleanupInitialDelay is the delay before the first cleanup.
	DedupCleanupInitialDelay = time.Minute
)

// Health checks
const (
	// ReadinessCheck bounds the database ping done by /readyz.
	ReadinessCheck = 2 * time.Second
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight callbacks to finish sending before termination.
	GracefulShutdown = 30 * time.Second
)
