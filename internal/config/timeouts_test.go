package config

import (
	"testing"
	"time"
)

func TestWebhookTimeouts(t *testing.T) {
	tests := []struct {
		name     string
		got      time.Duration
		expected time.Duration
	}{
		{"WebhookProcessing", WebhookProcessing, 30 * time.Second},
		{"WebhookHTTPRead", WebhookHTTPRead, 10 * time.Second},
		{"WebhookHTTPWrite", WebhookHTTPWrite, 15 * time.Second},
		{"WebhookHTTPIdle", WebhookHTTPIdle, 120 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

// TestTimeoutRelationships verifies timeouts that depend on each other
func TestTimeoutRelationships(t *testing.T) {
	t.Run("API request fits in webhook processing", func(t *testing.T) {
		if VKAPIRequest >= WebhookProcessing {
			t.Errorf("VKAPIRequest (%v) should be less than WebhookProcessing (%v)", VKAPIRequest, WebhookProcessing)
		}
	})

	t.Run("retry backoff is bounded", func(t *testing.T) {
		if VKAPIRetryWait > VKAPIRetryMaxWait {
			t.Errorf("VKAPIRetryWait (%v) should not exceed VKAPIRetryMaxWait (%v)", VKAPIRetryWait, VKAPIRetryMaxWait)
		}
	})

	t.Run("cleanup runs within the dedup window", func(t *testing.T) {
		if DedupCleanupInterval >= DedupTTL {
			t.Errorf("DedupCleanupInterval (%v) should be less than DedupTTL (%v)", DedupCleanupInterval, DedupTTL)
		}
	})

	t.Run("shutdown waits for in-flight callbacks", func(t *testing.T) {
		if GracefulShutdown < WebhookProcessing {
			t.Errorf("GracefulShutdown (%v) should be at least WebhookProcessing (%v)", GracefulShutdown, WebhookProcessing)
		}
	})
}
