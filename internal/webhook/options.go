package webhook

import (
	"time"

	"github.com/garyellow/vkbot-go/internal/metrics"
)

// HandlerOption is a functional option for configuring Handler.
type HandlerOption func(*Handler)

// WithTimeout bounds background dispatch plus delivery of one callback.
func WithTimeout(timeout time.Duration) HandlerOption {
	return func(h *Handler) {
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

// WithEventStore enables event_id de-duplication.
func WithEventStore(store EventStore) HandlerOption {
	return func(h *Handler) {
		h.store = store
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithMaxBodyBytes limits the callback body size.
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}
