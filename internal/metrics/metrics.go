package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Webhook metrics
	WebhookDurationSeconds *prometheus.HistogramVec
	WebhookRequestsTotal   *prometheus.CounterVec
	DuplicateEventsTotal   prometheus.Counter

	// Dispatch metrics
	DispatchTotal           *prometheus.CounterVec
	DispatchDurationSeconds *prometheus.HistogramVec
	HandlerDurationSeconds  *prometheus.HistogramVec

	// VK API metrics
	SendTotal           *prometheus.CounterVec
	SendDurationSeconds prometheus.Histogram

	// Background job metrics
	JobDurationSeconds *prometheus.HistogramVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,

		WebhookDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vkbot_webhook_duration_seconds",
				Help:    "Time from receiving a callback to acknowledging it, by event type",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"event_type"},
		),

		WebhookRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vkbot_webhook_requests_total",
				Help: "Total number of callback requests by event type and status",
			},
			[]string{"event_type", "status"}, // status: ok, confirmed, duplicate, bad_request, forbidden
		),

		DuplicateEventsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "vkbot_duplicate_events_total",
				Help: "Total number of redelivered callbacks skipped by event_id",
			},
		),

		DispatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vkbot_dispatch_total",
				Help: "Total number of dispatched events by event type and outcome",
			},
			[]string{"event_type", "outcome"}, // outcome: confirmed, matched, no_match, ignored, error
		),

		DispatchDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vkbot_dispatch_duration_seconds",
				Help:    "Dispatch duration in seconds by event type",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"event_type"},
		),

		HandlerDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vkbot_handler_duration_seconds",
				Help:    "Handler execution time by handler name and status",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"handler", "status"}, // status: success, error
		),

		SendTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vkbot_send_total",
				Help: "Total number of messages.send calls by status",
			},
			[]string{"status"}, // status: success, api_error, error
		),

		SendDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vkbot_send_duration_seconds",
				Help:    "messages.send latency including retries",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}, // up to the API timeout
			},
		),

		JobDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vkbot_job_duration_seconds",
				Help:    "Background job duration by job and status",
				Buckets: []float64{0.001, 0.01, 0.1, 1, 5, 30},
			},
			[]string{"job", "status"},
		),
	}

	return m
}

// RecordWebhook records a webhook request
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordDuplicate records a callback skipped as a redelivery.
func (m *Metrics) RecordDuplicate() {
	m.DuplicateEventsTotal.Inc()
}

// RecordDispatch records the outcome of one dispatch.
func (m *Metrics) RecordDispatch(eventType, outcome string, duration float64) {
	m.DispatchTotal.WithLabelValues(eventType, outcome).Inc()
	m.DispatchDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordHandler records a handler invocation
func (m *Metrics) RecordHandler(handler, status string, duration float64) {
	m.HandlerDurationSeconds.WithLabelValues(handler, status).Observe(duration)
}

// RecordSend records a messages.send call
func (m *Metrics) RecordSend(status string, duration float64) {
	m.SendTotal.WithLabelValues(status).Inc()
	m.SendDurationSeconds.Observe(duration)
}

// RecordJob records a background job run
func (m *Metrics) RecordJob(job, status string, duration float64) {
	m.JobDurationSeconds.WithLabelValues(job, status).Observe(duration)
}

// RegisterLogDrops exposes the number of log records that never reached
// the remote sink. Calling it twice on the same registry panics.
func (m *Metrics) RegisterLogDrops(dropped func() uint64) {
	promauto.With(m.registry).NewCounterFunc(
		prometheus.CounterOpts{
			Name: "vkbot_log_records_dropped_total",
			Help: "Total number of log records dropped before remote shipping",
		},
		func() float64 { return float64(dropped()) },
	)
}
