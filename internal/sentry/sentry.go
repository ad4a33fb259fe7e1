// Package sentry reports handler failures and panics to Better Stack error
// tracking through the Sentry Go SDK.
package sentry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/garyellow/vkbot-go/internal/ctxutil"
	apperrors "github.com/garyellow/vkbot-go/internal/errors"
)

// Config holds Sentry configuration for Better Stack integration.
type Config struct {
	// Token is the Better Stack Errors application token.
	Token string

	// Host is the Better Stack Errors ingesting host (e.g., "errors.betterstack.com").
	Host string

	Environment string
	Release     string

	// SampleRate controls error sampling (0.0-1.0, default 1.0).
	SampleRate float64

	Debug bool
}

// DSN builds the Sentry DSN Better Stack expects: https://$TOKEN@$HOST/1.
// The project id is required by the SDK and ignored by Better Stack.
func (c Config) DSN() string {
	return fmt.Sprintf("https://%s@%s/1", c.Token, c.Host)
}

// Initialize sets up the Sentry SDK.
// If Token is empty, Sentry is disabled and nil is returned.
func Initialize(cfg Config) error {
	if cfg.Token == "" {
		return nil
	}
	if cfg.Host == "" {
		return fmt.Errorf("sentry host is required when token is provided")
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN(),
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       sampleRate,
		Debug:            cfg.Debug,
		AttachStacktrace: true,
		BeforeSend:       beforeSend,
	})
}

// beforeSend drops rejected callbacks. Those are caused by the caller and
// are already visible in the webhook metrics.
func beforeSend(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if hint != nil && hint.OriginalException != nil && !Reportable(hint.OriginalException) {
		return nil
	}
	return event
}

// Reportable reports whether err should reach error tracking.
func Reportable(err error) bool {
	if err == nil {
		return false
	}
	return !apperrors.IsClassification(err) && !apperrors.IsAuthentication(err)
}

// Flush waits for buffered events to be sent to the server.
// Returns true if all events were sent within the timeout.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// IsEnabled returns true if Sentry is initialized and active.
func IsEnabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// CaptureException captures an error and sends it to Sentry.
func CaptureException(err error) {
	sentry.CaptureException(err)
}

// CaptureExceptionWithContext captures an error using the hub bound to ctx
// and tags it with the tracing values the context carries.
func CaptureExceptionWithContext(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(Tags(ctx, err))
		hub.CaptureException(err)
	})
}

// Tags collects the Sentry tags for err raised while serving ctx.
func Tags(ctx context.Context, err error) map[string]string {
	tags := make(map[string]string)
	if id := ctxutil.GetEventID(ctx); id != "" {
		tags["event_id"] = id
	}
	if peerID, ok := ctxutil.GetPeerID(ctx); ok {
		tags["peer_id"] = strconv.FormatInt(peerID, 10)
	}
	if reqID, ok := ctxutil.GetRequestID(ctx); ok && reqID != "" {
		tags["request_id"] = reqID
	}
	var herr *apperrors.HandlerError
	if errors.As(err, &herr) {
		tags["handler"] = herr.Handler
		tags["event_type"] = herr.Event
	}
	if errors.Is(err, apperrors.ErrHandlerPanic) {
		tags["panic"] = "true"
	}
	return tags
}

// CaptureMessage captures a message and sends it to Sentry.
func CaptureMessage(message string) {
	sentry.CaptureMessage(message)
}
