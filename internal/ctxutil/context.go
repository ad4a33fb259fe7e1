// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	peerIDKey    contextKey = "ctxutil.peerID"
	fromIDKey    contextKey = "ctxutil.fromID"
	eventIDKey   contextKey = "ctxutil.eventID"
	requestIDKey contextKey = "ctxutil.requestID"
)

// WithPeerID adds the VK conversation id to the context.
func WithPeerID(ctx context.Context, peerID int64) context.Context {
	return context.WithValue(ctx, peerIDKey, peerID)
}

// GetPeerID retrieves the peer id from the context.
func GetPeerID(ctx context.Context) (int64, bool) {
	peerID, ok := ctx.Value(peerIDKey).(int64)
	return peerID, ok
}

// WithFromID adds the message author id to the context.
// Community authors have negative ids.
func WithFromID(ctx context.Context, fromID int64) context.Context {
	return context.WithValue(ctx, fromIDKey, fromID)
}

// GetFromID retrieves the author id from the context.
func GetFromID(ctx context.Context) (int64, bool) {
	fromID, ok := ctx.Value(fromIDKey).(int64)
	return fromID, ok
}

// WithEventID adds the callback event_id to the context.
func WithEventID(ctx context.Context, eventID string) context.Context {
	return context.WithValue(ctx, eventIDKey, eventID)
}

// GetEventID retrieves the event id from the context.
// Returns an empty string if not found.
func GetEventID(ctx context.Context) string {
	if v, ok := ctx.Value(eventIDKey).(string); ok {
		return v
	}
	return ""
}

// WithRequestID adds a request ID to the context for tracing.
// Request ID is typically generated per webhook request for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok
}

// MustGetRequestID retrieves the request ID from the context.
// Panics if the request ID is not found.
func MustGetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		panic("ctxutil: requestID not found")
	}
	return requestID
}

// PreserveTracing creates a detached context that preserves tracing values.
// The new context is independent of the parent's cancellation and deadlines.
//
// This function creates a fresh context.Background() and copies only tracing values,
// avoiding memory leaks from retaining parent context references (Go issue #64478).
//
// Use for callback dispatch that continues after the "ok" acknowledgement is sent.
func PreserveTracing(ctx context.Context) context.Context {
	newCtx := context.Background()

	if peerID, ok := GetPeerID(ctx); ok {
		newCtx = WithPeerID(newCtx, peerID)
	}
	if fromID, ok := GetFromID(ctx); ok {
		newCtx = WithFromID(newCtx, fromID)
	}
	if eventID := GetEventID(ctx); eventID != "" {
		newCtx = WithEventID(newCtx, eventID)
	}
	if requestID, ok := GetRequestID(ctx); ok && requestID != "" {
		newCtx = WithRequestID(newCtx, requestID)
	}

	return newCtx
}
