// Package logger provides structured logging utilities for the application.
package logger

import (
	"context"
	"log/slog"

	"github.com/garyellow/vkbot-go/internal/ctxutil"
)

// ContextHandler is a slog.Handler that copies tracing values (peer id,
// author id, event id, request id) from the context onto each record.
// It wraps another handler so call sites do not have to pass them by hand.
type ContextHandler struct {
	handler slog.Handler
}

// NewContextHandler creates a new ContextHandler that wraps the provided handler.
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// This delegates to the wrapped handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle adds context values as attributes before delegating to the wrapped handler.
//
// Context values extracted:
// - peer_id: VK conversation id
// - from_id: message author id (negative for communities)
// - event_id: callback event_id
// - request_id: HTTP request id for log correlation
//
// Canceling the context does not affect record processing (per slog.Handler contract).
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if peerID, ok := ctxutil.GetPeerID(ctx); ok {
		r.AddAttrs(slog.Int64("peer_id", peerID))
	}

	if fromID, ok := ctxutil.GetFromID(ctx); ok {
		r.AddAttrs(slog.Int64("from_id", fromID))
	}

	if eventID := ctxutil.GetEventID(ctx); eventID != "" {
		r.AddAttrs(slog.String("event_id", eventID))
	}

	if requestID, ok := ctxutil.GetRequestID(ctx); ok && requestID != "" {
		r.AddAttrs(slog.String("request_id", requestID))
	}

	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new ContextHandler whose attributes consist of
// both the receiver's attributes and the arguments.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new ContextHandler with the given group name prepended
// to the current group name.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}
