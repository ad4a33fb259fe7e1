// Package webhook receives VK Callback API requests, acknowledges them and
// dispatches the events in the background.
package webhook

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyellow/vkbot-go/internal/bot"
	"github.com/garyellow/vkbot-go/internal/callback"
	"github.com/garyellow/vkbot-go/internal/config"
	"github.com/garyellow/vkbot-go/internal/ctxutil"
	domerrors "github.com/garyellow/vkbot-go/internal/errors"
	"github.com/garyellow/vkbot-go/internal/event"
	"github.com/garyellow/vkbot-go/internal/logger"
	"github.com/garyellow/vkbot-go/internal/metrics"
	"github.com/garyellow/vkbot-go/internal/sentry"
	"github.com/garyellow/vkbot-go/internal/vkapi"
)

// ackBody is the acknowledgement VK expects for every non-confirmation callback.
const ackBody = "ok"

const defaultMaxBodyBytes = 1 << 20

// Dispatcher classifies and routes callbacks.
type Dispatcher interface {
	Classify(p *callback.Payload) (*bot.Context, error)
	Dispatch(ctx context.Context, c *bot.Context) (*bot.Result, error)
}

// Sender delivers replies.
type Sender interface {
	SendMessage(ctx context.Context, reply *bot.Reply) (int64, error)
}

// EventStore remembers handled event ids.
type EventStore interface {
	MarkEvent(ctx context.Context, eventID string, groupID int64, eventType string) (bool, error)
}

// Handler handles VK callback requests
type Handler struct {
	dispatcher   Dispatcher
	sender       Sender
	store        EventStore // nil disables de-duplication
	metrics      *metrics.Metrics
	logger       *logger.Logger
	timeout      time.Duration
	maxBodyBytes int64
	wg           sync.WaitGroup // in-flight background dispatches
}

// NewHandler creates a new webhook handler.
func NewHandler(dispatcher Dispatcher, sender Sender, log *logger.Logger, opts ...HandlerOption) (*Handler, error) {
	if dispatcher == nil || sender == nil || log == nil {
		return nil, errors.New("webhook: dispatcher, sender and logger are required")
	}
	h := &Handler{
		dispatcher:   dispatcher,
		sender:       sender,
		logger:       log.WithModule("webhook"),
		timeout:      config.WebhookProcessing,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Register mounts the callback endpoint on path. Only POST is accepted.
func (h *Handler) Register(r gin.IRouter, path string) {
	r.POST(path, h.Handle)
	r.GET(path, func(c *gin.Context) {
		c.String(http.StatusMethodNotAllowed, "method not allowed")
	})
}

// Handle is the Gin handler for the callback endpoint
func (h *Handler) Handle(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	// 1. Parse request
	var p callback.Payload
	if err := c.ShouldBindJSON(&p); err != nil {
		h.logger.WithError(err).WarnContext(ctx, "Malformed callback body")
		h.record("unknown", "bad_request", start)
		c.String(http.StatusBadRequest, "bad request")
		return
	}
	label := eventLabel(p.Type)

	// 2. Authenticate and classify
	bc, err := h.dispatcher.Classify(&p)
	if err != nil {
		switch {
		case domerrors.IsAuthentication(err):
			h.logger.WithError(err).WithField("event_type", label).WarnContext(ctx, "Rejected callback")
			h.record(label, "forbidden", start)
			c.String(http.StatusForbidden, "forbidden")
		default:
			h.logger.WithError(err).WithField("event_type", label).WarnContext(ctx, "Unclassifiable callback")
			h.record(label, "bad_request", start)
			c.String(http.StatusBadRequest, "bad request")
		}
		return
	}

	// 3. Confirmation challenge is answered synchronously
	if bc.Event() == event.Confirmation {
		res, err := h.dispatcher.Dispatch(ctx, bc)
		if err != nil || res == nil {
			h.logger.WithError(err).ErrorContext(ctx, "Confirmation failed")
			h.record(label, "error", start)
			c.String(http.StatusInternalServerError, "error")
			return
		}
		h.logger.InfoContext(ctx, "Answered confirmation challenge")
		h.record(label, "confirmed", start)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(res.Confirmation))
		return
	}

	ctx = ctxutil.WithEventID(ctx, bc.EventID())

	// 4. Redelivered callbacks are acknowledged without dispatch
	if h.store != nil && bc.EventID() != "" {
		first, err := h.store.MarkEvent(ctx, bc.EventID(), bc.GroupID(), label)
		if err != nil {
			h.logger.WithError(err).ErrorContext(ctx, "Failed to record event id; dispatching anyway")
		} else if !first {
			h.logger.DebugContext(ctx, "Skipping redelivered callback")
			if h.metrics != nil {
				h.metrics.RecordDuplicate()
			}
			h.record(label, "duplicate", start)
			c.String(http.StatusOK, ackBody)
			return
		}
	}

	// 5. Acknowledge immediately, then dispatch in the background
	c.String(http.StatusOK, ackBody)
	h.record(label, "ok", start)

	processCtx := ctxutil.PreserveTracing(ctx)
	h.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				h.logger.WithField("panic", r).ErrorContext(processCtx, "Panic in async callback processing")
			}
		}()
		h.process(processCtx, bc)
	})
}

// process dispatches one classified callback and delivers its reply.
func (h *Handler) process(ctx context.Context, bc *bot.Context) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	res, err := h.dispatcher.Dispatch(ctx, bc)
	if err != nil {
		h.logger.WithError(err).WithField("event_type", bc.Event().String()).ErrorContext(ctx, "Handler failed")
		if sentry.Reportable(err) {
			sentry.CaptureExceptionWithContext(ctx, err)
		}
	}
	if res == nil || res.Reply == nil {
		return
	}

	if _, err := h.sender.SendMessage(ctx, res.Reply); err != nil {
		log := h.logger.WithError(err).WithField("handler", res.Handler)
		if vkapi.IsPermissionDenied(err) {
			log.WarnContext(ctx, "Peer does not accept messages")
			return
		}
		log.ErrorContext(ctx, "Failed to send reply")
		sentry.CaptureExceptionWithContext(ctx, err)
	}
}

func (h *Handler) record(eventType, status string, start time.Time) {
	if h.metrics != nil {
		h.metrics.RecordWebhook(eventType, status, time.Since(start).Seconds())
	}
}

// eventLabel keeps metric labels to the closed set of event tokens.
func eventLabel(token string) string {
	if e, err := event.Parse(token); err == nil {
		return e.String()
	}
	return "unknown"
}

// Shutdown waits for all async event processing to complete.
// It returns an error if the context is canceled before completion.
func (h *Handler) Shutdown(ctx context.Context) error {
	c := make(chan struct{})
	go func() {
		defer close(c)
		h.wg.Wait()
	}()

	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
