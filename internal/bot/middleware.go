package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	domerrors "github.com/garyellow/vkbot-go/internal/errors"
	"github.com/garyellow/vkbot-go/internal/logger"
	"github.com/garyellow/vkbot-go/internal/metrics"
)

// Middleware wraps handler execution. name is the registration name.
type Middleware func(name string, next HandlerFunc) HandlerFunc

// chain applies middlewares so that the first one is outermost.
func chain(name string, h HandlerFunc, mws ...Middleware) HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](name, h)
	}
	return h
}

// LoggingMiddleware logs handler execution with timing and result info.
func LoggingMiddleware(log *logger.Logger) Middleware {
	return func(name string, next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, c *Context) (*Reply, error) {
			start := time.Now()

			log.WithField("handler", name).
				WithField("event", c.Event().String()).
				WithField("text_length", len(c.Text())).
				DebugContext(ctx, "Handler started")

			reply, err := next(ctx, c)

			entry := log.WithField("handler", name).
				WithField("duration_ms", time.Since(start).Milliseconds()).
				WithField("has_reply", !reply.IsEmpty())
			if err != nil {
				entry.WithError(err).WarnContext(ctx, "Handler failed")
			} else {
				entry.DebugContext(ctx, "Handler completed")
			}

			return reply, err
		}
	}
}

// MetricsMiddleware records handler execution metrics.
func MetricsMiddleware(m *metrics.Metrics) Middleware {
	return func(name string, next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, c *Context) (*Reply, error) {
			start := time.Now()

			reply, err := next(ctx, c)

			status := "success"
			if err != nil {
				status = "error"
			}
			if m != nil {
				m.RecordHandler(name, status, time.Since(start).Seconds())
			}

			return reply, err
		}
	}
}

// RecoveryMiddleware converts handler panics into errors wrapping
// errors.ErrHandlerPanic so one bad handler cannot take down the process.
func RecoveryMiddleware(log *logger.Logger) Middleware {
	return func(name string, next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, c *Context) (reply *Reply, err error) {
			defer func() {
				if r := recover(); r != nil {
					log.WithField("handler", name).
						WithField("panic", r).
						WithField("stack", string(debug.Stack())).
						ErrorContext(ctx, "Handler panicked")
					reply = nil
					err = fmt.Errorf("%w: %v", domerrors.ErrHandlerPanic, r)
				}
			}()

			return next(ctx, c)
		}
	}
}
