package app

import (
	"time"

	"github.com/garyellow/vkbot-go/internal/ctxutil"
	"github.com/garyellow/vkbot-go/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id in requests and responses.
const RequestIDHeader = "X-Request-Id"

// requestIDMiddleware propagates an incoming correlation id or creates one,
// stores it in the request context and echoes it in the response.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = c.GetHeader("X-Correlation-Id")
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), requestID))
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Next()
	}
}

// loggingMiddleware logs HTTP requests with status-based log levels:
// 5xx=Error, 4xx=Warn (404 is Debug), everything else Debug.
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		entry := log.WithField("http_method", method).
			WithField("http_path", path).
			WithField("http_status", status).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("client_ip", c.ClientIP())

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			entry.ErrorContext(ctx, "HTTP request failed")
		case status >= 400 && status != 404:
			entry.WarnContext(ctx, "HTTP request rejected")
		default:
			entry.DebugContext(ctx, "HTTP request completed")
		}
	}
}
