package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"

	"github.com/SINTEF/entities-service/pkg/logger"
)

// RequestIDKey is the header carrying the request id
const RequestIDKey = "X-Request-ID"

// Logger tags every request with an id and logs its outcome. Probes are not logged.
// Handlers reach the request logger through logger.FromContext.
func Logger(base *slog.Logger) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		path := string(c.Path())

		requestID := string(c.Request.Header.Peek(RequestIDKey))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Response.Header.Set(RequestIDKey, requestID)

		reqLogger := logger.WithRequestID(base, requestID).With(
			"method", string(c.Method()),
			"path", path,
		)
		ctx = logger.WithContext(ctx, reqLogger)

		c.Next(ctx)

		if isProbe(path) {
			return
		}

		latency := time.Since(start)
		status := c.Response.StatusCode()
		attrs := []any{
			"status", status,
			"client_ip", c.ClientIP(),
			"latency_ms", latency.Milliseconds(),
		}

		switch {
		case status >= 500:
			reqLogger.ErrorContext(ctx, "request failed", attrs...)
		case status >= 400:
			reqLogger.WarnContext(ctx, "request rejected", attrs...)
		default:
			reqLogger.InfoContext(ctx, "request completed", attrs...)
		}
	}
}

// GetRequestID returns the id assigned by Logger
func GetRequestID(c *app.RequestContext) string {
	return string(c.Response.Header.Peek(RequestIDKey))
}

func isProbe(path string) bool {
	return path == "/ping" || path == "/health/live" || path == "/health/ready"
}
