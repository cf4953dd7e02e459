package middleware

import (
	"log/slog"
	"time"

	"woolcrafts-backend/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger puts a request-scoped logger into the request context and logs
// one line per request once the handlers have run.
func RequestLogger(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		l := base.With("request_id", requestID)
		c.Request = c.Request.WithContext(logging.IntoContext(c.Request.Context(), l))

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if c.FullPath() == "" {
			attrs[3] = c.Request.URL.Path
		}

		// Handlers may have enriched the logger (e.g. with the user id).
		l = logging.FromContext(c.Request.Context())
		switch {
		case status >= 500:
			l.Error("request", attrs...)
		case status >= 400:
			l.Warn("request", attrs...)
		default:
			l.Info("request", attrs...)
		}
	}
}
