package admin

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/rebind/pkg/id"
	"github.com/kart-io/rebind/pkg/response"
)

// HeaderXRequestID is the request ID header name.
const HeaderXRequestID = "X-Request-ID"

// RequestID returns a middleware that attaches a unique request ID to each
// request. An incoming X-Request-ID header is honored; otherwise a ULID is
// generated. The ID is stored in the gin context and echoed in the response
// header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderXRequestID)
		if requestID == "" {
			requestID = id.NewULID()
		}

		c.Set(response.ContextKeyRequestID, requestID)
		c.Header(HeaderXRequestID, requestID)
		c.Next()
	}
}

// Logger returns a middleware that logs each request with the global
// structured logger. Health probes are skipped.
func Logger() gin.HandlerFunc {
	skipPaths := map[string]bool{
		"/healthz": true,
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skipPaths[path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"remote_addr", c.ClientIP(),
			"latency_ms", latency.Milliseconds(),
		}
		if requestID := c.GetString(response.ContextKeyRequestID); requestID != "" {
			fields = append(fields, "request_id", requestID)
		}
		logger.Infow("HTTP request", fields...)
	}
}

// Recovery returns a middleware that recovers from handler panics and
// responds with a JSON error envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("Handler panic recovered",
					"panic", r,
					"path", c.Request.URL.Path,
					"request_id", c.GetString(response.ContextKeyRequestID))
				response.WriteInternal(c)
				c.Abort()
			}
		}()
		c.Next()
	}
}
