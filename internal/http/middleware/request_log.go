package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trainforge/trainforge-backend/internal/platform/ctxutil"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

// RequestLogger emits one structured line per request once the handler chain
// finishes. The level tracks the response class: 5xx error, 4xx warn,
// everything else info.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}

		status := c.Writer.Status()
		fields := requestFields(c, status, time.Since(start))
		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func requestFields(c *gin.Context, status int, took time.Duration) []interface{} {
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	fields := []interface{}{
		"method", strings.ToUpper(c.Request.Method),
		"path", path,
		"status", status,
		"duration_ms", took.Milliseconds(),
	}
	if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
		if td.TraceID != "" {
			fields = append(fields, "trace_id", td.TraceID)
		}
		if td.RequestID != "" {
			fields = append(fields, "request_id", td.RequestID)
		}
	}
	if tnt := ctxutil.GetTenantData(c.Request.Context()); tnt != nil && tnt.TenantID != "" {
		fields = append(fields, "tenant_id", tnt.TenantID)
	}
	return fields
}
