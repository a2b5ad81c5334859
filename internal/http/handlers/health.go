package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	service string
	version string
	started time.Time
	ready   func(ctx context.Context) error
}

func NewHealthHandler(service, version string, ready func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{
		service: service,
		version: version,
		started: time.Now(),
		ready:   ready,
	}
}

// HealthCheck is the liveness probe: process up, nothing downstream checked.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  h.service,
		"version":  h.version,
		"uptime_s": int64(time.Since(h.started).Seconds()),
	})
}

// Readiness reports 503 while the database is unreachable so load balancers
// stop routing before requests start failing.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.ready != nil {
		if err := h.ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
