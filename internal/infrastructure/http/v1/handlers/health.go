// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"peopledesk/internal/listing"
)

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	service *listing.Service
	version string
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(service *listing.Service, version string) *HealthHandler {
	return &HealthHandler{service: service, version: version, started: time.Now()}
}

// Live handles the liveness probe.
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports ready once every screen has loaded at least once.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := make(map[string]string)
	ready := true
	for _, s := range h.service.Screens() {
		if h.service.LoadedAt(s.Name).IsZero() {
			checks[s.Name] = "not loaded"
			ready = false
			continue
		}
		checks[s.Name] = "loaded"
	}

	status, code := "ok", http.StatusOK
	if !ready {
		status, code = "loading", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "checks": checks})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	cfg := h.service.Config()
	c.JSON(http.StatusOK, gin.H{
		"app":     "peopledesk",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"screens": len(h.service.Screens()),
		"paging": gin.H{
			"defaultPageSize": cfg.DefaultPageSize,
			"maxPageSize":     cfg.MaxPageSize,
			"strict":          cfg.StrictPaging,
		},
	})
}
