package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Version is reported by the health endpoints
var Version = "1.0.0"

// HealthCheck reports whether one dependency is usable
type HealthCheck func(ctx context.Context) error

// HealthHandler handles liveness and readiness probes
type HealthHandler struct {
	checks map[string]HealthCheck
	logger *logrus.Logger
}

// NewHealthHandler creates a new health handler. Every check must pass for
// the service to be ready.
func NewHealthHandler(checks map[string]HealthCheck, logger *logrus.Logger) *HealthHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &HealthHandler{checks: checks, logger: logger}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Services  map[string]ServiceInfo `json:"services,omitempty"`
}

// ServiceInfo represents information about a service component
type ServiceInfo struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health is the liveness probe
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: nowUTC(),
		Version:   Version,
	})
}

// Ready runs every dependency check
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "ready",
		Timestamp: nowUTC(),
		Version:   Version,
		Services:  make(map[string]ServiceInfo, len(h.checks)),
	}
	status := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.WithError(err).WithField("dependency", name).Warn("Readiness check failed")
			response.Services[name] = ServiceInfo{Status: "unhealthy", Message: err.Error()}
			response.Status = "not_ready"
			status = http.StatusServiceUnavailable
			continue
		}
		response.Services[name] = ServiceInfo{Status: "healthy"}
	}
	c.JSON(status, response)
}
