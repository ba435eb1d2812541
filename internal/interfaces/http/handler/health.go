package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/estate/listings/internal/infrastructure/logger"
)

// Pinger is anything the health check can reach
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the listing store answers
type HealthHandler struct {
	store     Pinger
	timeout   time.Duration
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(store Pinger, version string) *HealthHandler {
	return &HealthHandler{
		store:     store,
		timeout:   2 * time.Second,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse is the /health body
type HealthResponse struct {
	Status  string `json:"status"`
	Store   string `json:"store"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Health answers 200 when the store is reachable and 503 otherwise
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:  "healthy",
		Store:   "ok",
		Version: h.version,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	}
	status := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Store = "unreachable"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
