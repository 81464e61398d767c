package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports service liveness and dependency health.
type HealthHandler struct {
	pool    *pgxpool.Pool
	redis   *redis.Client
	version string
	started time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client, version string) *HealthHandler {
	return &HealthHandler{
		pool:    pool,
		redis:   rdb,
		version: version,
		started: time.Now(),
	}
}

// HealthStatus is the detailed health response body.
type HealthStatus struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	UptimeSecs int64             `json:"uptimeSeconds"`
	Components map[string]string `json:"components"`
}

// LivenessCheck godoc
// @Summary Liveness probe
// @Tags health
// @Success 200 {object} map[string]string
// @Router /health/liveness [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "up"})
}

// DetailedHealth godoc
// @Summary Detailed health including dependencies
// @Tags health
// @Success 200 {object} HealthStatus
// @Failure 503 {object} HealthStatus
// @Router /health [get]
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:     "up",
		Version:    h.version,
		UptimeSecs: int64(time.Since(h.started).Seconds()),
		Components: map[string]string{},
	}

	if h.pool != nil {
		if err := h.pool.Ping(ctx); err != nil {
			status.Components["database"] = "down"
			status.Status = "degraded"
		} else {
			status.Components["database"] = "up"
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			status.Components["redis"] = "down"
			status.Status = "degraded"
		} else {
			status.Components["redis"] = "up"
		}
	}

	code := http.StatusOK
	if status.Status != "up" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
