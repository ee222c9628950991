package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/dynamicfusion/expense-portal/internal/core/ports"
)

const readinessTimeout = 3 * time.Second

// HealthHandler exposes liveness and readiness probes. Liveness is
// unconditional; readiness checks the two dependencies the portal cannot
// work without.
type HealthHandler struct {
	backend ports.BackendClient
	redis   *redis.Client
}

func NewHealthHandler(backend ports.BackendClient, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{backend: backend, redis: rdb}
}

// Live reports the process is up.
func (h *HealthHandler) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the backend API and the token store are reachable.
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	checks := map[string]string{"backend": "ok", "redis": "ok"}
	healthy := true

	if err := h.backend.Health(ctx); err != nil {
		checks["backend"] = err.Error()
		healthy = false
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, checks)
}
