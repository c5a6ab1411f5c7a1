package handlers

import (
	"context"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
)

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyResponse lists the dependencies that failed their readiness check.
type ReadyResponse struct {
	Status string   `json:"status"           example:"ready"`
	Failed []string `json:"failed,omitempty"`
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	deps map[string]Pinger
}

// NewHealthHandler creates a HealthHandler whose readiness depends on the
// account store and any extra named dependencies (e.g. the Redis token slot).
func NewHealthHandler(st Pinger, extra map[string]Pinger) *HealthHandler {
	deps := map[string]Pinger{"store": st}
	for name, p := range extra {
		deps[name] = p
	}
	return &HealthHandler{deps: deps}
}

// Healthz returns 200 if the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 when every dependency answers, 503 otherwise.
func (h *HealthHandler) Readyz(c echo.Context) error {
	var failed []string
	for name, p := range h.deps {
		if err := p.Ping(c.Request().Context()); err != nil {
			failed = append(failed, name)
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return c.JSON(http.StatusServiceUnavailable, ReadyResponse{Status: "unavailable", Failed: failed})
	}
	return c.JSON(http.StatusOK, ReadyResponse{Status: "ready"})
}

// RegisterHealthRoutes mounts the probes on e.
func RegisterHealthRoutes(e *echo.Echo, h *HealthHandler) {
	e.GET("/healthz", h.Healthz)
	e.GET("/readyz", h.Readyz)
}
