package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CheckFunc reports whether a dependency is reachable
type CheckFunc func(ctx context.Context) error

// HealthHandler reports service health and which features are configured
type HealthHandler struct {
	storage   string
	providers []string
	upgrade   bool
	checks    map[string]CheckFunc
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(storage string, providers []string, upgrade bool) *HealthHandler {
	return &HealthHandler{
		storage:   storage,
		providers: providers,
		upgrade:   upgrade,
		checks:    make(map[string]CheckFunc),
	}
}

// AddCheck registers a dependency check run on every health request.
func (h *HealthHandler) AddCheck(name string, fn CheckFunc) {
	h.checks[name] = fn
}

// Health reports unhealthy when any registered check fails
// @Summary Health check
// @Description Storage type, configured answer providers, upgrade availability and dependency status
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{} "Healthy"
// @Failure 503 {object} map[string]interface{} "A dependency is down"
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}

	providers := append(append([]string{}, h.providers...), "template")

	return c.JSON(status, map[string]any{
		"status":       state,
		"storage":      h.storage,
		"providers":    providers,
		"upgrade":      h.upgrade,
		"dependencies": deps,
	})
}
