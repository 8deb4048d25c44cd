package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck verifica una dependencia (BD, Redis).
type HealthCheck func(ctx context.Context) error

// HealthHandler GET /api/health.
type HealthHandler struct {
	checks map[string]HealthCheck
}

// NewHealthHandler construye el handler con checks nombrados (puede ser vacío).
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health godoc
// @Summary      Estado del servicio y sus dependencias
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	out := fiber.Map{"status": "ok"}
	status := fiber.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			out[name] = err.Error()
			out["status"] = "degraded"
			status = fiber.StatusServiceUnavailable
			continue
		}
		out[name] = "ok"
	}
	return c.Status(status).JSON(out)
}
