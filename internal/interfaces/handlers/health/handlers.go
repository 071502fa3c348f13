package health

import (
	"time"

	healthsvc "dwello-backend/internal/application/health"
	"dwello-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const serviceName = "dwello-api"

// Handlers holds dependencies for health endpoints.
type Handlers struct {
	Service *healthsvc.Service
}

// Banner answers GET / with a plain-text liveness line.
func (h *Handlers) Banner(c *fiber.Ctx) error {
	return c.SendString("Dwello API is running")
}

// Live answers GET /health without touching any dependency.
func (h *Handlers) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "OK", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

// JSON returns dependency status, runtime information and traffic counters.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	result := h.Service.Collect(c.UserContext())
	return c.JSON(fiber.Map{
		"service":      serviceName,
		"status":       result.Status,
		"runtime":      result.Runtime,
		"traffic":      result.Traffic,
		"dependencies": result.Dependencies,
	})
}

// Errors returns the latest 5xx entries recorded by the health marker.
func (h *Handlers) Errors(c *fiber.Ctx) error {
	entries, err := h.Service.Errors(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return c.JSON(entries)
}

// Reset clears the traffic counters. Requires ?key= matching the configured hash.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	if err := h.Service.Reset(c.UserContext(), c.Query("key")); err != nil {
		return response.FromError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Stats reset successfully"})
}
