package admin

import (
	"time"

	adminsvc "dwello-backend/internal/application/admin"
	"dwello-backend/internal/application/settings"
	"dwello-backend/internal/middleware"
	"dwello-backend/internal/pkg/request"
	"dwello-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers serves the admin surface that is not owned by an entity module:
// users, settings and the dashboard.
type Handlers struct {
	Service  *adminsvc.Service
	Settings *settings.Service
	// Now is overridable in tests.
	Now func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// GET /api/admin/users?role=&status=&page=&limit=
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	users, meta, err := h.Service.ListUsers(c.UserContext(), request.QueryValues(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, users, meta)
}

// GET /api/admin/users/:id
func (h *Handlers) GetUser(c *fiber.Ctx) error {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	u, err := h.Service.GetUser(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"user": u})
}

// PUT /api/admin/users/:id/status
func (h *Handlers) UpdateUserStatus(c *fiber.Ctx) error {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var b struct {
		Status string `json:"status"`
	}
	if err := request.Body(c, &b); err != nil {
		return response.FromError(c, err)
	}
	u, err := h.Service.UpdateUserStatus(c.UserContext(), middleware.GetActor(c), id, b.Status)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"user": u})
}

// PUT /api/admin/users/:id/role
func (h *Handlers) UpdateUserRole(c *fiber.Ctx) error {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var b struct {
		Role string `json:"role"`
	}
	if err := request.Body(c, &b); err != nil {
		return response.FromError(c, err)
	}
	u, err := h.Service.UpdateUserRole(c.UserContext(), middleware.GetActor(c), id, b.Role)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"user": u})
}

// DELETE /api/admin/users/:id
func (h *Handlers) DeleteUser(c *fiber.Ctx) error {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.DeleteUser(c.UserContext(), middleware.GetActor(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Message(c, "User deleted successfully")
}

// GET /api/admin/settings
func (h *Handlers) GetSettings(c *fiber.Ctx) error {
	out, err := h.Settings.Get(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, out)
}

// PUT /api/admin/settings with { system: {...}, security: {...} }
func (h *Handlers) UpdateSettings(c *fiber.Ctx) error {
	var in settings.Settings
	if err := request.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Settings.Update(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"message": "Settings updated successfully", "settings": out})
}

// GET /api/admin/dashboard
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	out, err := h.Service.Dashboard(c.UserContext(), h.now())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, out)
}
