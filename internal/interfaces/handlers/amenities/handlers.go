package amenities

import (
	amenitysvc "dwello-backend/internal/application/amenities"
	"dwello-backend/internal/pkg/request"
	"dwello-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *amenitysvc.Service
}

type body struct {
	Name     *string `json:"name"`
	Icon     *string `json:"icon"`
	Category *string `json:"category"`
}

func (b body) input() amenitysvc.Input {
	return amenitysvc.Input{Name: b.Name, Icon: b.Icon, Category: b.Category}
}

// GET /api/amenities
func (h *Handlers) List(c *fiber.Ctx) error {
	out, err := h.Service.List(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, out)
}

// POST /api/admin/amenities
func (h *Handlers) Create(c *fiber.Ctx) error {
	var b body
	if err := request.Body(c, &b); err != nil {
		return response.FromError(c, err)
	}
	a, err := h.Service.Create(c.UserContext(), b.input())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, a)
}

// PUT /api/admin/amenities/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := request.UintParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var b body
	if err := request.Body(c, &b); err != nil {
		return response.FromError(c, err)
	}
	a, err := h.Service.Update(c.UserContext(), id, b.input())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, a)
}

// DELETE /api/admin/amenities/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := request.UintParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Message(c, "Amenity deleted successfully")
}
