package users

import (
	"encoding/json"

	usersvc "dwello-backend/internal/application/users"
	"dwello-backend/internal/middleware"
	"dwello-backend/internal/pkg/request"
	"dwello-backend/internal/pkg/response"
	"dwello-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

type Handlers struct {
	Service *usersvc.Service
}

// GET /api/user/profile
func (h *Handlers) Profile(c *fiber.Ctx) error {
	u, err := h.Service.Profile(c.UserContext(), middleware.GetActor(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, u)
}

// PUT /api/user/profile
func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	var b struct {
		Name  *string `json:"name"`
		Phone *string `json:"phone"`
	}
	if err := request.Body(c, &b); err != nil {
		return response.FromError(c, err)
	}
	u, err := h.Service.UpdateProfile(c.UserContext(), middleware.GetActor(c), usersvc.ProfileInput{Name: b.Name, Phone: b.Phone})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, u)
}

// GET /api/user/saved-properties
func (h *Handlers) SavedProperties(c *fiber.Ctx) error {
	out, err := h.Service.SavedProperties(c.UserContext(), middleware.GetActor(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, out)
}

// POST /api/user/saved-properties
func (h *Handlers) SaveProperty(c *fiber.Ctx) error {
	var b struct {
		PropertyID *string `json:"property_id"`
	}
	if err := request.Body(c, &b); err != nil {
		return response.FromError(c, err)
	}
	id, _, err := request.OptionalUUID(b.PropertyID, "property_id")
	if err != nil {
		return response.FromError(c, err)
	}
	if id == nil {
		return response.Error(c, "property_id is required", fiber.StatusBadRequest, nil)
	}
	saved, err := h.Service.SaveProperty(c.UserContext(), middleware.GetActor(c), *id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, saved)
}

// DELETE /api/user/saved-properties/:property_id
func (h *Handlers) RemoveSavedProperty(c *fiber.Ctx) error {
	id, err := request.UUIDParam(c, "property_id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.RemoveSavedProperty(c.UserContext(), middleware.GetActor(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Message(c, "Property removed from saved list")
}

// GET /api/user/activity?limit=
func (h *Handlers) Activity(c *fiber.Ctx) error {
	limit := 0
	if n, ok := validation.ParseInt(c.Query("limit")); ok {
		limit = int(n)
	}
	out, err := h.Service.Activity(c.UserContext(), middleware.GetActor(c), limit)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, out)
}

// POST /api/user/activity
func (h *Handlers) RecordActivity(c *fiber.Ctx) error {
	var b struct {
		PropertyID *string `json:"property_id"`
		Action     string  `json:"action"`
	}
	if err := request.Body(c, &b); err != nil {
		return response.FromError(c, err)
	}
	id, _, err := request.OptionalUUID(b.PropertyID, "property_id")
	if err != nil {
		return response.FromError(c, err)
	}
	a, err := h.Service.RecordActivity(c.UserContext(), middleware.GetActor(c), id, b.Action)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, a)
}

type alertBody struct {
	Name      *string         `json:"name"`
	Criteria  json.RawMessage `json:"criteria"`
	Frequency *string         `json:"frequency"`
	IsActive  *bool           `json:"is_active"`
}

func (b alertBody) input() usersvc.AlertInput {
	in := usersvc.AlertInput{Name: b.Name, Frequency: b.Frequency, IsActive: b.IsActive}
	if len(b.Criteria) > 0 && string(b.Criteria) != "null" {
		in.Criteria = datatypes.JSON(b.Criteria)
	}
	return in
}

// GET /api/user/alerts
func (h *Handlers) Alerts(c *fiber.Ctx) error {
	out, err := h.Service.Alerts(c.UserContext(), middleware.GetActor(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, out)
}

// POST /api/user/alerts
func (h *Handlers) CreateAlert(c *fiber.Ctx) error {
	var b alertBody
	if err := request.Body(c, &b); err != nil {
		return response.FromError(c, err)
	}
	a, err := h.Service.CreateAlert(c.UserContext(), middleware.GetActor(c), b.input())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, a)
}

// PUT /api/user/alerts/:id
func (h *Handlers) UpdateAlert(c *fiber.Ctx) error {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var b alertBody
	if err := request.Body(c, &b); err != nil {
		return response.FromError(c, err)
	}
	a, err := h.Service.UpdateAlert(c.UserContext(), middleware.GetActor(c), id, b.input())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, a)
}

// DELETE /api/user/alerts/:id
func (h *Handlers) DeleteAlert(c *fiber.Ctx) error {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.DeleteAlert(c.UserContext(), middleware.GetActor(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Message(c, "Alert deleted successfully")
}
