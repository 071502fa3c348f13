package agents

import (
	"context"

	agentsvc "dwello-backend/internal/application/agents"
	"dwello-backend/internal/domain"
	"dwello-backend/internal/middleware"
	"dwello-backend/internal/pkg/request"
	"dwello-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *agentsvc.Service
}

type registerBody struct {
	domain.AgentProfile
	Slug string `json:"slug"`
}

// GET /api/agents
func (h *Handlers) List(c *fiber.Ctx) error {
	agents, meta, err := h.Service.List(c.UserContext(), request.QueryValues(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, agents, meta)
}

// GET /api/agents/:idOrSlug
func (h *Handlers) Get(c *fiber.Ctx) error {
	a, err := h.Service.GetPublic(c.UserContext(), c.Params("idOrSlug"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, a)
}

// POST /api/agents
func (h *Handlers) Register(c *fiber.Ctx) error {
	var b registerBody
	if err := request.Body(c, &b); err != nil {
		return response.FromError(c, err)
	}
	a, err := h.Service.Register(c.UserContext(), middleware.GetActor(c), agentsvc.RegisterInput{Profile: b.AgentProfile, Slug: b.Slug})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, a)
}

// GET /api/agents/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	a, err := h.Service.Me(c.UserContext(), middleware.GetActor(c).UID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, a)
}

// PUT /api/agents/me answers 202 when the edit was staged for review.
func (h *Handlers) UpdateMe(c *fiber.Ctx) error {
	var patch domain.AgentProfile
	if err := request.Body(c, &patch); err != nil {
		return response.FromError(c, err)
	}
	a, staged, err := h.Service.UpdateMe(c.UserContext(), middleware.GetActor(c).UID, patch)
	if err != nil {
		return response.FromError(c, err)
	}
	if staged {
		return c.Status(fiber.StatusAccepted).JSON(a)
	}
	return response.OK(c, a)
}

// POST /api/agents/:id/approve-edits
func (h *Handlers) ApproveEdits(c *fiber.Ctx) error {
	return h.decide(c, h.Service.ApproveEdits, false)
}

// POST /api/agents/:id/reject-edits
func (h *Handlers) RejectEdits(c *fiber.Ctx) error {
	return h.decide(c, h.Service.RejectEdits, false)
}

// GET /api/admin/agents
func (h *Handlers) AdminList(c *fiber.Ctx) error {
	agents, meta, err := h.Service.AdminList(c.UserContext(), request.QueryValues(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, agents, meta)
}

// PUT /api/admin/agents/:id/approve
func (h *Handlers) Approve(c *fiber.Ctx) error {
	return h.decide(c, h.Service.Approve, true)
}

// PUT /api/admin/agents/:id/reject
func (h *Handlers) Reject(c *fiber.Ctx) error {
	return h.decide(c, h.Service.Reject, true)
}

// DELETE /api/admin/agents/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Message(c, "Agent deleted successfully")
}

// decide runs an admin decision; the admin surface wraps the result as { agent }.
func (h *Handlers) decide(c *fiber.Ctx, fn func(ctx context.Context, id uuid.UUID) (*domain.Agent, error), wrapped bool) error {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	a, err := fn(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if wrapped {
		return response.OK(c, fiber.Map{"agent": a})
	}
	return response.OK(c, a)
}
