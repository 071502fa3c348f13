package properties

import (
	"dwello-backend/internal/application/moderation"
	propsvc "dwello-backend/internal/application/properties"
	"dwello-backend/internal/middleware"
	"dwello-backend/internal/pkg/apperrors"
	"dwello-backend/internal/pkg/request"
	"dwello-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *propsvc.Service
}

// body is the JSON shape accepted on create and update. Numeric fields accept numbers or
// numeric strings; location is an alias of region.
type body struct {
	Title         *string           `json:"title"`
	Description   *string           `json:"description"`
	Price         *request.Number   `json:"price"`
	Currency      *string           `json:"currency"`
	Region        *string           `json:"region"`
	Location      *string           `json:"location"`
	Address       *string           `json:"address"`
	PropertyType  *string           `json:"property_type"`
	ListingType   *string           `json:"listing_type"`
	Status        *string           `json:"status"`
	IsFeatured    *bool             `json:"is_featured"`
	Bedrooms      *request.Number   `json:"bedrooms"`
	Bathrooms     *request.Number   `json:"bathrooms"`
	Area          *request.Number   `json:"area"`
	Images        *[]string         `json:"images"`
	RemovedImages []string          `json:"removed_images"`
	AgentID       *string           `json:"agent_id"`
	Amenities     *[]request.Number `json:"amenities"`
}

func (b body) input() (propsvc.Input, error) {
	in := propsvc.Input{
		Title:         b.Title,
		Description:   b.Description,
		Price:         b.Price.Int64(),
		Currency:      b.Currency,
		Region:        b.Region,
		Address:       b.Address,
		PropertyType:  b.PropertyType,
		ListingType:   b.ListingType,
		Status:        b.Status,
		IsFeatured:    b.IsFeatured,
		Bedrooms:      b.Bedrooms.Int(),
		Bathrooms:     b.Bathrooms.Int(),
		Area:          b.Area.Float64(),
		Images:        b.Images,
		RemovedImages: b.RemovedImages,
	}
	if in.Region == nil {
		in.Region = b.Location
	}
	agentID, _, err := request.OptionalUUID(b.AgentID, "agent_id")
	if err != nil {
		return in, err
	}
	in.AgentID = agentID
	if b.Amenities != nil {
		ids := make([]uint, 0, len(*b.Amenities))
		for _, n := range *b.Amenities {
			if n <= 0 || float64(n) != float64(int64(n)) {
				return in, apperrors.Validation("Amenity ids must be positive integers")
			}
			ids = append(ids, uint(n))
		}
		in.Amenities = &ids
	}
	return in, nil
}

// GET /api/properties, GET /api/admin/properties
func (h *Handlers) List(c *fiber.Ctx) error {
	props, meta, err := h.Service.List(c.UserContext(), request.QueryValues(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, props, meta)
}

// GET /api/properties/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	p, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, p)
}

// POST /api/properties
func (h *Handlers) Create(c *fiber.Ctx) error {
	var b body
	if err := request.Body(c, &b); err != nil {
		return response.FromError(c, err)
	}
	in, err := b.input()
	if err != nil {
		return response.FromError(c, err)
	}
	p, err := h.Service.Create(c.UserContext(), middleware.GetActor(c), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, p)
}

// PUT /api/properties/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var b body
	if err := request.Body(c, &b); err != nil {
		return response.FromError(c, err)
	}
	in, err := b.input()
	if err != nil {
		return response.FromError(c, err)
	}
	p, err := h.Service.Update(c.UserContext(), middleware.GetActor(c), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, p)
}

// DELETE /api/properties/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Delete(c.UserContext(), middleware.GetActor(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Message(c, "Property deleted successfully")
}

type statusBody struct {
	Status string `json:"status"`
}

// PUT /api/admin/properties/:id/approve
func (h *Handlers) Approve(c *fiber.Ctx) error {
	return h.setStatus(c, moderation.DefaultApproveStatus)
}

// PUT /api/admin/properties/:id/reject
func (h *Handlers) Reject(c *fiber.Ctx) error {
	return h.setStatus(c, moderation.DefaultRejectStatus)
}

func (h *Handlers) setStatus(c *fiber.Ctx, fallback string) error {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var b statusBody
	if err := request.Body(c, &b); err != nil {
		return response.FromError(c, err)
	}
	if b.Status == "" {
		b.Status = fallback
	}
	p, err := h.Service.SetStatus(c.UserContext(), id, b.Status)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"property": p})
}

// PUT /api/admin/properties/:id/feature
func (h *Handlers) ToggleFeatured(c *fiber.Ctx) error {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	p, err := h.Service.ToggleFeatured(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"property": p})
}
