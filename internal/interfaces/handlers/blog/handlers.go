package blog

import (
	blogsvc "dwello-backend/internal/application/blog"
	"dwello-backend/internal/pkg/request"
	"dwello-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *blogsvc.Service
}

type body struct {
	Title            *string   `json:"title"`
	Slug             *string   `json:"slug"`
	Content          *string   `json:"content"`
	Excerpt          *string   `json:"excerpt"`
	Author           *string   `json:"author"`
	Category         *string   `json:"category"`
	FeaturedImageURL *string   `json:"featured_image_url"`
	Tags             *[]string `json:"tags"`
	Status           *string   `json:"status"`
	AgentID          *string   `json:"agent_id"`
}

func (b body) input() (blogsvc.Input, error) {
	agentID, _, err := request.OptionalUUID(b.AgentID, "agent_id")
	if err != nil {
		return blogsvc.Input{}, err
	}
	return blogsvc.Input{
		Title:            b.Title,
		Slug:             b.Slug,
		Content:          b.Content,
		Excerpt:          b.Excerpt,
		Author:           b.Author,
		Category:         b.Category,
		FeaturedImageURL: b.FeaturedImageURL,
		Tags:             b.Tags,
		Status:           b.Status,
		AgentID:          agentID,
	}, nil
}

// GET /api/blog
func (h *Handlers) List(c *fiber.Ctx) error {
	posts, meta, err := h.Service.ListPublished(c.UserContext(), request.QueryValues(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, posts, meta)
}

// GET /api/blog/:slug
func (h *Handlers) GetBySlug(c *fiber.Ctx) error {
	post, err := h.Service.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, post)
}

// GET /api/admin/blog
func (h *Handlers) AdminList(c *fiber.Ctx) error {
	posts, meta, err := h.Service.AdminList(c.UserContext(), request.QueryValues(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, posts, meta)
}

// POST /api/admin/blog
func (h *Handlers) Create(c *fiber.Ctx) error {
	var b body
	if err := request.Body(c, &b); err != nil {
		return response.FromError(c, err)
	}
	in, err := b.input()
	if err != nil {
		return response.FromError(c, err)
	}
	post, err := h.Service.Create(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, fiber.Map{"blogPost": post})
}

// PUT /api/admin/blog/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := request.UintParam(c, "id")
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
	post, err := h.Service.Update(c.UserContext(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"blogPost": post})
}

// DELETE /api/admin/blog/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := request.UintParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Message(c, "Blog post deleted successfully")
}
