package response

import (
	"dwello-backend/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ErrorBody is the standardized error JSON shape.
type ErrorBody struct {
	Status     string      `json:"status"`
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Details    interface{} `json:"details,omitempty"`
}

// Meta describes one page of a collection.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// Page is the { data, meta } envelope for paginated collections.
type Page struct {
	Data interface{} `json:"data"`
	Meta Meta        `json:"meta"`
}

const statusError = "error"

// OK sends 200 with data as the body.
func OK(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

// Created sends 201 with data as the body.
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

// Message sends 200 with { message }.
func Message(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": message})
}

// Paginated sends 200 with the { data, meta } envelope.
func Paginated(c *fiber.Ctx, data interface{}, meta Meta) error {
	return c.Status(fiber.StatusOK).JSON(Page{Data: data, Meta: meta})
}

// Error sends a response with the standard error format.
func Error(c *fiber.Ctx, message string, statusCode int, details interface{}) error {
	return c.Status(statusCode).JSON(ErrorBody{
		Status:     statusError,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	})
}

// Unauthorized sends 401 with the same shape as other errors.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized, nil)
}

// Forbidden sends 403 with the same shape as other errors.
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusForbidden, nil)
}

// FromError translates a service error into the error envelope. Unexpected errors are
// logged with their cause and answered with a generic message.
func FromError(c *fiber.Ctx, err error) error {
	code := apperrors.StatusCode(err)
	if code >= fiber.StatusInternalServerError {
		traceID, _ := c.Locals("trace_id").(string)
		log.Error().Err(err).Str("trace_id", traceID).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	}
	return Error(c, apperrors.PublicMessage(err), code, nil)
}
