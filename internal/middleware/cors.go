package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS allows the configured comma-separated origins with credentials.
// "*" allows any origin without credentials.
func CORS(origins string) fiber.Handler {
	origins = strings.TrimSpace(origins)
	cfg := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Trace-Id",
		ExposeHeaders:    "X-Trace-Id",
		AllowCredentials: origins != "*" && origins != "",
	}
	if origins == "" {
		cfg.AllowOrigins = "*"
	}
	return cors.New(cfg)
}
