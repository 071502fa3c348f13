package middleware

import (
	"errors"
	"strings"

	"dwello-backend/internal/domain"
	"dwello-backend/internal/infrastructure/identity"
	"dwello-backend/internal/pkg/constants"
	"dwello-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const claimsLocal = "claims"

// RequireAuth verifies the bearer token and stores its claims for handlers.
// Missing, malformed, expired and revoked tokens all answer 401.
func RequireAuth(v identity.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return response.Unauthorized(c, "No token provided")
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			return response.Unauthorized(c, "No token provided")
		}
		claims, err := v.Verify(c.UserContext(), token)
		if err != nil {
			log.Debug().Err(err).Str("trace_id", GetTraceID(c)).Msg("token verification failed")
			switch {
			case errors.Is(err, identity.ErrExpiredToken):
				return response.Unauthorized(c, "Token expired")
			case errors.Is(err, identity.ErrRevokedToken):
				return response.Unauthorized(c, "Token revoked")
			case errors.Is(err, identity.ErrInvalidToken):
				return response.Unauthorized(c, "Invalid token")
			}
			return response.Unauthorized(c, "Authentication failed")
		}
		c.Locals(claimsLocal, claims)
		return c.Next()
	}
}

// RequireAdmin must run after RequireAuth. The caller is an admin when the token carries
// the admin role claim or, with db set, the caller's user record has the admin role.
func RequireAdmin(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := GetClaims(c)
		if claims == nil {
			return response.Unauthorized(c, "No token provided")
		}
		if err := resolveRole(c, db, claims); err != nil {
			return err
		}
		if claims.Role != constants.RoleAdmin {
			return response.Forbidden(c, "Admin access required")
		}
		return c.Next()
	}
}

// ResolveRole must run after RequireAuth. It applies the same admin rule as RequireAdmin
// but lets non-admins through, for routes that serve both admins and owners.
func ResolveRole(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := GetClaims(c)
		if claims == nil {
			return response.Unauthorized(c, "No token provided")
		}
		if err := resolveRole(c, db, claims); err != nil {
			return err
		}
		return c.Next()
	}
}

// resolveRole upgrades claims to the admin role when the stored user is an admin.
func resolveRole(c *fiber.Ctx, db *gorm.DB, claims *identity.Claims) error {
	if claims.Role == constants.RoleAdmin || db == nil {
		return nil
	}
	var n int64
	err := db.WithContext(c.UserContext()).Model(&domain.User{}).
		Where("firebase_uid = ? AND role = ?", claims.UID, constants.RoleAdmin).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		claims.Role = constants.RoleAdmin
	}
	return nil
}

// GetClaims returns the verified token claims, nil on unauthenticated routes.
func GetClaims(c *fiber.Ctx) *identity.Claims {
	claims, _ := c.Locals(claimsLocal).(*identity.Claims)
	return claims
}

// GetActor returns the caller as seen by services.
func GetActor(c *fiber.Ctx) domain.Actor {
	claims := GetClaims(c)
	if claims == nil {
		return domain.Actor{}
	}
	return domain.Actor{
		UID:     claims.UID,
		Email:   claims.Email,
		Name:    claims.Name,
		IsAdmin: claims.Role == constants.RoleAdmin,
	}
}
