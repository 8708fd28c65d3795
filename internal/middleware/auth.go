package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/waterline/internal/apperr"
	"github.com/example/waterline/internal/config"
	"github.com/example/waterline/internal/models"
	"github.com/example/waterline/internal/utils"
)

const identityContextKey = "currentIdentity"

// Identity is the authenticated caller exposed to downstream handlers.
type Identity struct {
	ID   uuid.UUID
	Role string
}

// Protect authenticates the caller from a bearer access token, resolves
// the stored account (rejecting deleted or unverified ones) and stashes
// the identity in the request context.
func Protect(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return apperr.Unauthorized("missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperr.Unauthorized("invalid authorization header")
		}

		customerID, _, err := utils.ParseToken(cfg.JWTAccessSecret, parts[1])
		if err != nil {
			return err
		}

		var customer models.Customer
		if err := db.First(&customer, "id = ?", customerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Unauthorized("unauthorized")
			}
			return err
		}

		if !customer.IsActive {
			return apperr.Forbidden("account not verified")
		}

		c.Locals(identityContextKey, Identity{ID: customer.ID, Role: customer.Role})
		return c.Next()
	}
}

// RequireRoles allows only callers whose role is in the list.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return apperr.Forbidden("forbidden")
		}

		for _, role := range roles {
			if identity.Role == role {
				return c.Next()
			}
		}

		return apperr.Forbidden("forbidden")
	}
}

// RequireSelf restricts a path-addressed resource to its own account.
// Admins bypass the check.
func RequireSelf() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return apperr.Unauthorized("unauthorized")
		}

		if identity.Role == models.RoleAdmin {
			return c.Next()
		}

		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return apperr.BadRequest("invalid id")
		}

		if id != identity.ID {
			return apperr.Forbidden("forbidden")
		}

		return c.Next()
	}
}

// CurrentIdentity extracts the authenticated identity from context.
func CurrentIdentity(c *fiber.Ctx) (Identity, bool) {
	value := c.Locals(identityContextKey)
	if value == nil {
		return Identity{}, false
	}

	identity, ok := value.(Identity)
	return identity, ok
}
