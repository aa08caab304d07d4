package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campushelp/helpdesk-service/internal/domain"
	apperrors "github.com/campushelp/helpdesk-service/pkg/util"
)

// RequireAdmin rejects requests whose principal is not an admin. Routes
// behind it still re-check through the authorization gate in the service
// layer; this guard just fails the obvious cases before body parsing.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.Role != domain.RoleAdmin {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}
