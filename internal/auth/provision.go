package auth

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/campushelp/helpdesk-service/pkg/util"
)

const provisionKeyHeader = "X-Provision-Key"

// RequireProvisionKey guards the staff-provisioning endpoint with a
// pre-shared key. The configuration stores only the bcrypt hash of the key;
// an empty hash disables provisioning entirely.
func RequireProvisionKey(keyHash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if keyHash == "" {
			return apperrors.NewForbidden("staff provisioning disabled")
		}
		key := c.Get(provisionKeyHeader)
		if key == "" {
			return apperrors.NewForbidden("provisioning key required")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
			return apperrors.NewForbidden("invalid provisioning key")
		}
		return c.Next()
	}
}
