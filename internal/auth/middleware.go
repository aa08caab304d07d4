package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campushelp/helpdesk-service/internal/domain"
	"github.com/campushelp/helpdesk-service/internal/repository"
	apperrors "github.com/campushelp/helpdesk-service/pkg/util"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer tokens and attaches the principal to the
// request. The user record is upserted on every request, which covers the
// first-login case and keeps email, name and role in sync with the identity
// provider.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	// Fail closed: a role this service does not know gets no access at
	// all, not student-level access.
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return apperrors.NewUnauthorized("unrecognized role")
	}

	user := &domain.User{
		ID:        claims.UserID,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Role:      role,
	}
	if err := m.users.Upsert(c.UserContext(), user); err != nil {
		return apperrors.NewStoreError(err)
	}

	c.Locals(principalKey, domain.Principal{UserID: user.ID, Role: role})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return domain.Principal{}, false
	}
	principal, ok := val.(domain.Principal)
	return principal, ok
}
