package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/domain"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

const identityKey = "auth_identity"

// AuthMiddleware extracts the session token and authorizes the caller.
type AuthMiddleware struct {
	authorizer *Authorizer
	cookieName string
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(authorizer *Authorizer, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{authorizer: authorizer, cookieName: cookieName}
}

// Handle enforces authorization for protected routes. The token is read from
// the session cookie, falling back to a Bearer header.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	identity, err := m.authorizer.Authorize(m.tokenFrom(c))
	if err != nil {
		return apperrors.NewUnauthorized()
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

func (m *AuthMiddleware) tokenFrom(c *fiber.Ctx) string {
	if token := c.Cookies(m.cookieName); token != "" {
		return token
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// IdentityFromContext retrieves the authorized identity.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	return identity, ok && identity != ""
}
