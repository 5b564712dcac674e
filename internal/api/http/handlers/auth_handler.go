package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/service"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// AccountService is the part of the auth service the HTTP layer drives.
type AccountService interface {
	Login(ctx context.Context, email, password string) (*service.Session, error)
	CreateInvitation(ctx context.Context, email string) (*domain.Invitation, error)
	RegisterUser(ctx context.Context, invitationID, password string) (*domain.User, error)
	ChangePassword(ctx context.Context, identity domain.Identity, newPassword string) (bool, error)
	Deauthorize(ctx context.Context, identity domain.Identity) error
}

// AuthHandler exposes session endpoints.
type AuthHandler struct {
	accounts AccountService
	cookie   cookieSettings
}

type cookieSettings struct {
	name   string
	domain string
	secure bool
	maxAge time.Duration
}

// NewAuthHandler constructs handler.
func NewAuthHandler(accounts AccountService, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		cookie: cookieSettings{
			name:   cfg.CookieName,
			domain: cfg.Domain,
			secure: cfg.CookieSecure,
			maxAge: cfg.TokenValidity,
		},
	}
}

// Login handles POST /api/auth.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewBadRequest("email and password required")
	}

	session, err := h.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.name,
		Value:    session.Token,
		Path:     "/",
		Domain:   h.cookie.domain,
		MaxAge:   int(h.cookie.maxAge / time.Second),
		Secure:   h.cookie.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(dto.LoginResponse{
		Email:     session.User.Email,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout handles DELETE /api/auth by expiring the session cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.name,
		Value:    "",
		Path:     "/",
		Domain:   h.cookie.domain,
		Expires:  time.Unix(0, 0),
		Secure:   h.cookie.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.SendStatus(fiber.StatusNoContent)
}

// Me handles GET /api/auth.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized()
	}
	return c.JSON(dto.MeResponse{Email: identity.String()})
}
