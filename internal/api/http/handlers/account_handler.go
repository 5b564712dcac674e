package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/auth"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// AccountHandler exposes mutations of the logged in account.
type AccountHandler struct {
	accounts AccountService
}

// NewAccountHandler constructs handler.
func NewAccountHandler(accounts AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// ChangePassword handles POST /api/password_change.
func (h *AccountHandler) ChangePassword(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized()
	}
	var req dto.PasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	changed, err := h.accounts.ChangePassword(c.UserContext(), identity, req.Password)
	if err != nil {
		return err
	}
	status := dto.StatusFailure
	if changed {
		status = dto.StatusSuccess
	}
	return c.JSON(dto.StatusResponse{Status: status})
}

// Delete handles DELETE /api/account. The caller's tokens stop working once
// the authorization cache next refreshes.
func (h *AccountHandler) Delete(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized()
	}
	if err := h.accounts.Deauthorize(c.UserContext(), identity); err != nil {
		return err
	}
	return c.JSON(dto.StatusResponse{Status: dto.StatusSuccess})
}
