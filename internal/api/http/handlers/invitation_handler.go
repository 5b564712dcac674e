package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// InvitationHandler exposes invitation and registration endpoints.
type InvitationHandler struct {
	accounts AccountService
}

// NewInvitationHandler constructs handler.
func NewInvitationHandler(accounts AccountService) *InvitationHandler {
	return &InvitationHandler{accounts: accounts}
}

// Create handles POST /api/invitation.
func (h *InvitationHandler) Create(c *fiber.Ctx) error {
	var req dto.InvitationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	invitation, err := h.accounts.CreateInvitation(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.InvitationResponse{
		Email:     invitation.Email,
		ExpiresAt: invitation.ExpiresAt,
	})
}

// Register handles POST /api/register/:invitation_id.
func (h *InvitationHandler) Register(c *fiber.Ctx) error {
	var req dto.PasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	user, err := h.accounts.RegisterUser(c.UserContext(), c.Params("invitation_id"), req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MeResponse{Email: user.Email})
}
