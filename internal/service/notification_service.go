package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
)

const invitationSubject = "You have been invited to join"

// NotificationService renders invitation messages. Delivery is handed to an
// external mail relay; this service only logs what would be sent.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger, cfg: cfg}
}

// SendInvitation logs the registration link for invitation.
func (n *NotificationService) SendInvitation(ctx context.Context, invitation *domain.Invitation) error {
	link, err := n.InvitationLink(invitation)
	if err != nil {
		return err
	}
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		n.logger.Warn("invitation sender not configured", zap.String("invitation_id", invitation.ID))
		return nil
	}
	n.logger.Info("sendInvitationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", invitation.Email),
		zap.String("subject", invitationSubject),
		zap.String("link", link),
		zap.Time("expires_at", invitation.ExpiresAt))
	return nil
}

// InvitationLink builds the callback URL carrying the invitation id and email.
func (n *NotificationService) InvitationLink(invitation *domain.Invitation) (string, error) {
	base, err := url.Parse(n.cfg.CallbackURL)
	if err != nil {
		return "", fmt.Errorf("invalid callback url: %w", err)
	}
	q := base.Query()
	q.Set("id", invitation.ID)
	q.Set("email", invitation.Email)
	base.RawQuery = q.Encode()
	return base.String(), nil
}
