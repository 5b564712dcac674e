package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

const pgUniqueViolation = "23505"

// InvitationSender delivers invitation links.
type InvitationSender interface {
	SendInvitation(ctx context.Context, invitation *domain.Invitation) error
}

// Session is the result of a successful login.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates login, registration and account mutations.
type AuthService struct {
	users         repository.UserRepository
	invitations   repository.InvitationRepository
	tokens        *auth.TokenManager
	dispatcher    events.Dispatcher
	sender        InvitationSender
	logger        *zap.Logger
	bcryptCost    int
	invitationTTL time.Duration
	now           func() time.Time

	// dummyHash is compared against when the email is unknown so both
	// login failures cost one bcrypt comparison.
	dummyHash       string
	comparePassword func(hashed, plain string) error
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo       repository.UserRepository
	InvitationRepo repository.InvitationRepository
	Tokens         *auth.TokenManager
	Dispatcher     events.Dispatcher
	Sender         InvitationSender
	Logger         *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	ttl := cfg.InvitationTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	dummyHash, err := auth.HashPassword(uuid.NewString(), cfg.BcryptCost)
	if err != nil {
		logger.Warn("generate login dummy hash", zap.Error(err))
	}
	return &AuthService{
		users:           deps.UserRepo,
		invitations:     deps.InvitationRepo,
		tokens:          deps.Tokens,
		dispatcher:      dispatcher,
		sender:          deps.Sender,
		logger:          logger,
		bcryptCost:      cfg.BcryptCost,
		invitationTTL:   ttl,
		now:             time.Now,
		dummyHash:       dummyHash,
		comparePassword: auth.ComparePassword,
	}
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_ = s.comparePassword(s.dummyHash, password)
			return nil, errBadCredentials()
		}
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.comparePassword(user.PasswordHash, password); err != nil {
		return nil, errBadCredentials()
	}

	token, claims, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{User: user, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// CreateInvitation records an invitation for email and hands it to the
// sender.
func (s *AuthService) CreateInvitation(ctx context.Context, email string) (*domain.Invitation, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidationError("invalid email", map[string]any{"email": email})
	}

	invitation := &domain.Invitation{
		ID:        uuid.NewString(),
		Email:     email,
		ExpiresAt: s.now().Add(s.invitationTTL),
	}
	if err := s.invitations.Create(ctx, invitation); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if s.sender != nil {
		if err := s.sender.SendInvitation(ctx, invitation); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
	}
	return invitation, nil
}

// RegisterUser redeems an invitation and creates the account.
func (s *AuthService) RegisterUser(ctx context.Context, invitationID, password string) (*domain.User, error) {
	if _, err := uuid.Parse(invitationID); err != nil {
		return nil, errInvalidInvitation()
	}
	if password == "" {
		return nil, apperrors.NewValidationError("password required", nil)
	}

	invitation, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errInvalidInvitation()
		}
		return nil, apperrors.NewInternalError(err)
	}
	if invitation.Expired(s.now()) {
		return nil, errInvalidInvitation()
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{Email: invitation.Email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperrors.NewConflict("email already registered")
		}
		return nil, apperrors.NewInternalError(err)
	}

	if err := s.invitations.Delete(ctx, invitation.ID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		s.logger.Warn("delete redeemed invitation", zap.String("invitation_id", invitation.ID), zap.Error(err))
	}

	s.publish(ctx, events.EventIdentityRegistered, user.Identity())
	return user, nil
}

// ChangePassword replaces the password of identity. It reports whether a row
// was updated.
func (s *AuthService) ChangePassword(ctx context.Context, identity domain.Identity, newPassword string) (bool, error) {
	if newPassword == "" {
		return false, apperrors.NewValidationError("password required", nil)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return false, apperrors.NewInternalError(err)
	}

	changed, err := s.users.UpdatePassword(ctx, identity.String(), hash)
	if err != nil {
		return false, apperrors.NewBadRequest("Update failed")
	}
	if changed {
		s.publish(ctx, events.EventPasswordChanged, identity)
	}
	return changed, nil
}

// Deauthorize removes identity from the authoritative store. Existing tokens
// stop working once the cache refreshes.
func (s *AuthService) Deauthorize(ctx context.Context, identity domain.Identity) error {
	if err := s.users.Delete(ctx, identity.String()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user")
		}
		return apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.EventIdentityDeauthorized, identity)
	return nil
}

// Tokens exposes the codec used for login.
func (s *AuthService) Tokens() *auth.TokenManager {
	return s.tokens
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, identity domain.Identity) {
	if err := s.dispatcher.Publish(ctx, events.NewEvent(eventType, identity)); err != nil {
		s.logger.Warn("publish event", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func errBadCredentials() error {
	return apperrors.NewBadRequest("Username and Password don't match")
}

func errInvalidInvitation() error {
	return apperrors.NewBadRequest("Invalid Invitation")
}
