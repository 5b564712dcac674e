package dto

import "time"

// LoginRequest payload for POST /api/auth.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned after a successful login. The token is also set
// as a cookie.
type LoginResponse struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MeResponse describes the logged in user.
type MeResponse struct {
	Email string `json:"email"`
}

// InvitationRequest payload for POST /api/invitation.
type InvitationRequest struct {
	Email string `json:"email"`
}

// InvitationResponse acknowledges a created invitation. The id is only
// delivered through the invitation link.
type InvitationResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PasswordRequest carries a new password for registration or change.
type PasswordRequest struct {
	Password string `json:"password"`
}

// StatusResponse reports the outcome of a mutation.
type StatusResponse struct {
	Status string `json:"status"`
}

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)
