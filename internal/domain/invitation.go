package domain

import "time"

// Invitation allows an email address to register until ExpiresAt.
type Invitation struct {
	ID        string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the invitation can no longer be redeemed at now.
func (i *Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
