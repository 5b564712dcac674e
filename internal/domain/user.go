package domain

import "time"

// User is an account in the authoritative store.
type User struct {
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity returns the principal the user authenticates as.
func (u *User) Identity() Identity {
	return Identity(u.Email)
}
