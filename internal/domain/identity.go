package domain

import "strings"

// Identity is the principal a token or cache entry refers to. Equality is by
// exact string value.
type Identity string

// String returns the raw identity value.
func (i Identity) String() string {
	return string(i)
}

// NewIdentity trims surrounding whitespace from an email address. Case is
// preserved.
func NewIdentity(email string) Identity {
	return Identity(strings.TrimSpace(email))
}
