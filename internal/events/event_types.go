package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/auth-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIdentityRegistered   EventType = "identity_registered"
	EventPasswordChanged      EventType = "password_changed"
	EventIdentityDeauthorized EventType = "identity_deauthorized"
)

// IdentitySetChanged lists every event that changes who is authorized.
var IdentitySetChanged = []EventType{
	EventIdentityRegistered,
	EventPasswordChanged,
	EventIdentityDeauthorized,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Identity  domain.Identity `json:"identity"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent stamps a new event for identity.
func NewEvent(eventType EventType, identity domain.Identity) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Identity:  identity,
		Timestamp: time.Now().UTC(),
	}
}
