package auth

import (
	"context"

	"github.com/spec-kit/auth-service/internal/events"
)

// SubscribeTrigger raises n whenever an event changes the authorized set.
func SubscribeTrigger(dispatcher events.Dispatcher, n Notifier) {
	for _, eventType := range events.IdentitySetChanged {
		dispatcher.Subscribe(eventType, func(context.Context, events.Event) error {
			n.Set()
			return nil
		})
	}
}
