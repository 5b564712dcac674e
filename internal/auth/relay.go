package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	publishTimeout   = 2 * time.Second
	resubscribeDelay = time.Second
)

// TriggerRelay fans refresh requests out to every replica through a Redis
// channel. Set raises the local trigger and queues an announcement; Listen
// publishes queued announcements and raises the local trigger for requests
// published by other replicas.
type TriggerRelay struct {
	local   *RefreshTrigger
	client  *redis.Client
	channel string
	origin  string
	logger  *zap.Logger

	// pending holds at most one unsent announcement. Further Set calls
	// coalesce into it.
	pending chan struct{}
}

// NewTriggerRelay wraps local. A nil client degrades to local-only behavior.
func NewTriggerRelay(local *RefreshTrigger, client *redis.Client, channel string, logger *zap.Logger) *TriggerRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TriggerRelay{
		local:   local,
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger,
		pending: make(chan struct{}, 1),
	}
}

// Set raises the local trigger and queues an announcement for other
// replicas. It never waits on Redis.
func (r *TriggerRelay) Set() {
	r.local.Set()
	if r.client == nil {
		return
	}
	select {
	case r.pending <- struct{}{}:
	default:
	}
}

// Listen blocks until ctx is cancelled. It publishes queued announcements
// and raises the local trigger for every message another replica publishes.
// Lost subscriptions are re-established; Redis outages are logged, never
// returned.
func (r *TriggerRelay) Listen(ctx context.Context) error {
	if r.client == nil {
		<-ctx.Done()
		return nil
	}

	for {
		err := r.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		r.logger.Warn("refresh trigger subscription lost", zap.String("channel", r.channel), zap.Error(err))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(resubscribeDelay):
		}
	}
}

func (r *TriggerRelay) listen(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	r.logger.Info("listening for refresh triggers", zap.String("channel", r.channel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.pending:
			r.publish(ctx)
		case msg, ok := <-messages:
			if !ok {
				return redis.ErrClosed
			}
			if msg.Payload == r.origin {
				continue
			}
			r.local.Set()
		}
	}
}

// publish failures are dropped; the periodic refresh bounds staleness on
// the other replicas.
func (r *TriggerRelay) publish(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := r.client.Publish(ctx, r.channel, r.origin).Err(); err != nil {
		r.logger.Warn("publish refresh trigger", zap.String("channel", r.channel), zap.Error(err))
	}
}
