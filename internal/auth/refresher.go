package auth

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/domain"
)

// DefaultRefreshInterval is the periodic reload cadence.
const DefaultRefreshInterval = 60 * time.Second

const (
	refreshReasonPeriodic  = "periodic"
	refreshReasonTriggered = "triggered"
)

// IdentitySource lists the identities the authoritative store currently
// allows in.
type IdentitySource interface {
	ListValidIdentities(ctx context.Context) ([]domain.Identity, error)
}

// RefreshLoop reloads the authorization cache from the authoritative store.
// It is the cache's only writer and must run as a single instance.
type RefreshLoop struct {
	source   IdentitySource
	cache    *AuthorizationCache
	trigger  *RefreshTrigger
	interval time.Duration
	logger   *zap.Logger
	recorder Recorder
}

// RefreshDependencies bundles collaborators of the refresh loop.
type RefreshDependencies struct {
	Source   IdentitySource
	Cache    *AuthorizationCache
	Trigger  *RefreshTrigger
	Logger   *zap.Logger
	Recorder Recorder
}

// NewRefreshLoop constructs the loop.
func NewRefreshLoop(interval time.Duration, deps RefreshDependencies) *RefreshLoop {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var recorder Recorder = noopRecorder{}
	if deps.Recorder != nil {
		recorder = deps.Recorder
	}
	trigger := deps.Trigger
	if trigger == nil {
		trigger = NewRefreshTrigger()
	}
	return &RefreshLoop{
		source:   deps.Source,
		cache:    deps.Cache,
		trigger:  trigger,
		interval: interval,
		logger:   logger,
		recorder: recorder,
	}
}

// Run refreshes on every tick and whenever the trigger wakes it, until ctx
// is cancelled. Cancellation is observed between cycles only; a merge that
// has started always completes.
func (l *RefreshLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("auth refresh loop started", zap.Duration("interval", l.interval))
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("auth refresh loop stopped")
			return nil
		case <-ticker.C:
		case <-l.trigger.Wake():
		}
		if ctx.Err() != nil {
			l.logger.Info("auth refresh loop stopped")
			return nil
		}
		l.cycle(ctx)
	}
}

func (l *RefreshLoop) cycle(ctx context.Context) {
	l.trigger.drainWake()
	reason := refreshReasonPeriodic
	if l.trigger.CheckAndClear() {
		reason = refreshReasonTriggered
	}

	if err := l.RefreshOnce(ctx); err != nil {
		l.logger.Warn("auth cache refresh skipped", zap.String("reason", reason), zap.Error(err))
		l.recorder.RecordRefresh(reason, false, l.cache.Len())
		return
	}
	l.logger.Debug("auth cache refreshed", zap.String("reason", reason), zap.Int("entries", l.cache.Len()))
	l.recorder.RecordRefresh(reason, true, l.cache.Len())
}

// RefreshOnce fetches the current identity set and merges it into the cache.
// On fetch failure the cache is left untouched and ErrStoreUnavailable is
// returned.
func (l *RefreshLoop) RefreshOnce(ctx context.Context) error {
	identities, err := l.source.ListValidIdentities(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	l.cache.Merge(identities)
	return nil
}
