package auth

import "sync/atomic"

// Notifier is implemented by anything that can request an out-of-cycle
// cache reload.
type Notifier interface {
	Set()
}

// RefreshTrigger is a process-wide "reload soon" flag. It starts raised so
// the first refresh happens immediately.
type RefreshTrigger struct {
	pending atomic.Bool
	wake    chan struct{}
}

// NewRefreshTrigger returns a raised trigger.
func NewRefreshTrigger() *RefreshTrigger {
	t := &RefreshTrigger{wake: make(chan struct{}, 1)}
	t.Set()
	return t
}

// Set raises the flag and wakes the refresh loop if it is idle. Safe to call
// from any goroutine; repeated calls before the next CheckAndClear collapse.
func (t *RefreshTrigger) Set() {
	t.pending.Store(true)
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// CheckAndClear lowers the flag and returns its previous value.
func (t *RefreshTrigger) CheckAndClear() bool {
	return t.pending.Swap(false)
}

// Wake delivers a value after Set for loops that want to react early.
func (t *RefreshTrigger) Wake() <-chan struct{} {
	return t.wake
}

func (t *RefreshTrigger) drainWake() {
	select {
	case <-t.wake:
	default:
	}
}
