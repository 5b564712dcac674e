package auth

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/spec-kit/auth-service/internal/domain"
)

// DefaultFreshnessWindow bounds how old an Authorized entry may be before it
// stops counting.
const DefaultFreshnessWindow = 15 * time.Minute

// Status is the cache's belief about one identity. The zero value is
// NotAuthorized.
type Status struct {
	Authorized bool
	At         time.Time
}

// NotAuthorized is the soft-revoked status.
var NotAuthorized = Status{}

// AuthorizedAt returns an Authorized status stamped with at.
func AuthorizedAt(at time.Time) Status {
	return Status{Authorized: true, At: at}
}

// FreshAt reports whether the status authorizes a request at now.
func (s Status) FreshAt(now time.Time, window time.Duration) bool {
	return s.Authorized && now.Sub(s.At) < window
}

// Snapshot is one published generation of the cache. It is never modified
// after publication.
type Snapshot struct {
	entries    map[domain.Identity]Status
	generation uint64
}

// Status returns the entry for identity.
func (s *Snapshot) Status(identity domain.Identity) (Status, bool) {
	st, ok := s.entries[identity]
	return st, ok
}

// Generation counts completed merges; zero means never loaded.
func (s *Snapshot) Generation() uint64 {
	return s.generation
}

// Len returns the number of entries, revoked ones included.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// AuthorizationCache maps identities to their last known authorization
// status. Reads are lock-free against an immutable snapshot; Merge builds
// the next snapshot off to the side and publishes it with a single atomic
// store.
type AuthorizationCache struct {
	current atomic.Pointer[Snapshot]
	writeMu sync.Mutex
	window  time.Duration
	now     func() time.Time
}

// CacheOption customizes an AuthorizationCache.
type CacheOption func(*AuthorizationCache)

// WithCacheClock overrides the clock used to stamp and age entries.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *AuthorizationCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewAuthorizationCache returns an empty cache.
func NewAuthorizationCache(freshness time.Duration, opts ...CacheOption) *AuthorizationCache {
	if freshness <= 0 {
		freshness = DefaultFreshnessWindow
	}
	c := &AuthorizationCache{window: freshness, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.current.Store(&Snapshot{entries: map[domain.Identity]Status{}})
	return c
}

// View returns the currently published snapshot. Lookups against the same
// view are mutually consistent.
func (c *AuthorizationCache) View() *Snapshot {
	return c.current.Load()
}

// IsAuthorized reports whether identity is Authorized with a timestamp inside
// the freshness window. Absent and revoked identities are not authorized.
func (c *AuthorizationCache) IsAuthorized(identity domain.Identity) bool {
	st, ok := c.View().Status(identity)
	if !ok {
		return false
	}
	return st.FreshAt(c.now(), c.window)
}

// Merge replaces the authorized set with identities. Cached identities that
// are missing from the set are demoted to NotAuthorized, then every member of
// the set is promoted to Authorized(now). The new snapshot is visible to all
// readers once Merge returns.
func (c *AuthorizationCache) Merge(identities []domain.Identity) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	prev := c.current.Load()
	keep := make(map[domain.Identity]struct{}, len(identities))
	for _, id := range identities {
		keep[id] = struct{}{}
	}

	next := make(map[domain.Identity]Status, len(prev.entries)+len(identities))
	for id, st := range prev.entries {
		if _, ok := keep[id]; !ok {
			st = NotAuthorized
		}
		next[id] = st
	}

	stamp := c.now()
	for id := range keep {
		next[id] = AuthorizedAt(stamp)
	}

	c.current.Store(&Snapshot{entries: next, generation: prev.generation + 1})
}

// Identities lists every cached identity, revoked ones included.
func (c *AuthorizationCache) Identities() []domain.Identity {
	snap := c.View()
	out := make([]domain.Identity, 0, len(snap.entries))
	for id := range snap.entries {
		out = append(out, id)
	}
	return out
}

// Len returns the number of cached entries.
func (c *AuthorizationCache) Len() int {
	return c.View().Len()
}

// Loaded reports whether at least one merge has been published.
func (c *AuthorizationCache) Loaded() bool {
	return c.View().Generation() > 0
}

// FreshnessWindow returns the configured maximum entry age.
func (c *AuthorizationCache) FreshnessWindow() time.Duration {
	return c.window
}
