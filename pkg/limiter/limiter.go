package limiter

import (
	"sync"
	"time"
)

// RevalidationLimiter
// Specialized component to throttle background cache refreshes
// Responsibilities:
// - Bookkeep each cache key's last refresh timestamp
// - Suppress refreshes that would fire again within the minimum interval
// - Make sure concurrent navigations do not hammer the origin
//
// A zero minimum interval disables throttling: every refresh is allowed.
type RevalidationLimiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	lastRefresh map[string]time.Time
	now         func() time.Time
}

func NewRevalidationLimiter(minInterval time.Duration) *RevalidationLimiter {
	return &RevalidationLimiter{
		minInterval: minInterval,
		lastRefresh: make(map[string]time.Time),
		now:         time.Now,
	}
}

// Allow reports whether a background refresh for key may run now, and if so
// marks the key as refreshed. Check and mark are a single step so two
// concurrent callers cannot both pass for the same key.
func (l *RevalidationLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.minInterval > 0 {
		if last, ok := l.lastRefresh[key]; ok && now.Sub(last) < l.minInterval {
			return false
		}
	}
	l.lastRefresh[key] = now
	return true
}

// Forget drops the bookkeeping for a key, re-arming it immediately.
func (l *RevalidationLimiter) Forget(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.lastRefresh, key)
}

// SetClock overrides the time source. Intended for tests.
func (l *RevalidationLimiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
