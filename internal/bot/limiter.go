package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL   = 10 * time.Minute
	limiterPruneSize = 1024
)

// chatLimiter is a token bucket per chat.
type chatLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	entries map[int64]*limiterEntry
	now     func() time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
	// warned is set once a chat was told to slow down and cleared when it is allowed again.
	warned bool
}

func newChatLimiter(perMin, burst int) *chatLimiter {
	l := &chatLimiter{entries: map[int64]*limiterEntry{}, now: time.Now}
	l.setLimits(perMin, burst)
	return l
}

func perMinute(n int) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(n))
}

// setLimits updates existing buckets in place so hot reloads take effect immediately.
func (l *chatLimiter) setLimits(perMin, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limit = perMinute(perMin)
	l.burst = max(1, burst)
	now := l.now()
	for _, e := range l.entries {
		e.lim.SetLimitAt(now, l.limit)
		e.lim.SetBurstAt(now, l.burst)
	}
}

// allow reports whether chatID may be served now, and whether the caller
// should send a one-time "slow down" notice.
func (l *chatLimiter) allow(chatID int64) (ok, warn bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	e := l.entries[chatID]
	if e == nil {
		if len(l.entries) >= limiterPruneSize {
			l.pruneLocked(now)
		}
		e = &limiterEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.entries[chatID] = e
	}
	e.lastSeen = now
	if e.lim.AllowN(now, 1) {
		e.warned = false
		return true, false
	}
	if e.warned {
		return false, false
	}
	e.warned = true
	return false, true
}

func (l *chatLimiter) pruneLocked(now time.Time) {
	for id, e := range l.entries {
		if now.Sub(e.lastSeen) > limiterIdleTTL {
			delete(l.entries, id)
		}
	}
}
