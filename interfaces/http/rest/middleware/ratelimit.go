package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	apperrors "mindgraph/pkg/errors"
)

// SlidingWindowLimiter allows at most limit requests per key within any
// window of the configured size
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	windows    map[string][]time.Time
	limit      int
	windowSize time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter
func NewSlidingWindowLimiter(limit int, windowSize time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		windows:    make(map[string][]time.Time),
		limit:      limit,
		windowSize: windowSize,
		now:        time.Now,
	}
}

// Allow records a request for key and reports whether it is within the limit
func (l *SlidingWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.windowSize)
	if now.Sub(l.lastSweep) > l.windowSize {
		l.forgetLocked(windowStart)
		l.lastSweep = now
	}

	kept := l.windows[key][:0]
	for _, t := range l.windows[key] {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= l.limit {
		l.windows[key] = kept
		return false
	}
	l.windows[key] = append(kept, now)
	return true
}

// Forget drops keys with no requests in the current window. Allow calls
// it once per window.
func (l *SlidingWindowLimiter) Forget() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.forgetLocked(l.now().Add(-l.windowSize))
}

func (l *SlidingWindowLimiter) forgetLocked(windowStart time.Time) {
	for key, times := range l.windows {
		if len(times) == 0 || !times[len(times)-1].After(windowStart) {
			delete(l.windows, key)
		}
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimit rejects clients that exceed the limiter with 429. Clients are
// keyed by remote address, which RealIP has already resolved.
func RateLimit(limiter *SlidingWindowLimiter, errs *apperrors.ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow("ip:" + clientIP(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(int(limiter.windowSize.Seconds())))
				errs.Handle(w, r, apperrors.NewRateLimitError(limiter.windowSize))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
