package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/thomas-vilte/mateticket/internal/cache"
	"github.com/thomas-vilte/mateticket/internal/logger"
)

const maxAuthPrefix = 20

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Count     int64
	// Reset is when the current window ends.
	Reset time.Time
}

// RetryAfter is the time left until the window resets, rounded up to whole
// seconds.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	left := d.Reset.Sub(now)
	if left <= 0 {
		return 0
	}
	return (left + time.Second - 1).Truncate(time.Second)
}

// Limiter is a fixed window request counter over a cache.Store.
type Limiter struct {
	store  cache.Store
	limit  int
	window time.Duration
	now    func() time.Time
}

func New(store cache.Store, limit int, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (l *Limiter) windowStart(now time.Time) time.Time {
	return now.Truncate(l.window)
}

// Allow counts a request from identifier. When the store fails the request
// is let through and the error is only logged.
func (l *Limiter) Allow(ctx context.Context, identifier string) Decision {
	now := l.now()
	start := l.windowStart(now)
	d := Decision{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - 1,
		Reset:     start.Add(l.window),
	}

	key := fmt.Sprintf("rate_limit:%s:%d", identifier, start.Unix())
	count, err := l.store.Increment(ctx, key, l.window)
	if err != nil {
		logger.FromContext(ctx).Warn("rate limit store unavailable, allowing request",
			"identifier", identifier,
			"error", err)
		return d
	}

	d.Count = count
	d.Allowed = count <= int64(l.limit)
	d.Remaining = max(0, l.limit-int(count))
	return d
}

// Identifier returns "user:" plus a prefix of the Authorization header, or
// "ip:" plus the client address, preferring X-Forwarded-For.
func Identifier(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if len(auth) > maxAuthPrefix {
			auth = auth[:maxAuthPrefix]
		}
		return "user:" + auth
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return "ip:" + ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		host = "unknown"
	}
	return "ip:" + host
}

// Exempt reports whether path skips rate limiting.
func Exempt(path string) bool {
	return path == "/" || path == "/metrics" || path == "/health" || strings.HasPrefix(path, "/health/")
}
