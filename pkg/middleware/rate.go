// Package middleware provides the HTTP middleware used by the kernel.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/shashiranjanraj/catalog/pkg/apperr"
	"github.com/shashiranjanraj/catalog/pkg/ctx"
	"github.com/shashiranjanraj/catalog/pkg/response"
)

// bucket tracks a fixed-window request count for one client.
type bucket struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

func (b *bucket) allow(now time.Time, max int, window time.Duration) (remaining int, resetAt time.Time, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !now.Before(b.resetAt) {
		b.count = 0
		b.resetAt = now.Add(window)
	}

	b.count++
	remaining = max - b.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, b.resetAt, b.count <= max
}

// RateLimiter limits each client IP to max requests per window.
type RateLimiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		max:     max,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// getBucket also evicts expired buckets once per window so long-running
// servers do not grow the map without bound.
func (l *RateLimiter) getBucket(ip string, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.window {
		for key, b := range l.buckets {
			b.mu.Lock()
			expired := !now.Before(b.resetAt)
			b.mu.Unlock()
			if expired {
				delete(l.buckets, key)
			}
		}
		l.lastSweep = now
	}

	if b, ok := l.buckets[ip]; ok {
		return b
	}
	b := &bucket{resetAt: now.Add(l.window)}
	l.buckets[ip] = b
	return b
}

// Middleware answers 429 TOO_MANY_REQUESTS once a client is over the limit.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := l.now()
		remaining, resetAt, ok := l.getBucket(ctx.ClientIP(r), now).allow(now, l.max, l.window)

		w.Header().Set("RateLimit-Limit", strconv.Itoa(l.max))
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("RateLimit-Reset", strconv.Itoa(int(resetAt.Sub(now).Seconds())))

		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(resetAt.Sub(now).Seconds())))
			response.Error(w, apperr.TooManyRequests())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimit returns a middleware that limits each IP to max requests per window.
// Example: middleware.RateLimit(100, 15*time.Minute)
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	return NewRateLimiter(max, window).Middleware
}
