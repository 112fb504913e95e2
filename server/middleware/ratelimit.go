package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/kbukum/minutes/errors"
)

// RateLimit allows at most perMinute requests per client IP in a sliding
// one-minute window. Requests over the limit get 429.
func RateLimit(perMinute int) Middleware {
	if perMinute <= 0 {
		perMinute = 60
	}
	rl := &rateLimiter{requests: make(map[string][]time.Time), limit: perMinute, now: time.Now}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(clientIP(r)) {
				body := apperrors.RateLimited().ToResponse()
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type rateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	now      func() time.Time
}

// allow records a request for key. Expired entries are pruned on every call,
// so idle keys disappear without a background sweeper.
func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-time.Minute)
	for k, times := range rl.requests {
		if k != key && (len(times) == 0 || !times[len(times)-1].After(cutoff)) {
			delete(rl.requests, k)
		}
	}

	valid := rl.requests[key][:0]
	for _, t := range rl.requests[key] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}
	rl.requests[key] = append(valid, rl.now())
	return true
}
