package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig holds the token-bucket parameters for the credential
// endpoints. Signup and login run before authentication, so the limiter
// keys on the client IP rather than a user id.
type RateLimiterConfig struct {
	Rate            rate.Limit    // sustained requests per second
	Burst           int           // bucket size
	CleanupInterval time.Duration // how often idle client entries are dropped
}

// DefaultRateLimiterConfig allows 10 credential requests per minute per
// client with a burst of 10.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Rate:            rate.Limit(10.0 / 60.0),
		Burst:           10,
		CleanupInterval: 5 * time.Minute,
	}
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter throttles requests per client IP. Idle entries are reaped by
// a background goroutine so the map does not grow without bound.
type RateLimiter struct {
	config RateLimiterConfig
	logger *slog.Logger

	mu      sync.Mutex
	clients map[string]*clientLimiter

	stopCh chan struct{}
}

// NewRateLimiter creates a RateLimiter and starts its cleanup loop.
func NewRateLimiter(config RateLimiterConfig, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		logger:  logger,
		clients: make(map[string]*clientLimiter),
		stopCh:  make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// hint.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			if !rl.limiterFor(key).Allow() {
				rl.logger.Warn("rate limit exceeded",
					slog.String("client", key),
					slog.String("path", r.URL.Path),
				)
				writeRateLimited(w, rl.config.Rate)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientCount returns the number of tracked clients, for tests.
func (rl *RateLimiter) ClientCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if cl, ok := rl.clients[key]; ok {
		cl.lastAccess = time.Now()
		return cl.limiter
	}

	limiter := rate.NewLimiter(rl.config.Rate, rl.config.Burst)
	rl.clients[key] = &clientLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup drops clients not seen for twice the cleanup interval.
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.clients {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.clients, key)
		}
	}
}

// clientIP extracts the client address without the ephemeral port, so one
// client maps to one bucket across connections.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeRateLimited(w http.ResponseWriter, r rate.Limit) {
	// Seconds until one token is refilled.
	retryAfter := int(math.Ceil(1.0 / float64(r)))
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	json.NewEncoder(w).Encode(map[string]string{
		"error":   "rate_limit_exceeded",
		"message": "too many requests, try again later",
	})
}
