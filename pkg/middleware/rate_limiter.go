package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/jordanlanch/brainbuddy/pkg/models"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client key
type RateLimiter struct {
	visitors map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit // requests per second
	b        int        // burst
	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a new rate limiter. Call Stop to end the cleanup loop.
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}

	rl := &RateLimiter{
		visitors: make(map[string]*rate.Limiter),
		r:        rate.Limit(float64(requestsPerMinute) / 60.0),
		b:        burst,
		done:     make(chan struct{}),
	}

	go rl.cleanupVisitors(3 * time.Minute)

	return rl
}

// GetLimiter returns the limiter for key, creating it on first use
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.visitors[key]
	if !exists {
		limiter = rate.NewLimiter(rl.r, rl.b)
		rl.visitors[key] = limiter
	}

	return limiter
}

// Stop ends the cleanup loop
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// cleanupVisitors drops limiters that have refilled completely
func (rl *RateLimiter) cleanupVisitors(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.prune()
		}
	}
}

func (rl *RateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, limiter := range rl.visitors {
		if limiter.Tokens() >= float64(rl.b) {
			delete(rl.visitors, key)
		}
	}
}

// Middleware limits by session user when one is set, otherwise by client IP
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ip:" + c.RealIP()
			if userID, ok := c.Get("user_id").(string); ok && userID != "" {
				key = "user:" + userID
			}

			if !rl.GetLimiter(key).Allow() {
				return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
					Error:   "rate_limit_exceeded",
					Message: "Too many requests. Please try again later.",
				})
			}

			return next(c)
		}
	}
}
