package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-list-api/internal/config"
)

// pruneThreshold bounds the counter map; above it, windows from past
// periods are dropped on the next request.
const pruneThreshold = 4096

// rateWindow is one client's counter inside the current window.
type rateWindow struct {
	start time.Time // aligned start of the window the count belongs to
	count int       // requests seen since start
}

// FixedWindowLimiter counts requests per client key inside wall-clock
// aligned windows.  Every key gets max requests per window; the counter
// resets fully at rollover instead of decaying.  The whole check-and-count
// runs under one mutex so two in-flight requests from the same client can
// never both pass a boundary check that should reject one of them.
type FixedWindowLimiter struct {
	class  string // label used in rate-limit keys ("auth", "general")
	max    int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*rateWindow

	now func() time.Time // injectable clock for tests
}

// NewFixedWindowLimiter builds a limiter for one endpoint class.
func NewFixedWindowLimiter(class string, policy config.RateLimitClass) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		class:   class,
		max:     policy.Max,
		window:  policy.Window,
		windows: make(map[string]*rateWindow),
		now:     time.Now,
	}
}

// Allow records one request for key and reports whether it fits the
// window.  remaining is the budget left after this request; retryAfter is
// how long until the window rolls over and only meaningful on rejection.
func (l *FixedWindowLimiter) Allow(key string) (allowed bool, remaining int, retryAfter time.Duration) {
	now := l.now()
	start := now.Truncate(l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.windows) > pruneThreshold {
		for k, w := range l.windows {
			if !w.start.Equal(start) {
				delete(l.windows, k)
			}
		}
	}

	w, ok := l.windows[key]
	if !ok || !w.start.Equal(start) {
		w = &rateWindow{start: start}
		l.windows[key] = w
	}
	if w.count >= l.max {
		return false, 0, start.Add(l.window).Sub(now)
	}
	w.count++
	return true, l.max - w.count, 0
}

// Middleware returns an Echo middleware enforcing this limiter per client
// IP.  Rejections carry Retry-After plus the X-RateLimit headers so the
// client knows how soon to come back.
func (l *FixedWindowLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key := l.class + ":" + ip

			allowed, remaining, retryAfter := l.Allow(key)

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(l.max))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				secs := int(math.Ceil(retryAfter.Seconds()))
				if secs < 0 {
					secs = 0
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, map[string]any{
					"error":       "too_many_requests",
					"message":     "rate limit exceeded",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

// NewRateLimiters builds the auth and general class middlewares from one
// config.  When rate limiting is disabled both are pass-throughs.
func NewRateLimiters(cfg config.RateLimitConfig) (auth, general echo.MiddlewareFunc) {
	if !cfg.Enabled {
		passthrough := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
		return passthrough, passthrough
	}
	return NewFixedWindowLimiter("auth", cfg.Auth).Middleware(),
		NewFixedWindowLimiter("general", cfg.General).Middleware()
}
