package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

type window struct {
	count int
	start time.Time
}

// fixedWindow counts requests per client IP in fixed windows.
type fixedWindow struct {
	mu      sync.Mutex
	limit   int
	size    time.Duration
	now     func() time.Time
	windows map[string]*window
}

func (f *fixedWindow) allow(key string) bool {
	now := f.now()

	f.mu.Lock()
	defer f.mu.Unlock()

	w, ok := f.windows[key]
	if !ok || now.Sub(w.start) > f.size {
		if len(f.windows) > 4096 {
			f.evictExpired(now)
		}
		w = &window{start: now}
		f.windows[key] = w
	}

	if w.count >= f.limit {
		return false
	}
	w.count++
	return true
}

func (f *fixedWindow) evictExpired(now time.Time) {
	for key, w := range f.windows {
		if now.Sub(w.start) > f.size {
			delete(f.windows, key)
		}
	}
}

func RateLimiter(limit int, size time.Duration) echo.MiddlewareFunc {
	return rateLimiter(limit, size, time.Now)
}

func rateLimiter(limit int, size time.Duration, now func() time.Time) echo.MiddlewareFunc {
	f := &fixedWindow{
		limit:   limit,
		size:    size,
		now:     now,
		windows: make(map[string]*window),
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !f.allow(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
