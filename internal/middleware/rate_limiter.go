package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"cipriano/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// windowLimiter counts hits per key in fixed windows.
type windowLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*windowEntry
	now     func() time.Time
}

type windowEntry struct {
	count     int
	windowEnd time.Time
}

func newWindowLimiter(limit int, window time.Duration) *windowLimiter {
	return &windowLimiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// allow records a hit for key and reports whether it is within the limit,
// plus when the current window ends.
func (l *windowLimiter) allow(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &windowEntry{windowEnd: now.Add(l.window)}
		l.entries[key] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

func (l *windowLimiter) purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for k, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, k)
			n++
		}
	}
	return n
}

const purgeInterval = 5 * time.Minute

var (
	loginLimiter = newWindowLimiter(10, time.Minute)
	pinLimiter   = newWindowLimiter(10, time.Minute)
	apiLimiter   *windowLimiter
	limiterOnce  sync.Once
)

// StartLimiterPurge drops expired entries every few minutes until ctx ends.
func StartLimiterPurge(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purged := loginLimiter.purge() + pinLimiter.purge()
				if apiLimiter != nil {
					purged += apiLimiter.purge()
				}
				if purged > 0 {
					log.Debug().Int("entries_purged", purged).Msg("rate limiter maps purged")
				}
			}
		}
	}()
}

// LoginRateLimiter caps PIN logins per IP; PINs are short enough to brute force.
func LoginRateLimiter() gin.HandlerFunc {
	return limitBy(loginLimiter, "Demasiados intentos de login. Intente en 1 minuto.")
}

// AdminPinRateLimiter caps admin PIN submissions per IP.
func AdminPinRateLimiter() gin.HandlerFunc {
	return limitBy(pinLimiter, "Demasiados intentos de PIN. Intente en 1 minuto.")
}

// RateLimiter is the general per-IP limiter for the whole API.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	limiterOnce.Do(func() { apiLimiter = newWindowLimiter(limit, window) })
	return limitBy(apiLimiter, "Demasiadas solicitudes. Intente nuevamente en un momento.")
}

func limitBy(l *windowLimiter, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, until := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", until.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}
