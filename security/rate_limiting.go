package security

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cinema-ticket/monitoring"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/hook"
	"github.com/redis/go-redis/v9"
)

var suspiciousAgents = []string{"bot", "crawler", "spider", "scraper"}

// Throttle is a fixed window request limiter backed by Redis counters.
type Throttle struct {
	redis  redis.Cmdable
	limit  int
	window time.Duration

	// Identify returns the key requests are counted under. Defaults to the
	// authenticated user id, falling back to the client IP.
	Identify func(e *core.RequestEvent) string
}

func NewThrottle(redisClient redis.Cmdable, limit int, window time.Duration) *Throttle {
	return &Throttle{
		redis:    redisClient,
		limit:    limit,
		window:   window,
		Identify: identify,
	}
}

func identify(e *core.RequestEvent) string {
	if e.Auth != nil {
		return "user:" + e.Auth.Id
	}
	return "ip:" + e.RealIP()
}

// Middleware rejects suspicious user agents and requests over the limit.
// Redis failures let the request through.
func (t *Throttle) Middleware() *hook.Handler[*core.RequestEvent] {
	return &hook.Handler[*core.RequestEvent]{
		Func: func(e *core.RequestEvent) error {
			if IsSuspiciousUserAgent(e.Request.Header.Get("User-Agent")) {
				monitoring.TrackRejected("bot")
				return apis.NewForbiddenError("Access denied.", nil)
			}

			allowed, err := t.Allow(e)
			if err != nil {
				slog.Warn("Throttle check failed", "error", err)
				return e.Next()
			}
			if !allowed {
				monitoring.TrackRejected("throttled")
				return apis.NewTooManyRequestsError("Too many requests. Please try again later.", nil)
			}
			return e.Next()
		},
	}
}

// Allow counts the request and reports whether it is within the limit.
// The window is set in the same round trip as the first count.
func (t *Throttle) Allow(e *core.RequestEvent) (bool, error) {
	ctx := e.Request.Context()
	key := fmt.Sprintf("throttle:%s", t.Identify(e))

	var incr *redis.IntCmd
	_, err := t.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, t.window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= int64(t.limit), nil
}

func IsSuspiciousUserAgent(ua string) bool {
	ua = strings.ToLower(ua)
	for _, pattern := range suspiciousAgents {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	return false
}
