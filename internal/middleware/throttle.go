package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"novelhub/moderation-service/pkg/auth"
)

// requestRecord tracks the number of requests and the window start time
type requestRecord struct {
	count       int
	windowStart time.Time
	mu          sync.Mutex
}

// Throttle is a fixed-window per-user rate limiter
type Throttle struct {
	maxRequests int
	period      time.Duration
	now         func() time.Time

	mu        sync.Mutex
	records   map[uint64]*requestRecord
	lastSweep time.Time
}

// NewThrottle allows maxRequests per user in every period
func NewThrottle(maxRequests int, period time.Duration) *Throttle {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	if period <= 0 {
		period = time.Minute
	}
	return &Throttle{
		maxRequests: maxRequests,
		period:      period,
		now:         time.Now,
		records:     make(map[uint64]*requestRecord),
	}
}

func (t *Throttle) record(userID uint64, now time.Time) *requestRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	// drop expired windows at most once per period
	if now.Sub(t.lastSweep) >= t.period {
		for id, r := range t.records {
			r.mu.Lock()
			expired := now.Sub(r.windowStart) >= t.period
			r.mu.Unlock()
			if expired && id != userID {
				delete(t.records, id)
			}
		}
		t.lastSweep = now
	}

	r, ok := t.records[userID]
	if !ok {
		r = &requestRecord{windowStart: now}
		t.records[userID] = r
	}
	return r
}

// Allow reports whether the user may make another request and counts it
func (t *Throttle) Allow(userID uint64) bool {
	now := t.now()
	r := t.record(userID, now)

	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.windowStart) >= t.period {
		r.count = 1
		r.windowStart = now
		return true
	}
	if r.count >= t.maxRequests {
		return false
	}
	r.count++
	return true
}

// Middleware rate limits authenticated users; anonymous requests pass through
func (t *Throttle) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.GetUserFromContext(c.Request.Context())
		if err != nil {
			c.Next()
			return
		}

		if !t.Allow(user.UserID) {
			c.Header("Retry-After", formatRetryAfter(t.period))
			abortWithError(c, http.StatusTooManyRequests, "Too many requests")
			return
		}
		c.Next()
	}
}

// formatRetryAfter formats the period as seconds for Retry-After header
func formatRetryAfter(period time.Duration) string {
	seconds := int(period.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
