package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"busline/internal/response"
)

const (
	visitorTTL    = 10 * time.Minute
	evictInterval = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter: token bucket на каждый IP клиента.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	now      func() time.Time
	evicted  time.Time // Момент последней очистки visitors
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow расходует токен клиента key.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	if now.Sub(l.evicted) >= evictInterval {
		l.evict(now)
	}
	return v.limiter.AllowN(now, 1)
}

// evict удаляет клиентов, не обращавшихся дольше visitorTTL.
func (l *RateLimiter) evict(now time.Time) {
	l.evicted = now
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, key)
		}
	}
}

// RateLimit ограничивает частоту запросов с одного IP. rps <= 0 отключает ограничение.
func RateLimit(l *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.rps <= 0 {
			c.Next()
			return
		}
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "Слишком много запросов, попробуйте позже",
			})
			return
		}
		c.Next()
	}
}
