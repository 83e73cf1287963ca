package http

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	applog "github.com/Marcella2706/task2-GeekHaven/internal/log"
	"github.com/Marcella2706/task2-GeekHaven/internal/metrics"
)

const (
	MsgGlobalLimit = "Too many requests from this IP, please try again later."
	MsgAuthLimit   = "Too many authentication attempts, please try again later."
)

// Counter counts hits on key within a window ending at windowEnd.
// *repo.Redis satisfies it for limits shared between instances.
type Counter interface {
	IncrWindow(ctx context.Context, key string, windowEnd time.Time) (int64, error)
}

type memHit struct {
	count int64
	end   time.Time
}

// MemoryCounter is the process-local Counter.
type MemoryCounter struct {
	Now func() time.Time

	mu        sync.Mutex
	hits      map[string]*memHit
	nextSweep time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{Now: time.Now, hits: make(map[string]*memHit)}
}

func (m *MemoryCounter) IncrWindow(_ context.Context, key string, windowEnd time.Time) (int64, error) {
	now := m.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.After(m.nextSweep) {
		for k, h := range m.hits {
			if !now.Before(h.end) {
				delete(m.hits, k)
			}
		}
		m.nextSweep = now.Add(time.Minute)
	}
	h, ok := m.hits[key]
	if !ok || !now.Before(h.end) {
		h = &memHit{end: windowEnd}
		m.hits[key] = h
	}
	h.count++
	return h.count, nil
}

// RateLimiter is a fixed-window limiter per client IP. A window starts at now.Truncate(Window).
type RateLimiter struct {
	Name    string
	Max     int
	Window  time.Duration
	Message string
	Store   Counter
	Now     func() time.Time
}

func NewRateLimiter(name string, max int, window time.Duration, msg string, store Counter) *RateLimiter {
	return &RateLimiter{Name: name, Max: max, Window: window, Message: msg, Store: store, Now: time.Now}
}

func ClientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	host, _, err := net.SplitHostPort(ip)
	if err == nil && host != "" {
		return host
	}
	return ip
}

func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := rl.Now()
		start := now.Truncate(rl.Window)
		end := start.Add(rl.Window)
		key := "rl:" + rl.Name + ":" + ClientIP(c) + ":" + strconv.FormatInt(start.Unix(), 10)

		n, err := rl.Store.IncrWindow(c.Request.Context(), key, end)
		if err != nil {
			applog.Ctx(c.Request.Context()).Warn("rate limit store unavailable, allowing request",
				zap.String("limiter", rl.Name), zap.Error(err))
			c.Next()
			return
		}

		remaining := int64(rl.Max) - n
		if remaining < 0 {
			remaining = 0
		}
		reset := strconv.FormatInt(int64((end.Sub(now)+time.Second-1)/time.Second), 10)
		c.Header("RateLimit-Limit", strconv.Itoa(rl.Max))
		c.Header("RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("RateLimit-Reset", reset)

		if n > int64(rl.Max) {
			metrics.RateLimited.WithLabelValues(rl.Name).Inc()
			c.Header("Retry-After", reset)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": rl.Message})
			return
		}
		c.Next()
	}
}
