package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/aawaaz/complaint-desk/internal/apperrors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter counts requests per key in fixed windows
type Limiter interface {
	// Allow records one request for key and reports whether it is within limit
	Allow(ctx context.Context, key string, limit int) (bool, error)
}

// RateLimit rejects clients that exceed rpm requests per minute with 429.
// A limiter error lets the request through. rpm <= 0 disables limiting.
func RateLimit(limiter Limiter, rpm int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rpm <= 0 || limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := limiter.Allow(r.Context(), clientKey(r), rpm)
			if err == nil && !ok {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded", apperrors.CodeRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller by remote address; RealIP runs earlier
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// MemoryLimiter is an in-process fixed-window counter
type MemoryLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	clients map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	count int
	start time.Time
}

// NewMemoryLimiter creates a limiter with one-minute windows
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		window:  time.Minute,
		clients: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string, limit int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, exists := l.clients[key]
	if !exists || now.Sub(c.start) >= l.window {
		l.clients[key] = &bucket{count: 1, start: now}
		return true, nil
	}
	c.count++
	return c.count <= limit, nil
}

// Run drops stale windows every five minutes until ctx is cancelled
func (l *MemoryLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *MemoryLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, c := range l.clients {
		if now.Sub(c.start) > 2*l.window {
			delete(l.clients, key)
		}
	}
}

// RedisLimiter shares fixed-window counters across instances through Redis
type RedisLimiter struct {
	rdb    redis.Cmdable
	prefix string
	window time.Duration
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewRedisLimiter creates a limiter with one-minute windows
func NewRedisLimiter(rdb redis.Cmdable, logger *zap.SugaredLogger) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		prefix: "complaintdesk:ratelimit:",
		window: time.Minute,
		logger: logger,
		now:    time.Now,
	}
}

// Allow fails open: a Redis error is logged and the request is allowed
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int) (bool, error) {
	slot := l.now().Unix() / int64(l.window/time.Second)
	k := fmt.Sprintf("%s%s:%s", l.prefix, key, strconv.FormatInt(slot, 10))

	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, l.window)
		return nil
	})
	if err != nil {
		l.logger.Warnw("Rate limiter unavailable, allowing request", "error", err)
		return true, nil
	}
	return incr.Val() <= int64(limit), nil
}
