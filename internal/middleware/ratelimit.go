package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// RateLimiter counts requests per key inside a fixed window. When a redis
// client is provided the counters are shared across instances; otherwise it
// falls back to an in-memory map.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration

	mu    sync.Mutex
	local map[string]*windowCount
}

type windowCount struct {
	count   int
	expires time.Time
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
		local:  make(map[string]*windowCount),
	}
}

func (r *RateLimiter) Allow(ctx context.Context, key string) bool {
	if r.client != nil {
		return r.allowRedis(ctx, key)
	}
	return r.allowLocal(key)
}

func (r *RateLimiter) allowRedis(ctx context.Context, key string) bool {
	redisKey := "ratelimit:" + key
	n, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		// redis down, let the request through rather than block payments
		return true
	}
	if n == 1 {
		r.client.Expire(ctx, redisKey, r.window)
	}
	return n <= int64(r.limit)
}

func (r *RateLimiter) allowLocal(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	w, ok := r.local[key]
	if !ok || now.After(w.expires) {
		r.local[key] = &windowCount{count: 1, expires: now.Add(r.window)}
		if len(r.local) > 10000 {
			for k, v := range r.local {
				if now.After(v.expires) {
					delete(r.local, k)
				}
			}
		}
		return true
	}
	w.count++
	return w.count <= r.limit
}

// RateLimitByIP limits unauthenticated endpoints by client IP.
func RateLimitByIP(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.Request.Context(), "ip:"+c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// RateLimitByUser limits authenticated endpoints per user. Must run after
// AuthRequired.
func RateLimitByUser(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == 0 {
			c.Next()
			return
		}
		if !limiter.Allow(c.Request.Context(), fmt.Sprintf("user:%d", userID)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
