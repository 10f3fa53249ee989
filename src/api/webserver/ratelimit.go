package webserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter decides whether key may make another request now.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Rate() int
	Window() time.Duration
}

// RateLimiter is an in-process sliding window. Expired timestamps are pruned
// on access, so it needs no background goroutine.
type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	rate     int           // requests per window
	window   time.Duration // time window
	now      func() time.Time
	calls    int
}

func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		rate:     rate,
		window:   window,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Rate() int             { return rl.rate }
func (rl *RateLimiter) Window() time.Duration { return rl.window }

func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	valid := recent(rl.requests[key], now, rl.window)

	// Sweep idle keys every so often so the map does not grow without bound.
	rl.calls++
	if rl.calls%256 == 0 {
		rl.cleanup(now)
	}

	if len(valid) >= rl.rate {
		rl.requests[key] = valid
		return false, nil
	}
	rl.requests[key] = append(valid, now)
	return true, nil
}

func (rl *RateLimiter) cleanup(now time.Time) {
	for key, times := range rl.requests {
		valid := recent(times, now, rl.window)
		if len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

func recent(times []time.Time, now time.Time, window time.Duration) []time.Time {
	valid := times[:0]
	for _, t := range times {
		if now.Sub(t) < window {
			valid = append(valid, t)
		}
	}
	return valid
}

const redisKeyPrefix = "claimcheck:ratelimit:"

// RedisLimiter is a fixed-window counter shared by every server instance
// pointed at the same Redis.
type RedisLimiter struct {
	rdb    *redis.Client
	rate   int
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(rdb *redis.Client, rate int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, rate: rate, window: window, now: time.Now}
}

// NewRedisClient parses url the way redis.ParseURL does.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return redis.NewClient(opt), nil
}

func (rl *RedisLimiter) Rate() int             { return rl.rate }
func (rl *RedisLimiter) Window() time.Duration { return rl.window }

func (rl *RedisLimiter) key(client string) string {
	bucket := rl.now().UnixNano() / int64(rl.window)
	return redisKeyPrefix + client + ":" + strconv.FormatInt(bucket, 10)
}

func (rl *RedisLimiter) Allow(ctx context.Context, client string) (bool, error) {
	key := rl.key(client)
	var incr *redis.IntCmd
	_, err := rl.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.Expire(ctx, key, rl.window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= int64(rl.rate), nil
}

// RateLimitMiddleware rejects clients over the limit with 429. A limiter
// backend failure lets the request through.
func RateLimitMiddleware(limiter Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()

		ok, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.String("client", key), zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(limiter.Window().Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("rate limit exceeded: %d requests per %v", limiter.Rate(), limiter.Window()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
