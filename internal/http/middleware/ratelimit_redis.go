package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"skirmish/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter initializes a shared Redis client used by the limiters.
// If the server does not answer a ping the client stays nil and every limiter
// fails open.
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		return
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", "addr", addr, "error", err)
		_ = client.Close()
		return
	}
	redisClient = client
	logger.Info("redis connected", "addr", addr)
}

func RedisEnabled() bool { return redisClient != nil }

// PingRedis reports whether the shared client is reachable. It is nil when
// Redis is not configured.
func PingRedis(ctx context.Context) error {
	if redisClient == nil {
		return nil
	}
	return redisClient.Ping(ctx).Err()
}

func CloseRedis() {
	if redisClient != nil {
		_ = redisClient.Close()
		redisClient = nil
	}
}

// hit bumps a fixed-window counter and returns its new value.
func hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}
	return val, nil
}

func windowKey(prefix, ident string, window time.Duration) string {
	return prefix + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + ident
}

// RedisRateLimit implements a fixed-window rate limiter using Redis INCR/EXPIRE.
// key format: rl:<window_seconds>:<client_ip>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		val, err := hit(c.Request.Context(), windowKey("rl", c.ClientIP(), window), window)
		if err != nil {
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
