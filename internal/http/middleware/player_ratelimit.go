package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// PlayerRateLimit limits requests per authenticated player rather than per
// IP. JWT must run first.
func PlayerRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		userID, ok := c.Get("user_id")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, _ := userID.(int64)

		val, err := hit(c.Request.Context(), windowKey("player_rl", strconv.FormatInt(id, 10), window), window)
		if err != nil {
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues("player:" + c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues("player:" + c.FullPath()).Inc()
		c.Next()
	}
}

// CommandLimiter throttles in-match commands per player with the same
// fixed-window counter. It allows everything when Redis is down.
type CommandLimiter struct {
	Max    int
	Window time.Duration
}

func NewCommandLimiter(maxCommands int, window time.Duration) *CommandLimiter {
	return &CommandLimiter{Max: maxCommands, Window: window}
}

func (l *CommandLimiter) Allow(ctx context.Context, playerID int64) bool {
	if redisClient == nil || l.Max <= 0 {
		return true
	}
	val, err := hit(ctx, windowKey("cmd_rl", strconv.FormatInt(playerID, 10), l.Window), l.Window)
	if err != nil {
		return true
	}
	if val > int64(l.Max) {
		RLBlocked.WithLabelValues("ws:command").Inc()
		return false
	}
	RLRequests.WithLabelValues("ws:command").Inc()
	return true
}
