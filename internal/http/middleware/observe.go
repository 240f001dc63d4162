package middleware

import (
	"strconv"
	"time"

	"skirmish/internal/logger"

	"github.com/gin-gonic/gin"
)

// Observe records request latency and logs each request at debug level.
func Observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		HTTPDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(elapsed.Seconds())
		logger.Debug("http request", "method", c.Request.Method, "route", route, "status", status, "duration", elapsed)
	}
}
