package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nursultanq/gymapp/pkg/metrics"
)

// Metrics records request latency for each HTTP request and counts
// successful completions per endpoint.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		status := c.Writer.Status()
		metrics.APILatency.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Observe(duration)
		if status < 400 {
			metrics.EndpointSuccess.WithLabelValues(c.Request.Method + " " + path).Inc()
		}
	}
}
