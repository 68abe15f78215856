package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pubops-backend/internal/infrastructure/metrics"
)

// PrometheusMiddleware records HTTP request duration and count.
// Labels use the route pattern to keep cardinality bounded.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())

		metrics.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
