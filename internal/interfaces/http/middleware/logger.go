package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"claimdrop.backend/internal/observability"
	"claimdrop.backend/pkg/logger"
)

// LoggerMiddleware logs each request through the structured logger and feeds
// the request-duration histogram.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		// The route template, not the raw path, keeps the metric cardinality
		// bounded; unmatched requests fall back to the path.
		route := c.FullPath()
		if route == "" {
			route = path
		}
		observability.Default.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(latency.Seconds())

		if raw != "" {
			path = path + "?" + raw
		}
		logger.LogRequest(c.Request.Context(), c.Request.Method, path, c.Writer.Status(), latency, c.ClientIP())
	}
}
