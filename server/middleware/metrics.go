package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/tashkeel/observability"
)

// Metrics records request count and latency per route. Unmatched routes
// are recorded as "unmatched".
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequest(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
