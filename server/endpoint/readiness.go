package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/tashkeel/component"
)

// Readiness answers 503 naming the first unhealthy component, 200 otherwise.
func Readiness(checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var components []component.Health
		if checker != nil {
			components = checker(c.Request.Context())
		}
		for _, h := range components {
			if h.Status != component.StatusUnhealthy {
				continue
			}
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "component": h.Name})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
