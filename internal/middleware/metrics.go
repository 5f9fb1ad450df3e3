package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edupulse/presence-api/internal/service"
)

// Paths the platform polls constantly; recording them would drown out the
// attendance traffic the dashboards care about.
var ignoredPaths = map[string]struct{}{
	"/health":  {},
	"/ready":   {},
	"/metrics": {},
}

// Metrics returns middleware that captures request metrics using the provided service.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if _, skip := ignoredPaths[path]; skip {
			return
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
