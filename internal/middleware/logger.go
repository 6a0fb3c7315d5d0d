package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger middleware logs HTTP requests
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Start timer
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Process request
		c.Next()

		latency := time.Since(start)

		// Build query string
		if raw != "" {
			path = path + "?" + raw
		}

		// Auth runs inside the chain, so the subject is known by now
		subject := c.GetString(SubjectKey)
		if subject == "" {
			subject = "-"
		}

		log.Printf("[%s] %s %s %s %d %v %s",
			c.Request.Method,
			path,
			c.ClientIP(),
			subject,
			c.Writer.Status(),
			latency,
			c.Errors.String(),
		)
	}
}
