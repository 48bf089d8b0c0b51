package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// Logger tags every request with an id (kept from the caller when sent)
// and logs method, path, status and latency once it completes.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("requestId", reqID)
		c.Header(RequestIDHeader, reqID)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		if len(c.Errors) > 0 {
			log.Printf("[%s] %s %s %s %d %s errors=%s", reqID, c.Request.Method, c.Request.URL.Path, c.ClientIP(), status, latency, c.Errors.String())
			return
		}
		log.Printf("[%s] %s %s %s %d %s", reqID, c.Request.Method, c.Request.URL.Path, c.ClientIP(), status, latency)
	}
}
