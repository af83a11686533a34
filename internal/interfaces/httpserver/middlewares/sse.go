package middlewares

import (
	"github.com/gin-gonic/gin"
)

// PrepareSSE configures the HTTP response for Server Sent Events. The
// X-Accel-Buffering header stops reverse proxies from buffering chunks.
func PrepareSSE(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeaderNow()
}
