package pkg

import (
	"github.com/gin-gonic/gin"
)

// GetClientIP defers to gin, which only honours X-Forwarded-For and
// X-Real-IP when the socket peer is a trusted proxy.
func GetClientIP(c *gin.Context) string {
	ip := c.ClientIP()

	if ip == "" {
		return "unknown"
	}

	return ip
}
