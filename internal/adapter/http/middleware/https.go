package middleware

import (
	"net/http"
	"strings"

	"todoapi/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HTTPSRedirect sends plain HTTP requests to the https URL when enabled.
// Requests already terminated by a proxy (X-Forwarded-Proto) and local
// hosts pass through.
func HTTPSRedirect(enabled bool, logger *config.LokiLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled || c.Request.TLS != nil {
			c.Next()
			return
		}

		if strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
			c.Next()
			return
		}

		host := c.Request.Host

		if strings.HasPrefix(host, "localhost") || strings.HasPrefix(host, "127.0.0.1") {
			c.Next()
			return
		}

		httpsURL := "https://" + host + c.Request.URL.RequestURI()

		logger.InfoWithTrace(c.Request.Context(), "redirecting to https",
			zap.String("original_url", c.Request.URL.String()),
			zap.String("https_url", httpsURL))

		c.Redirect(http.StatusMovedPermanently, httpsURL)
		c.Abort()
	}
}
