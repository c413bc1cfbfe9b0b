package middleware

import (
	"time"

	"todoapi/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoggingMiddleware writes one access log entry per request. Query strings
// are left out since cursors and ids are not useful in logs.
func LoggingMiddleware(logger *config.LokiLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		}

		current := GetCurrent(c)

		if requestID, ok := current.GetString("request_id"); ok {
			fields = append(fields, zap.String("request_id", requestID))
		}

		if userID, ok := current.GetInt("user_id"); ok {
			fields = append(fields, zap.Int("user_id", userID))
		}

		ctx := c.Request.Context()

		switch {
		case c.Writer.Status() >= 500:
			logger.ErrorWithTrace(ctx, "HTTP Request", fields...)
		case c.Writer.Status() >= 400:
			logger.WarnWithTrace(ctx, "HTTP Request", fields...)
		default:
			logger.InfoWithTrace(ctx, "HTTP Request", fields...)
		}
	}
}
