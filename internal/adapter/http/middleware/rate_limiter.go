package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"todoapi/internal/adapter/http/helper"
	"todoapi/internal/core/port"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg"
	"todoapi/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RateLimiter struct {
	store   port.RateLimitStore
	rules   map[string]config.RateLimitConfig
	logger  *config.LokiLogger
	metrics *telemetry.AppMetrics
}

// NewRateLimiter applies rules keyed by "METHOD /route". Routes without a
// rule fall back to "default". metrics may be nil.
func NewRateLimiter(store port.RateLimitStore, rules map[string]config.RateLimitConfig, logger *config.LokiLogger, metrics *telemetry.AppMetrics) *RateLimiter {
	return &RateLimiter{
		store:   store,
		rules:   rules,
		logger:  logger,
		metrics: metrics,
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()

		if path == "" {
			path = c.Request.URL.Path
		}

		route := c.Request.Method + " " + path

		rule, ok := rl.rules[route]

		if !ok {
			rule, ok = rl.rules["default"]
		}

		if !ok || rule.Requests <= 0 {
			c.Next()
			return
		}

		identifier, keyType := rateLimitIdentity(c)
		key := fmt.Sprintf("rate_limit:%s:%s", route, identifier)

		ctx := c.Request.Context()

		count, resetAt, err := rl.store.Increment(ctx, key, rule.Window)

		if err != nil {
			// Fail open on store errors.
			rl.logger.ErrorWithTrace(ctx, "rate limit check failed",
				zap.String("route", route),
				zap.Error(err))

			c.Next()
			return
		}

		remaining := rule.Requests - count

		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rule.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if count > rule.Requests {
			rl.recordHit(ctx, path, keyType)

			retryAfter := int(time.Until(resetAt).Seconds())

			if retryAfter < 1 {
				retryAfter = 1
			}

			rl.logger.WarnWithTrace(ctx, "rate limit exceeded",
				zap.String("route", route),
				zap.String("key_type", keyType),
				zap.Int("limit", rule.Requests),
				zap.Duration("window", rule.Window))

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			helper.SendRateLimitedError(c, fmt.Sprintf("too many requests, limit is %d per %s", rule.Requests, rule.Window), retryAfter)
			return
		}

		rl.recordAllowed(ctx, path, keyType)

		c.Next()
	}
}

func (rl *RateLimiter) recordHit(ctx context.Context, path, keyType string) {
	if rl.metrics != nil {
		rl.metrics.RecordRateLimitHit(ctx, path, keyType)
	}
}

func (rl *RateLimiter) recordAllowed(ctx context.Context, path, keyType string) {
	if rl.metrics != nil {
		rl.metrics.RecordRateLimitAllowed(ctx, path, keyType)
	}
}

// rateLimitIdentity keys authenticated requests by user and everything
// else by client address.
func rateLimitIdentity(c *gin.Context) (string, string) {
	if user, ok := CurrentUser(c); ok {
		return "user_" + strconv.Itoa(user.ID), "user"
	}

	return pkg.GetClientIP(c), "ip"
}
