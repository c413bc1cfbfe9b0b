package middleware

import (
	"errors"
	"strings"

	"todoapi/internal/adapter/http/helper"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	"todoapi/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const currentUserKey = "current_user"

// IdentityGuard turns a bearer token into the authenticated user. The user
// is loaded on every request, so tokens of deleted users stop working.
func IdentityGuard(verifier port.TokenVerifier, users port.UserService, logger *config.LokiLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))

		if !ok {
			helper.SendUnauthenticatedError(c, "missing bearer token")
			return
		}

		userID, err := verifier.Verify(token)

		if err != nil {
			if errors.Is(err, domain.ErrTokenExpired) {
				helper.SendUnauthenticatedError(c, "token expired")
				return
			}

			helper.SendUnauthenticatedError(c, "invalid token")
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), userID)

		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				helper.SendUnauthenticatedError(c, "invalid token")
				return
			}

			logger.ErrorWithTrace(c.Request.Context(), "identity lookup failed",
				zap.Int("user_id", userID),
				zap.Error(err))

			helper.SendInternalError(c, "internal server error")
			return
		}

		c.Set(currentUserKey, user)

		GetCurrent(c).Set("user_id", user.ID)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")

	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

// CurrentUser returns the user resolved by IdentityGuard.
func CurrentUser(c *gin.Context) (domain.User, bool) {
	value, ok := c.Get(currentUserKey)

	if !ok {
		return domain.User{}, false
	}

	user, ok := value.(domain.User)

	return user, ok
}
