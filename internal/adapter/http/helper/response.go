package helper

import (
	"errors"
	"net/http"

	. "todoapi/internal/adapter/http/validation"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/response"

	"github.com/gin-gonic/gin"
)

const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeConflict        = "CONFLICT"
	CodeNotFound        = "NOT_FOUND"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL_ERROR"
)

func SendError(c *gin.Context, statusCode int, code string, errors []response.ValidationError, details ...any) {
	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errors,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.AbortWithStatusJSON(statusCode, errorResponse)
}

func single(field, message string) []response.ValidationError {
	return []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}
}

func SendValidationError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, CodeValidation, FormatValidationErrors(err))
}

func SendInternalError(c *gin.Context, message string, details ...any) {
	SendError(c, http.StatusInternalServerError, CodeInternal, single("server", message), details...)
}

// SendUnauthenticatedError is for requests without a usable bearer token.
func SendUnauthenticatedError(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="todoapi"`)
	SendError(c, http.StatusUnauthorized, CodeUnauthenticated, single("auth", message))
}

// SendUnauthorizedError is for rejected login credentials.
func SendUnauthorizedError(c *gin.Context, message string) {
	SendError(c, http.StatusUnauthorized, CodeUnauthorized, single("auth", message))
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	SendError(c, http.StatusBadRequest, CodeBadRequest, single(field, message))
}

func SendNotFoundError(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, CodeNotFound, single("resource", message))
}

func SendConflictError(c *gin.Context, field string, message string) {
	SendError(c, http.StatusConflict, CodeConflict, single(field, message))
}

func SendRateLimitedError(c *gin.Context, message string, retryAfter int) {
	SendError(c, http.StatusTooManyRequests, CodeRateLimited, single("request", message), gin.H{
		"retry_after": retryAfter,
	})
}

// SendServiceError maps a core error onto the HTTP taxonomy. It reports
// whether the error was an unexpected one, so callers log only those.
func SendServiceError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		SendNotFoundError(c, "resource not found")
	case errors.Is(err, domain.ErrConflict):
		SendConflictError(c, "email", "email already registered")
	case errors.Is(err, domain.ErrUnauthorized):
		SendUnauthorizedError(c, "invalid email or password")
	case errors.Is(err, domain.ErrTokenExpired):
		SendUnauthenticatedError(c, "token expired")
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrUnauthenticated):
		SendUnauthenticatedError(c, "invalid token")
	case errors.Is(err, domain.ErrInvalidCursor):
		SendBadRequestError(c, "cursor", "invalid cursor")
	default:
		SendInternalError(c, "internal server error")
		return true
	}

	return false
}
