package handler

import (
	"net/http"

	. "todoapi/internal/adapter/http/helper"
	"todoapi/internal/adapter/http/middleware"
	. "todoapi/internal/adapter/http/validation"
	"todoapi/internal/core/model/request"
	"todoapi/internal/core/model/response"
	"todoapi/internal/core/port"
	"todoapi/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	svc    port.UserService
	Logger *config.LokiLogger
}

func NewUserHandler(svc port.UserService, logger *config.LokiLogger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		Logger: logger,
	}
}

// GetMe answers with the user the guard already loaded.
func (h *UserHandler) GetMe(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	c.JSON(http.StatusOK, response.NewUserResponse(user))
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	ctx := c.Request.Context()
	current, _ := middleware.CurrentUser(c)

	params, err := BindJSON[request.UpdateUserRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	user, err := h.svc.UpdateUser(ctx, current.ID, &params)

	if err != nil {
		if SendServiceError(c, err) {
			h.Logger.ErrorWithTrace(ctx, "Failed to update user",
				zap.Error(err),
				zap.Int("user_id", current.ID))
		}
		return
	}

	c.JSON(http.StatusOK, response.NewUserResponse(user))
}
