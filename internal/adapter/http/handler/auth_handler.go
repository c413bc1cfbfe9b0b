package handler

import (
	"net/http"

	. "todoapi/internal/adapter/http/helper"
	. "todoapi/internal/adapter/http/validation"
	"todoapi/internal/core/model/request"
	"todoapi/internal/core/model/response"
	"todoapi/internal/core/port"
	"todoapi/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc    port.AuthService
	Logger *config.LokiLogger
}

func NewAuthHandler(svc port.AuthService, logger *config.LokiLogger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		Logger: logger,
	}
}

func (a *AuthHandler) SignUp(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := BindJSON[request.SignUpRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	if _, err := a.svc.SignUp(ctx, &params); err != nil {
		if SendServiceError(c, err) {
			a.Logger.ErrorWithTrace(ctx, "Failed to sign up", zap.Error(err))
		}
		return
	}

	c.JSON(http.StatusCreated, response.MessageResponse{Message: "ok"})
}

func (a *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := BindJSON[request.LoginRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	token, err := a.svc.Login(ctx, &params)

	if err != nil {
		if SendServiceError(c, err) {
			a.Logger.ErrorWithTrace(ctx, "Failed to log in", zap.Error(err))
		}
		return
	}

	c.JSON(http.StatusOK, response.TokenResponse{AccessToken: token})
}
