package http

import (
	"todoapi/internal/adapter/http/handler"
	"todoapi/internal/adapter/http/middleware"
	"todoapi/internal/adapter/http/routes"
	"todoapi/internal/core/port"
	"todoapi/internal/core/service"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg/auth"
	"todoapi/pkg/config"
	"todoapi/pkg/db/cursor"

	"github.com/gin-gonic/gin"
)

// Dependencies are the adapters chosen at startup. RateLimitStore and
// Metrics may be nil.
type Dependencies struct {
	UserRepo       port.UserRepository
	TaskRepo       port.TaskRepository
	RateLimitStore port.RateLimitStore
	Telemetry      port.Telemetry
	Metrics        *telemetry.AppMetrics
	Logger         *config.LokiLogger
}

type Container struct {
	UserRepo port.UserRepository
	TaskRepo port.TaskRepository

	Tokens *auth.JWT

	AuthService port.AuthService
	TaskService port.TaskService
	UserService port.UserService

	AuthHandler *handler.AuthHandler
	TaskHandler *handler.TaskHandler
	UserHandler *handler.UserHandler

	Guard       gin.HandlerFunc
	RateLimiter *middleware.RateLimiter
}

func NewContainer(cfg *config.AppConfig, deps Dependencies) (*Container, error) {
	logger := deps.Logger

	if logger == nil {
		logger = config.NewNopLogger()
	}

	tokens := auth.NewJWT([]byte(cfg.JWTSecret), cfg.JWTTTL)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	cursors := cursor.NewCodec(cfg.CursorSecretKey)

	authSvc, err := service.NewAuthService(deps.UserRepo, hasher, tokens, deps.Telemetry)

	if err != nil {
		return nil, err
	}

	userSvc := service.NewUserService(deps.UserRepo, deps.Telemetry)
	taskSvc := service.NewTaskService(deps.TaskRepo, cursors, deps.Telemetry)

	container := &Container{
		UserRepo: deps.UserRepo,
		TaskRepo: deps.TaskRepo,

		Tokens: tokens,

		AuthService: authSvc,
		TaskService: taskSvc,
		UserService: userSvc,

		AuthHandler: handler.NewAuthHandler(authSvc, logger),
		TaskHandler: handler.NewTaskHandler(taskSvc, logger),
		UserHandler: handler.NewUserHandler(userSvc, logger),

		Guard: middleware.IdentityGuard(tokens, userSvc, logger),
	}

	if cfg.RateLimitEnabled && deps.RateLimitStore != nil {
		container.RateLimiter = middleware.NewRateLimiter(deps.RateLimitStore, cfg.RateLimitConfigs, logger, deps.Metrics)
	}

	return container, nil
}

func (c *Container) Handlers() routes.HandlersConfig {
	return routes.HandlersConfig{
		AuthHandler: c.AuthHandler,
		TaskHandler: c.TaskHandler,
		UserHandler: c.UserHandler,
		Guard:       c.Guard,
		RateLimiter: c.RateLimiter,
	}
}
