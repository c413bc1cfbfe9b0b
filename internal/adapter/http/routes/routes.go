package routes

import (
	"fmt"

	"todoapi/internal/adapter/http/handler"
	"todoapi/internal/adapter/http/middleware"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg/config"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type HandlersConfig struct {
	AuthHandler *handler.AuthHandler
	TaskHandler *handler.TaskHandler
	UserHandler *handler.UserHandler

	// Guard resolves the caller on every protected route.
	Guard gin.HandlerFunc
	// RateLimiter is optional.
	RateLimiter *middleware.RateLimiter
}

func SetupRouterWithConfig(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *config.LokiLogger, cfg *config.AppConfig) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// ClientIP only reads forwarding headers sent by these peers.
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	router.Use(gin.Recovery())
	router.Use(middleware.CurrentMiddleware())
	router.Use(middleware.HTTPSRedirect(cfg.EnforceHTTPS, logger))

	if cfg.OtelEnabled {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}

	router.Use(middleware.LoggingMiddleware(logger))

	if metrics != nil {
		router.Use(middleware.MetricsMiddleware(metrics))
	}

	router.Use(middleware.CORSMiddleware())

	setupRoutes(router, handlers)

	return router, nil
}

// SetupRouterForTests mounts the same routes without HTTPS redirection,
// tracing or metrics.
func SetupRouterForTests(handlers HandlersConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	_ = router.SetTrustedProxies(nil)

	router.Use(gin.Recovery())
	router.Use(middleware.CurrentMiddleware())
	router.Use(middleware.CORSMiddleware())

	setupRoutes(router, handlers)

	return router
}

func setupRoutes(router *gin.Engine, handlers HandlersConfig) {
	var limit []gin.HandlerFunc

	if handlers.RateLimiter != nil {
		limit = append(limit, handlers.RateLimiter.Middleware())
	}

	if handlers.AuthHandler != nil {
		setupPublicRoutes(router, handlers.AuthHandler, limit)
	}

	if handlers.Guard != nil {
		setupProtectedRoutes(router, handlers, limit)
	}
}

func setupPublicRoutes(router *gin.Engine, authHandler *handler.AuthHandler, limit []gin.HandlerFunc) {
	public := router.Group("/auth", limit...)
	{
		public.POST("/signup", authHandler.SignUp)
		public.POST("/login", authHandler.Login)
	}
}

// The limiter runs after the guard so protected routes are keyed by user.
func setupProtectedRoutes(router *gin.Engine, handlers HandlersConfig, limit []gin.HandlerFunc) {
	protected := router.Group("/", append([]gin.HandlerFunc{handlers.Guard}, limit...)...)

	if handlers.TaskHandler != nil {
		protected.GET("/todo", handlers.TaskHandler.GetTasks)
		protected.POST("/todo", handlers.TaskHandler.CreateTask)
		protected.GET("/todo/:id", handlers.TaskHandler.GetTaskByID)
		protected.PATCH("/todo/:id", handlers.TaskHandler.UpdateTaskByID)
		protected.DELETE("/todo/:id", handlers.TaskHandler.DeleteTaskByID)
	}

	if handlers.UserHandler != nil {
		protected.GET("/user", handlers.UserHandler.GetMe)
		protected.PATCH("/user", handlers.UserHandler.UpdateMe)
	}
}
