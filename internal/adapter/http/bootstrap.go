package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"todoapi/internal/adapter/database/memory"
	"todoapi/internal/adapter/database/postgres"
	pgrepository "todoapi/internal/adapter/database/postgres/repository"
	"todoapi/internal/adapter/database/redis"
	"todoapi/internal/adapter/database/sqlite"
	"todoapi/internal/adapter/database/sqlite/repository"
	"todoapi/internal/adapter/http/routes"
	"todoapi/internal/core/port"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg/config"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg        *config.AppConfig
	logger     *config.LokiLogger
	httpServer *http.Server
	closers    []func() error
}

// NewServer opens the configured database and rate limit store and mounts
// the router. Resources opened here are released by Run.
func NewServer(ctx context.Context, cfg *config.AppConfig, logger *config.LokiLogger, metrics *telemetry.AppMetrics, probe port.Telemetry) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
	}

	users, tasks, err := s.openRepositories(ctx, probe)

	if err != nil {
		s.close()
		return nil, err
	}

	store, err := s.openRateLimitStore(ctx)

	if err != nil {
		s.close()
		return nil, err
	}

	container, err := NewContainer(cfg, Dependencies{
		UserRepo:       users,
		TaskRepo:       tasks,
		RateLimitStore: store,
		Telemetry:      probe,
		Metrics:        metrics,
		Logger:         logger,
	})

	if err != nil {
		s.close()
		return nil, err
	}

	router, err := routes.SetupRouterWithConfig(container.Handlers(), metrics, logger, cfg)
	if err != nil {
		s.close()
		return nil, err
	}

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	return s, nil
}

func (s *Server) openRepositories(ctx context.Context, probe port.Telemetry) (port.UserRepository, port.TaskRepository, error) {
	switch s.cfg.DatabaseDriver {
	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, s.cfg.DatabaseURL)

		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres: %w", err)
		}

		s.closers = append(s.closers, func() error {
			db.Close()
			return nil
		})

		return pgrepository.NewUserRepository(db, probe), pgrepository.NewTaskRepository(db, probe), nil

	default:
		db, err := sqlite.Open(sqlite.Options{
			Path:   s.cfg.DatabasePath,
			SQLLog: s.cfg.SQLLog,
		})

		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite: %w", err)
		}

		s.closers = append(s.closers, db.Close)

		return repository.NewUserRepository(db, probe), repository.NewTaskRepository(db, probe), nil
	}
}

func (s *Server) openRateLimitStore(ctx context.Context) (port.RateLimitStore, error) {
	if !s.cfg.RateLimitEnabled {
		return nil, nil
	}

	var (
		store port.RateLimitStore
		err   error
	)

	switch s.cfg.RateLimitBackend {
	case config.RateLimitRedis:
		store, err = redis.NewRateLimitStore(ctx, redis.Options{
			Addr:     s.cfg.RedisAddr,
			Password: s.cfg.RedisPassword,
			DB:       s.cfg.RedisDB,
		})

		if err != nil {
			return nil, err
		}
	default:
		store = memory.NewRateLimitStore()
	}

	s.closers = append(s.closers, store.Close)

	return store, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to shutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	defer s.close()

	serveErr := make(chan error, 1)

	go func() {
		s.logger.InfoWithTrace(ctx, "Server starting",
			zap.String("port", s.cfg.Port),
			zap.String("environment", s.cfg.Environment),
			zap.String("database_driver", s.cfg.DatabaseDriver),
			zap.Bool("rate_limit_enabled", s.cfg.RateLimitEnabled),
			zap.Bool("https_enforced", s.cfg.EnforceHTTPS))

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}

		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.InfoWithTrace(shutdownCtx, "Server shutting down")

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Zap().Warn("failed to release resource", zap.Error(err))
		}
	}

	s.closers = nil
}
