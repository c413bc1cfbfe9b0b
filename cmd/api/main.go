package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httpadapter "todoapi/internal/adapter/http"
	teladapter "todoapi/internal/adapter/telemetry"
	"todoapi/internal/core/port"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	cfg, err := config.Load()

	if err != nil {
		return err
	}

	if err := applyFlags(cfg, args); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	logger, err := config.NewLokiLogger(cfg)

	if err != nil {
		return err
	}

	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		metrics *telemetry.AppMetrics
		probe   port.Telemetry = telemetry.NewNoOpProbe()
	)

	if cfg.OtelEnabled {
		container, err := teladapter.NewContainer(ctx, teladapter.Config{
			ServiceName:    cfg.ServiceName,
			ServiceVersion: cfg.ServiceVersion,
			Environment:    cfg.Environment,
			MetricsPort:    cfg.MetricsPort,
			OTLPEndpoint:   cfg.OtelEndpoint,
		}, logger.Zap())

		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}

		container.Start(ctx)

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := container.Shutdown(shutdownCtx); err != nil {
				logger.Zap().Warn("Telemetry shutdown failed", zap.Error(err))
			}
		}()

		metrics = container.AppMetrics
		probe = container.NewTelemetryProbe()
	}

	server, err := httpadapter.NewServer(ctx, cfg, logger, metrics, probe)

	if err != nil {
		return err
	}

	return server.Run(ctx)
}

// applyFlags lets the command line override the environment.
func applyFlags(cfg *config.AppConfig, args []string) error {
	flags := pflag.NewFlagSet("api", pflag.ContinueOnError)

	port := flags.StringP("port", "p", cfg.Port, "HTTP listen port")
	driver := flags.String("database-driver", cfg.DatabaseDriver, "database driver (sqlite or postgres)")
	path := flags.String("database-path", cfg.DatabasePath, "sqlite database file")
	url := flags.String("database-url", cfg.DatabaseURL, "postgres connection url")
	sqlLog := flags.Bool("sql-log", cfg.SQLLog, "log SQL statements")

	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg.Port = *port
	cfg.DatabaseDriver = *driver
	cfg.DatabasePath = *path
	cfg.DatabaseURL = *url
	cfg.SQLLog = *sqlLog

	return nil
}
