package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"

	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

type AppConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"8080"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabasePath   string `env:"DATABASE_PATH" envDefault:"database.db"`
	DatabaseURL    string `env:"DATABASE_URL"`
	SQLLog         bool   `env:"SQL_LOG" envDefault:"false"`

	JWTSecret       string        `env:"JWT_SECRET"`
	JWTTTL          time.Duration `env:"JWT_TTL" envDefault:"15m"`
	BcryptCost      int           `env:"BCRYPT_COST" envDefault:"12"`
	CursorSecretKey string        `env:"CURSOR_SECRET_KEY"`

	RateLimitEnabled bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitBackend string `env:"RATE_LIMIT_BACKEND" envDefault:"memory"`
	RedisAddr        string `env:"REDIS_ADDR"`
	RedisPassword    string `env:"REDIS_PASSWORD"`
	RedisDB          int    `env:"REDIS_DB" envDefault:"0"`

	EnforceHTTPS bool `env:"ENFORCE_HTTPS" envDefault:"false"`
	// TrustedProxies lists the IPs or CIDRs allowed to set X-Forwarded-For.
	// Empty means the socket peer is always the client.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	OtelEnabled    bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OtelEndpoint   string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	MetricsPort    string `env:"METRICS_PORT" envDefault:"9091"`
	LokiURL        string `env:"LOKI_URL"`
	ServiceName    string `env:"SERVICE_NAME" envDefault:"todoapi"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"1.0.0"`

	RateLimitConfigs map[string]RateLimitConfig
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load reads the process environment once. The result is treated as
// immutable after startup.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.CursorSecretKey == "" {
		cfg.CursorSecretKey = cfg.JWTSecret
	}

	cfg.RateLimitConfigs = DefaultRateLimitConfigs()

	return cfg, nil
}

func (c *AppConfig) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	if c.JWTTTL <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL))
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}

	switch c.DatabaseDriver {
	case DriverSqlite:
		if c.DatabasePath == "" {
			errs = append(errs, errors.New("DATABASE_PATH is required for sqlite"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver))
	}

	for _, proxy := range c.TrustedProxies {
		if !validProxy(proxy) {
			errs = append(errs, fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP or CIDR", proxy))
		}
	}

	if c.RateLimitEnabled {
		switch c.RateLimitBackend {
		case RateLimitMemory:
		case RateLimitRedis:
			if c.RedisAddr == "" {
				errs = append(errs, errors.New("REDIS_ADDR is required for the redis rate limit backend"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", c.RateLimitBackend))
		}
	}

	return errors.Join(errs...)
}

func validProxy(proxy string) bool {
	if strings.Contains(proxy, "/") {
		_, _, err := net.ParseCIDR(proxy)
		return err == nil
	}

	return net.ParseIP(proxy) != nil
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// DefaultRateLimitConfigs is keyed by "METHOD /route" as registered on the
// router. "default" applies to anything without its own rule.
func DefaultRateLimitConfigs() map[string]RateLimitConfig {
	return map[string]RateLimitConfig{
		"POST /auth/signup": {
			Requests: 5,
			Window:   time.Minute,
		},
		"POST /auth/login": {
			Requests: 10,
			Window:   time.Minute,
		},
		"GET /todo": {
			Requests: 100,
			Window:   time.Minute,
		},
		"POST /todo": {
			Requests: 20,
			Window:   time.Minute,
		},
		"PATCH /todo/:id": {
			Requests: 30,
			Window:   time.Minute,
		},
		"DELETE /todo/:id": {
			Requests: 10,
			Window:   time.Minute,
		},
		"default": {
			Requests: 60,
			Window:   time.Minute,
		},
	}
}
