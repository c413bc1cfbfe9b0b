package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"todoapi/internal/core/telemetry"
	"todoapi/pkg/config"
)

func TestServer_LifecycleWithSqliteFile(t *testing.T) {
	RegisterTestingT(t)

	cfg := testConfig()
	cfg.Port = "0"
	cfg.DatabaseDriver = config.DriverSqlite
	cfg.DatabasePath = filepath.Join(t.TempDir(), "todo.db")
	cfg.RateLimitEnabled = true
	cfg.RateLimitBackend = config.RateLimitMemory

	server, err := NewServer(context.Background(), cfg, config.NewNopLogger(), nil, telemetry.NewNoOpProbe())
	Expect(err).ToNot(HaveOccurred())

	req := httptest.NewRequest("POST", "/auth/signup", strings.NewReader(`{"email":"a@x.io","password":"password1"}`))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	Expect(rr.Code).To(Equal(http.StatusCreated))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- server.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	Eventually(done, 5*time.Second).Should(Receive(BeNil()))
}

func TestServer_RejectsUnreachableRedis(t *testing.T) {
	RegisterTestingT(t)

	cfg := testConfig()
	cfg.DatabaseDriver = config.DriverSqlite
	cfg.DatabasePath = filepath.Join(t.TempDir(), "todo.db")
	cfg.RateLimitEnabled = true
	cfg.RateLimitBackend = config.RateLimitRedis
	cfg.RedisAddr = "127.0.0.1:1"

	_, err := NewServer(context.Background(), cfg, config.NewNopLogger(), nil, telemetry.NewNoOpProbe())
	Expect(err).To(HaveOccurred())
}

func TestServer_RejectsInvalidTrustedProxies(t *testing.T) {
	RegisterTestingT(t)

	cfg := testConfig()
	cfg.DatabaseDriver = config.DriverSqlite
	cfg.DatabasePath = filepath.Join(t.TempDir(), "todo.db")
	cfg.TrustedProxies = []string{"not-an-ip"}

	_, err := NewServer(context.Background(), cfg, config.NewNopLogger(), nil, telemetry.NewNoOpProbe())
	Expect(err).To(MatchError(ContainSubstring("trusted proxies")))
}
