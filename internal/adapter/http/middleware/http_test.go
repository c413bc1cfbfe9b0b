package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"todoapi/internal/core/telemetry"
	"todoapi/pkg/config"
)

func newPlainRouter(middleware ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware...)
	router.GET("/todo", func(c *gin.Context) { c.Status(http.StatusOK) })

	return router
}

func TestHTTPSRedirect(t *testing.T) {
	RegisterTestingT(t)

	router := newPlainRouter(HTTPSRedirect(true, config.NewNopLogger()))

	req := httptest.NewRequest("GET", "http://api.example.com/todo?limit=2", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	Expect(rr.Code).To(Equal(http.StatusMovedPermanently))
	Expect(rr.Header().Get("Location")).To(Equal("https://api.example.com/todo?limit=2"))

	proxied := httptest.NewRequest("GET", "http://api.example.com/todo", nil)
	proxied.Header.Set("X-Forwarded-Proto", "https")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, proxied)
	Expect(rr.Code).To(Equal(http.StatusOK))

	secure := httptest.NewRequest("GET", "https://api.example.com/todo", nil)
	secure.TLS = &tls.ConnectionState{}
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, secure)
	Expect(rr.Code).To(Equal(http.StatusOK))

	local := httptest.NewRequest("GET", "http://localhost:8080/todo", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, local)
	Expect(rr.Code).To(Equal(http.StatusOK))
}

func TestHTTPSRedirect_Disabled(t *testing.T) {
	RegisterTestingT(t)

	router := newPlainRouter(HTTPSRedirect(false, config.NewNopLogger()))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "http://api.example.com/todo", nil))

	Expect(rr.Code).To(Equal(http.StatusOK))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	RegisterTestingT(t)

	router := newPlainRouter(CORSMiddleware())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("OPTIONS", "/todo", nil))

	Expect(rr.Code).To(Equal(http.StatusNoContent))
	Expect(rr.Header().Get("Access-Control-Allow-Headers")).To(ContainSubstring("Authorization"))
	Expect(rr.Header().Get("Access-Control-Expose-Headers")).To(ContainSubstring("X-Next-Cursor"))
}

func TestMetricsMiddleware_RecordsRoute(t *testing.T) {
	RegisterTestingT(t)

	registry := prometheus.NewRegistry()
	router := newPlainRouter(MetricsMiddleware(telemetry.NewAppMetrics(registry)))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/todo", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/missing", nil))

	count, err := testutil.GatherAndCount(registry, "http_requests_total")
	Expect(err).ToNot(HaveOccurred())
	Expect(count).To(Equal(2))
}

func TestLoggingMiddleware_PassesThrough(t *testing.T) {
	RegisterTestingT(t)

	router := newPlainRouter(CurrentMiddleware(), LoggingMiddleware(config.NewNopLogger()))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/todo", nil))

	Expect(rr.Code).To(Equal(http.StatusOK))
}
