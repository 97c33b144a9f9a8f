package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/ebook-storefront/config"
	"github.com/oksasatya/ebook-storefront/internal/container"
	"github.com/oksasatya/ebook-storefront/internal/infrastructure/billing"
	"github.com/oksasatya/ebook-storefront/internal/metrics"
	"github.com/oksasatya/ebook-storefront/pkg/validation"
)

func TestInitModulesRegistersStorefrontRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	validation.Init()

	billingSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer billingSrv.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	cfg := &config.Config{SessionSecret: "s", SessionTTL: time.Hour, DebugMetricsEnabled: true, DownloadURLTTL: time.Minute}
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRedis(rdb)
	container.SetBilling(billing.NewClient(billing.Config{BaseURL: billingSrv.URL, Timeout: time.Second}))
	container.SetMetrics(m)
	container.SetJWT(nil)

	engine := gin.New()
	r := NewRegistry(engine)
	InitModules(r)
	r.RegisterAll()
	assert.Equal(t, []string{"catalog", "session", "library", "debug"}, r.Modules())

	routes := map[string]bool{}
	for _, ri := range engine.Routes() {
		routes[ri.Method+" "+ri.Path] = true
	}
	for _, want := range []string{
		"GET /api/products",
		"GET /api/products/search",
		"GET /api/products/:id",
		"POST /api/session",
		"GET /api/session",
		"DELETE /api/session",
		"GET /api/library",
		"POST /api/library/:id/download",
		"GET /api/library/downloads",
		"GET /api/debug/vars",
	} {
		assert.True(t, routes[want], want)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "300", w.Header().Get("X-RateLimit-Limit"))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/library/mastering-price-action/download", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, 1.0, testutil.ToFloat64(m.Downloads().WithLabelValues("unauthenticated")))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/library/downloads", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type namedModule string

func (m namedModule) Name() string             { return string(m) }
func (m namedModule) Register(*gin.RouterGroup) {}

func TestRegistryRejectsDuplicateModule(t *testing.T) {
	r := NewRegistry(gin.New())
	r.Add(namedModule("catalog"))
	assert.Panics(t, func() { r.Add(namedModule("catalog")) })
}
