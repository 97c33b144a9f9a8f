package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/ebook-storefront/internal/application"
	"github.com/oksasatya/ebook-storefront/internal/infrastructure/billing"
	"github.com/oksasatya/ebook-storefront/internal/infrastructure/catalog"
	"github.com/oksasatya/ebook-storefront/internal/infrastructure/rediscache"
	"github.com/oksasatya/ebook-storefront/internal/interface/middleware"
	"github.com/oksasatya/ebook-storefront/pkg/helpers"
	"github.com/oksasatya/ebook-storefront/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// fakeBilling owns purchases per user and can be switched off.
type fakeBilling struct {
	mu        sync.Mutex
	purchases map[string][]string
	down      bool
	verifies  int
}

func (f *fakeBilling) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	switch r.URL.Path {
	case "/purchases":
		ids := f.purchases[r.URL.Query().Get("userId")]
		_ = json.NewEncoder(w).Encode(map[string]any{"purchases": ids})
	case "/downloads/verify":
		f.verifies++
		var req struct {
			ProductID string `json:"productId"`
			UserID    string `json:"userId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, id := range f.purchases[req.UserID] {
			if id == req.ProductID {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"url":       "https://cdn.test/" + id + ".pdf?sig=abc",
					"expiresAt": "2026-01-01T00:15:00Z",
				})
				return
			}
		}
		w.WriteHeader(http.StatusForbidden)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeBilling) grant(userID string, ids ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purchases[userID] = append(f.purchases[userID], ids...)
}

func (f *fakeBilling) revoke(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.purchases, userID)
}

func (f *fakeBilling) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

type testApp struct {
	router  *gin.Engine
	billing *fakeBilling
	cookie  *http.Cookie
	userID  string
	redis   *miniredis.Miniredis
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	fb := &fakeBilling{purchases: map[string][]string{}}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	static := catalog.NewStatic()
	bc := billing.NewClient(billing.Config{BaseURL: srv.URL, APIKey: "k", Timeout: 2 * time.Second})
	ents := application.NewEntitlementService(static, bc, bc, rediscache.NewEntitlementCache(rdb, 0), logger)
	sessions := application.NewSessionService(helpers.NewJWTManager("secret", time.Hour), rdb, logger)
	cat := application.NewCatalogService(static, nil, static, logger)

	ch := NewCatalogHandler(cat, ents, logger)
	sh := NewSessionHandler(sessions, ents, logger, "", false)
	lh := NewLibraryHandler(ents, logger)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), middleware.RealIP(), middleware.LoadSession(sessions))
	api := r.Group("/api")
	api.GET("/products", ch.List)
	api.GET("/products/search", ch.Search)
	api.GET("/products/:id", ch.Get)
	api.POST("/session", sh.SignIn)
	api.GET("/session", sh.Current)
	api.DELETE("/session", sh.SignOut)
	api.GET("/library", lh.List)
	api.POST("/library/:id/download", lh.Download)
	api.GET("/library/downloads", middleware.RequireSession(), lh.History)

	return &testApp{router: r, billing: fb, redis: mr}
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   any             `json:"error"`
}

func (a *testApp) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if a.cookie != nil {
		req.AddCookie(a.cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (a *testApp) signIn(t *testing.T, email string) sessionDTO {
	t.Helper()
	w, env := a.do(t, http.MethodPost, "/api/session", `{"email":"`+email+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == helpers.SessionCookie {
			a.cookie = c
		}
	}
	require.NotNil(t, a.cookie)

	var s sessionDTO
	require.NoError(t, json.Unmarshal(env.Data, &s))
	a.userID = s.User.ID
	return s
}

func TestSessionLifecycle(t *testing.T) {
	app := newTestApp(t)

	_, env := app.do(t, http.MethodGet, "/api/session", "")
	var anon sessionDTO
	require.NoError(t, json.Unmarshal(env.Data, &anon))
	assert.Nil(t, anon.User)
	assert.Empty(t, anon.Purchases)

	s := app.signIn(t, "ann@example.test")
	assert.Equal(t, "ann@example.test", s.User.Email)
	assert.Empty(t, s.Purchases)
	assert.Equal(t, "remote", s.Source)
	assert.False(t, s.Stale)

	app.billing.grant(app.userID, "mastering-price-action")
	_, env = app.do(t, http.MethodGet, "/api/session", "")
	var cur sessionDTO
	require.NoError(t, json.Unmarshal(env.Data, &cur))
	assert.Equal(t, []string{"mastering-price-action"}, cur.Purchases)

	w, env := app.do(t, http.MethodDelete, "/api/session", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var out sessionDTO
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Nil(t, out.User)
	assert.Empty(t, out.Purchases)

	// the old cookie no longer resolves
	_, env = app.do(t, http.MethodGet, "/api/session", "")
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Nil(t, out.User)
}

func TestSignInValidation(t *testing.T) {
	app := newTestApp(t)

	w, env := app.do(t, http.MethodPost, "/api/session", `{"email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]any{"email": "must be a valid email"}, env.Error)

	w, _ = app.do(t, http.MethodPost, "/api/session", `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignInWithSessionStoreDown(t *testing.T) {
	app := newTestApp(t)
	app.redis.Close()

	w, env := app.do(t, http.MethodPost, "/api/session", `{"email":"ann@example.test"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "session_unavailable", env.Error)
	assert.Equal(t, "Sign-in is temporarily unavailable. Please try again.", env.Message)
	for _, c := range w.Result().Cookies() {
		assert.NotEqual(t, helpers.SessionCookie, c.Name)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	app := newTestApp(t)

	_, env := app.do(t, http.MethodGet, "/api/products", "")
	var list struct {
		Products []productDTO `json:"products"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Products, 6)
	for _, p := range list.Products {
		require.NotNil(t, p.Purchased)
		assert.False(t, *p.Purchased)
	}
	assert.Equal(t, "none", env.Meta["source"])
	assert.Equal(t, false, env.Meta["stale"])

	app.signIn(t, "ann@example.test")
	app.billing.grant(app.userID, "risk-management-blueprint")
	_, env = app.do(t, http.MethodGet, "/api/products", "")
	require.NoError(t, json.Unmarshal(env.Data, &list))
	for _, p := range list.Products {
		assert.Equal(t, p.ID == "risk-management-blueprint", *p.Purchased, p.ID)
	}
	assert.Equal(t, "remote", env.Meta["source"])

	w, env := app.do(t, http.MethodGet, "/api/products/mastering-price-action", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, string(env.Data), "content_ref")

	w, env = app.do(t, http.MethodGet, "/api/products/unknown-book", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "product_not_found", env.Error)

	w, _ = app.do(t, http.MethodGet, "/api/products/Bad%25ID", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, env = app.do(t, http.MethodGet, "/api/products/search?q=fibonacci", "")
	var found struct {
		Products []productDTO `json:"products"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &found))
	require.Len(t, found.Products, 1)
	assert.Equal(t, "scalping-fibonacci", found.Products[0].ID)

	w, _ = app.do(t, http.MethodGet, "/api/products/search?q=x&size=500", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadFlow(t *testing.T) {
	app := newTestApp(t)

	w, env := app.do(t, http.MethodPost, "/api/library/mastering-price-action/download", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Please sign in to download your purchased books.", env.Message)
	assert.Equal(t, 0, app.billing.verifies)

	app.signIn(t, "ann@example.test")

	w, env = app.do(t, http.MethodPost, "/api/library/mastering-price-action/download", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "access_denied", env.Error)

	app.billing.grant(app.userID, "mastering-price-action")
	w, env = app.do(t, http.MethodPost, "/api/library/mastering-price-action/download", "")
	require.Equal(t, http.StatusOK, w.Code)
	var dl downloadDTO
	require.NoError(t, json.Unmarshal(env.Data, &dl))
	assert.Equal(t, "https://cdn.test/mastering-price-action.pdf?sig=abc", dl.URL)
	require.NotNil(t, dl.ExpiresAt)

	w, env = app.do(t, http.MethodPost, "/api/library/nope/download", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "product_not_found", env.Error)

	app.billing.setDown(true)
	w, env = app.do(t, http.MethodPost, "/api/library/mastering-price-action/download", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Failed to download. Please try again or contact support.", env.Message)
}

func TestRefundedBookLeavesFallbackLibrary(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "ann@example.test")
	app.billing.grant(app.userID, "mastering-price-action")

	_, _ = app.do(t, http.MethodGet, "/api/library", "")
	require.True(t, app.redis.Exists("entitlements:user:"+app.userID))

	app.billing.revoke(app.userID)
	w, _ := app.do(t, http.MethodPost, "/api/library/mastering-price-action/download", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, app.redis.Exists("entitlements:user:"+app.userID))

	app.billing.setDown(true)
	_, env := app.do(t, http.MethodGet, "/api/library", "")
	assert.Contains(t, string(env.Data), `"products":[]`)
	assert.Contains(t, string(env.Data), `"source":"none"`)
}

func TestLibraryFallsBackToCache(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "ann@example.test")
	app.billing.grant(app.userID, "complete-trading-system", "mastering-price-action")

	_, env := app.do(t, http.MethodGet, "/api/library", "")
	var lib struct {
		Products  []productDTO `json:"products"`
		Purchases []string     `json:"purchases"`
		Source    string       `json:"source"`
		Stale     bool         `json:"stale"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &lib))
	require.Len(t, lib.Products, 2)
	assert.Equal(t, "mastering-price-action", lib.Products[0].ID)
	assert.Equal(t, "remote", lib.Source)
	assert.False(t, lib.Stale)

	app.billing.setDown(true)
	_, env = app.do(t, http.MethodGet, "/api/library", "")
	require.NoError(t, json.Unmarshal(env.Data, &lib))
	assert.Len(t, lib.Products, 2)
	assert.Equal(t, "cache", lib.Source)
	assert.True(t, lib.Stale)

	// stale display never authorizes a download
	w, _ := app.do(t, http.MethodPost, "/api/library/mastering-price-action/download", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLibraryAnonymous(t *testing.T) {
	app := newTestApp(t)
	_, env := app.do(t, http.MethodGet, "/api/library", "")
	assert.Contains(t, string(env.Data), `"products":[]`)
	assert.Contains(t, string(env.Data), `"stale":false`)

	w, env := app.do(t, http.MethodGet, "/api/library/downloads", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "not authenticated", env.Error)
}

func TestDownloadHistoryWithoutAudit(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "ann@example.test")

	w, env := app.do(t, http.MethodGet, "/api/library/downloads?limit=5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"downloads":[]`)

	w, _ = app.do(t, http.MethodGet, "/api/library/downloads?limit=0", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = app.do(t, http.MethodGet, "/api/library/downloads?limit=1000", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
