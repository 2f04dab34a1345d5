package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/lostfound-backend/internal/auth"
	"github.com/angelmondragon/lostfound-backend/internal/catalog"
	"github.com/angelmondragon/lostfound-backend/internal/items"
	pkgAuth "github.com/angelmondragon/lostfound-backend/pkg/auth"
	"github.com/angelmondragon/lostfound-backend/pkg/auth/session"
	"github.com/angelmondragon/lostfound-backend/pkg/config"
	"github.com/angelmondragon/lostfound-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/lostfound-backend/pkg/errors"
	"github.com/angelmondragon/lostfound-backend/pkg/logger"
	"github.com/angelmondragon/lostfound-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubCatalogService struct{}

func (stubCatalogService) Browse(_ context.Context, params catalog.Params) (*catalog.View, error) {
	return &catalog.View{Items: []items.ItemDTO{}, Applied: params}, nil
}

func (stubCatalogService) Dashboard(context.Context) (*catalog.Dashboard, error) {
	return &catalog.Dashboard{Recent: []items.ItemDTO{}}, nil
}

func (stubCatalogService) Invalidate(context.Context) {}

type stubItemService struct{}

func (stubItemService) Create(context.Context, items.CreateInput) (*items.ItemDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (stubItemService) Get(_ context.Context, rawID string) (*items.ItemDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
}

func (stubItemService) ListByOwner(context.Context, uuid.UUID) ([]items.ItemDTO, error) {
	return []items.ItemDTO{}, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, auth.LoginRequest, auth.RequestMeta) (*auth.LoginResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func (stubAuthService) AdminLogin(context.Context, auth.LoginRequest, auth.RequestMeta) (*auth.LoginResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func (stubAuthService) Logout(context.Context, string) error { return nil }

type stubLoginHistory struct{}

func (stubLoginHistory) ListByUser(context.Context, uuid.UUID, int) ([]models.LoginAuditEntry, error) {
	return []models.LoginAuditEntry{}, nil
}

type countingLimiter struct{ keys []string }

func (c *countingLimiter) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.keys = append(c.keys, key)
	return 1, nil
}

func (c *countingLimiter) RateLimitKey(scope string) string { return "lf:rate_limit:" + scope }

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "lostfound", ExpirationMinutes: 30},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:        time.Minute,
			LoginUsernameLimit: 5,
			LoginIPLimit:       20,
		},
		Auth: config.AuthConfig{
			LoginURL:    "/accounts/login/",
			AdminPrefix: "/admin/",
			CookieName:  "lf_session",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Storage: config.StorageConfig{MaxUploadMB: 1},
	}
}

func newTestRouter(t *testing.T, limiter *countingLimiter) (http.Handler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	deps := Dependencies{
		Config:      testConfig(),
		Logger:      logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard}),
		DB:          stubPinger{},
		Redis:       stubPinger{},
		BlobStore:   stubPinger{},
		Sessions:    stubSessionManager{},
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Gatherer:    reg,
		Auth:        stubAuthService{},
		Catalog:     stubCatalogService{},
		Items:       stubItemService{},

		LoginHistory: stubLoginHistory{},
	}
	if limiter != nil {
		deps.RateLimit = limiter
	}
	return NewRouter(deps), reg
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	cases := map[string]string{
		"/add/":          "/accounts/login/?next=/add/",
		"/dashboard/":    "/accounts/login/?next=/dashboard/",
		"/profile/":      "/accounts/login/?next=/profile/",
		"/edit-profile/": "/accounts/login/?next=/edit-profile/",
		"/report/found/": "/accounts/login/?next=/report/found/",
	}
	for path, want := range cases {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusFound {
			t.Fatalf("%s: expected 302, got %d", path, resp.Code)
		}
		if got := resp.Header().Get("Location"); got != want {
			t.Fatalf("%s: expected redirect %q, got %q", path, want, got)
		}
	}
}

func TestAnonymousPOSTToAddRedirects(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/add/", strings.NewReader(`{"name":"x"}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.Code)
	}
}

func TestPublicRoutes(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	unknownItem := "/" + uuid.NewString() + "/"
	cases := map[string]int{
		"/":                 http.StatusOK,
		"/?tab=lost&page=3": http.StatusOK,
		unknownItem:         http.StatusNotFound,
		"/health/live":      http.StatusOK,
		"/health/ready":     http.StatusOK,
	}
	for path, want := range cases {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != want {
			t.Fatalf("%s: expected %d, got %d", path, want, resp.Code)
		}
	}
}

func TestAuthenticatedDashboard(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	cfg := testConfig()

	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "jdoe",
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard/", nil)
	req.AddCookie(&http.Cookie{Name: cfg.Auth.CookieName, Value: token})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"recent_items"`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestLoginHistoryRequiresStaff(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	cfg := testConfig()
	path := "/admin/users/" + uuid.NewString() + "/logins/"

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
	if resp.Code != http.StatusFound {
		t.Fatalf("anonymous: expected 302, got %d", resp.Code)
	}

	for staff, want := range map[bool]int{false: http.StatusForbidden, true: http.StatusOK} {
		token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
			UserID:   uuid.New(),
			Username: "jdoe",
			IsStaff:  staff,
			JTI:      session.NewAccessID(),
		})
		if err != nil {
			t.Fatalf("mint token: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(&http.Cookie{Name: cfg.Auth.CookieName, Value: token})
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != want {
			t.Fatalf("staff=%v: expected %d, got %d", staff, want, resp.Code)
		}
	}
}

func TestLoginRoutesAreRateLimited(t *testing.T) {
	limiter := &countingLimiter{}
	router, _ := newTestRouter(t, limiter)

	for _, path := range []string{"/accounts/login/", "/admin/login/"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"username":"jdoe","password":"x"}`))
		req.RemoteAddr = "198.51.100.2:9999"
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, resp.Code)
		}
	}

	var sawAdmin bool
	for _, key := range limiter.keys {
		if strings.Contains(key, ":admin_login:") {
			sawAdmin = true
		}
	}
	if len(limiter.keys) != 4 || !sawAdmin {
		t.Fatalf("unexpected limiter keys %v", limiter.keys)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "lostfound_http_requests_total") {
		t.Fatal("expected http metrics in exposition")
	}
}

func TestAdminPath(t *testing.T) {
	if got := adminPath("staff", "users/{userID}/logins/"); got != "/staff/users/{userID}/logins/" {
		t.Fatalf("adminPath = %q", got)
	}
}

func TestAdminLoginPath(t *testing.T) {
	cases := map[string]string{
		"":         "/admin/login/",
		"/admin/":  "/admin/login/",
		"staff":    "/staff/login/",
		"/backend": "/backend/login/",
	}
	for in, want := range cases {
		if got := adminLoginPath(in); got != want {
			t.Fatalf("adminLoginPath(%q) = %q, want %q", in, got, want)
		}
	}
}
