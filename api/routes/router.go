package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/lostfound-backend/api/controllers"
	"github.com/angelmondragon/lostfound-backend/api/middleware"
	"github.com/angelmondragon/lostfound-backend/internal/auth"
	"github.com/angelmondragon/lostfound-backend/internal/catalog"
	"github.com/angelmondragon/lostfound-backend/internal/items"
	"github.com/angelmondragon/lostfound-backend/internal/profiles"
	"github.com/angelmondragon/lostfound-backend/pkg/auth/session"
	"github.com/angelmondragon/lostfound-backend/pkg/config"
	"github.com/angelmondragon/lostfound-backend/pkg/logger"
	"github.com/angelmondragon/lostfound-backend/pkg/metrics"
)

type rateLimitStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// Dependencies are the collaborators the HTTP surface is built from.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger

	DB        controllers.Pinger
	Redis     controllers.Pinger
	BlobStore controllers.Pinger
	RateLimit rateLimitStore
	Sessions  session.AccessSessionChecker

	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	Auth         auth.Service
	Catalog      catalog.Service
	Items        items.Service
	Profiles     profiles.Service
	LoginHistory controllers.LoginHistory
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.Auth.CORSOrigins),
	)

	authOpts := middleware.AuthOptions{
		JWT:        cfg.JWT,
		Sessions:   deps.Sessions,
		CookieName: cfg.Auth.CookieName,
		LoginURL:   cfg.Auth.LoginURL,
		Logger:     logg,
	}
	cookie := controllers.SessionCookie{
		Name:              cfg.Auth.CookieName,
		Secure:            cfg.Auth.CookieSecure,
		TrustProxyHeaders: cfg.Auth.TrustProxyHeaders,
	}
	maxUpload := cfg.Storage.MaxUploadBytes()

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
		cfg.Auth.TrustProxyHeaders,
	)
	adminPolicy := middleware.NewAuthRateLimitPolicy(
		"admin_login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
		cfg.Auth.TrustProxyHeaders,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.ReadinessCheck{Name: "database", Pinger: deps.DB},
			controllers.ReadinessCheck{Name: "redis", Pinger: deps.Redis},
			controllers.ReadinessCheck{Name: "blob_store", Pinger: deps.BlobStore},
		))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/accounts", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimit, logg)).
			Post("/login/", controllers.AuthLogin(deps.Auth, cookie, logg))
		r.With(middleware.RequireLogin(authOpts)).
			Post("/logout/", controllers.AuthLogout(deps.Auth, cookie, logg))
	})
	r.With(middleware.AuthRateLimit(adminPolicy, deps.RateLimit, logg)).
		Post(adminLoginPath(cfg.Auth.AdminPrefix), controllers.AdminAuthLogin(deps.Auth, cookie, logg))
	r.With(middleware.RequireLogin(authOpts), middleware.RequireStaff(logg)).
		Get(adminPath(cfg.Auth.AdminPrefix, "users/{userID}/logins/"), controllers.UserLoginHistory(deps.LoginHistory, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireLogin(authOpts))

		r.Get("/dashboard/", controllers.Dashboard(deps.Catalog, logg))
		r.Get("/add/", controllers.AddItemForm(maxUpload))
		r.Post("/add/", controllers.AddItem(deps.Profiles, maxUpload, logg))
		r.Get("/report/{status}/", controllers.ReportItemForm(maxUpload))
		r.Post("/report/{status}/", controllers.ReportItem(deps.Profiles, maxUpload, logg))
		r.Get("/profile/", controllers.Profile(deps.Profiles, logg))
		r.Get("/edit-profile/", controllers.EditProfile(deps.Profiles, logg))
		r.Post("/edit-profile/", controllers.UpdateProfile(deps.Profiles, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(authOpts))

		r.Get("/", controllers.CatalogBrowse(deps.Catalog, logg))
		r.Get("/{itemID}/", controllers.ItemDetail(deps.Items, logg))
	})

	return r
}

func adminLoginPath(prefix string) string {
	return adminPath(prefix, "login/")
}

func adminPath(prefix, rest string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "/admin/"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + rest
}
