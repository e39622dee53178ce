package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/autoads/autoads-backend/api/controllers"
	"github.com/autoads/autoads-backend/api/middleware"
	"github.com/autoads/autoads-backend/internal/ads"
	"github.com/autoads/autoads-backend/internal/auth"
	"github.com/autoads/autoads-backend/internal/campaignmetrics"
	"github.com/autoads/autoads-backend/internal/media"
	"github.com/autoads/autoads-backend/internal/profiles"
	"github.com/autoads/autoads-backend/pkg/auth/session"
	"github.com/autoads/autoads-backend/pkg/config"
	"github.com/autoads/autoads-backend/pkg/logger"
	"github.com/autoads/autoads-backend/pkg/metrics"
	"github.com/autoads/autoads-backend/pkg/redis"
)

// Dependencies carries everything the HTTP surface needs. Nil services
// answer with an internal error; nil pingers are reported as disabled.
type Dependencies struct {
	DB       controllers.Pinger
	Redis    *redis.Client
	Storage  controllers.Pinger
	BigQuery controllers.Pinger

	Sessions session.AccessSessionChecker

	Auth     auth.Service
	Ads      ads.Service
	Profiles profiles.Service
	Media    media.Service
	Metrics  campaignmetrics.Service

	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	limits := controllers.UploadLimitsFromConfig(cfg)

	var redisPinger controllers.Pinger
	if deps.Redis != nil {
		redisPinger = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.ReadinessCheck{Name: "db", Pinger: deps.DB},
			controllers.ReadinessCheck{Name: "redis", Pinger: redisPinger},
			controllers.ReadinessCheck{Name: "gcs", Pinger: deps.Storage},
			controllers.ReadinessCheck{Name: "bigquery", Pinger: deps.BigQuery},
		))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(authRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(authRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	r.Route("/api/v1/public/ads/{slug}", func(r chi.Router) {
		r.Get("/", controllers.PublicAdGet(deps.Ads, logg))
		r.Post("/views", controllers.PublicAdView(deps.Ads, logg))
		r.Post("/whatsapp-clicks", controllers.PublicAdWhatsAppClick(deps.Ads, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(idempotency(deps.Redis, logg))

		r.Get("/api/ping", controllers.PrivatePing())

		r.Route("/api/v1/ads", func(r chi.Router) {
			r.Post("/", controllers.AdCreate(deps.Ads, logg))
			r.Get("/", controllers.AdList(deps.Ads, logg))
			r.Get("/stats", controllers.AdStats(deps.Ads, logg))
			r.Get("/{adId}", controllers.AdGet(deps.Ads, logg))
			r.Patch("/{adId}", controllers.AdUpdate(deps.Ads, logg))
			r.Patch("/{adId}/status", controllers.AdUpdateStatus(deps.Ads, logg))
			r.Delete("/{adId}", controllers.AdDelete(deps.Ads, logg))
		})

		r.Route("/api/v1/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(deps.Profiles, logg))
			r.Put("/", controllers.ProfileUpdate(deps.Profiles, logg))
			r.Post("/avatar", controllers.ProfileAvatarUpload(deps.Profiles, limits, logg))
			r.Delete("/avatar", controllers.ProfileAvatarDelete(deps.Profiles, logg))
		})

		r.Route("/api/v1/media/images", func(r chi.Router) {
			r.Post("/", controllers.MediaUpload(deps.Media, limits, logg))
			r.Delete("/", controllers.MediaDelete(deps.Media, logg))
		})

		r.Route("/api/v1/metrics", func(r chi.Router) {
			r.Get("/", controllers.MetricsDashboard(deps.Metrics, logg))
			r.Delete("/", controllers.MetricsClear(deps.Metrics, logg))
			r.Post("/import", controllers.MetricsImport(deps.Metrics, limits, logg))
			r.Get("/export", controllers.MetricsExport(deps.Metrics, logg))
		})
	})

	return r
}

// authRateLimit and idempotency keep a nil *redis.Client from reaching the
// middleware as a non-nil interface value.
func authRateLimit(policy middleware.AuthRateLimitPolicy, client *redis.Client, logg *logger.Logger) func(http.Handler) http.Handler {
	if client == nil {
		return passthrough
	}
	return middleware.AuthRateLimit(policy, client, logg)
}

func idempotency(client *redis.Client, logg *logger.Logger) func(http.Handler) http.Handler {
	if client == nil {
		return passthrough
	}
	return middleware.Idempotency(client, idempotentRoutes, logg)
}

var idempotentRoutes = []middleware.IdempotencyRule{
	{Method: http.MethodPost, Path: "/api/v1/ads", TTL: 24 * time.Hour},
	{Method: http.MethodDelete, Path: "/api/v1/metrics", TTL: 7 * 24 * time.Hour},
}

func passthrough(next http.Handler) http.Handler { return next }
