package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/autoads/autoads-backend/api"
	"github.com/autoads/autoads-backend/api/controllers"
	"github.com/autoads/autoads-backend/api/routes"
	"github.com/autoads/autoads-backend/internal/ads"
	"github.com/autoads/autoads-backend/internal/auth"
	"github.com/autoads/autoads-backend/internal/campaignmetrics"
	"github.com/autoads/autoads-backend/internal/media"
	"github.com/autoads/autoads-backend/internal/profiles"
	"github.com/autoads/autoads-backend/internal/users"
	"github.com/autoads/autoads-backend/pkg/auth/session"
	"github.com/autoads/autoads-backend/pkg/config"
	"github.com/autoads/autoads-backend/pkg/db"
	"github.com/autoads/autoads-backend/pkg/events"
	"github.com/autoads/autoads-backend/pkg/logger"
	"github.com/autoads/autoads-backend/pkg/metrics"
	"github.com/autoads/autoads-backend/pkg/migrate"
	"github.com/autoads/autoads-backend/pkg/pubsub"
	"github.com/autoads/autoads-backend/pkg/redis"
	"github.com/autoads/autoads-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     strings.EqualFold(cfg.App.LogFormat, "console"),
		FilePath:    cfg.App.LogFile,
	})
	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api stopped with error", err)
		_ = logg.Close()
		os.Exit(1)
	}
	_ = logg.Close()
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	publisher, closePublisher, err := newPublisher(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closePublisher()) }()

	var (
		objectStore   media.ObjectStore
		storagePinger controllers.Pinger
	)
	if cfg.FeatureFlags.MediaGCSEnabled {
		gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		if err != nil {
			return err
		}
		objectStore = gcsClient
		storagePinger = gcsClient
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	userRepo := users.NewRepository(dbClient.DB())
	profileRepo := profiles.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		DB:             dbClient,
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	var mediaService media.Service
	if objectStore != nil {
		mediaService, err = media.NewService(objectStore, media.Limits{
			MaxImageBytes:  cfg.Media.MaxImageBytes(),
			MaxAvatarBytes: cfg.Media.MaxAvatarBytes(),
		}, logg)
		if err != nil {
			return err
		}
	} else {
		logg.Warn(ctx, "gcs disabled, media uploads are unavailable")
	}

	profileService, err := profiles.NewService(profileRepo, mediaService, logg)
	if err != nil {
		return err
	}

	adsService, err := ads.NewService(ads.ServiceParams{
		Repo:            ads.NewRepository(dbClient.DB()),
		Profiles:        profileRepo,
		Users:           userRepo,
		Publisher:       publisher,
		Logger:          logg,
		PublicBaseURL:   cfg.Ads.PublicBaseURL,
		DefaultLocation: cfg.Ads.DefaultLocation,
		MaxImages:       cfg.Media.MaxAdImages,
	})
	if err != nil {
		return err
	}

	metricsService, err := campaignmetrics.NewService(campaignmetrics.ServiceParams{
		Repo:        campaignmetrics.NewRepository(dbClient.DB()),
		Publisher:   publisher,
		Metrics:     metrics.NewImportMetrics(registry),
		Logger:      logg,
		ClickSource: campaignmetrics.ParseClickSource(cfg.Metrics.ClickSource),
		Locale:      cfg.Metrics.Locale,
	})
	if err != nil {
		return err
	}

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		DB:          dbClient,
		Redis:       redisClient,
		Storage:     storagePinger,
		Sessions:    sessionManager,
		Auth:        authService,
		Ads:         adsService,
		Profiles:    profileService,
		Media:       mediaService,
		Metrics:     metricsService,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		Gatherer:    registry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	return api.Serve(logCtx, api.NewServer(addr, handler), logg)
}

func newPublisher(ctx context.Context, cfg *config.Config, logg *logger.Logger) (events.Publisher, func() error, error) {
	if !cfg.FeatureFlags.PubSubEnabled {
		logg.Warn(ctx, "pubsub disabled, domain events are dropped")
		return events.NoopPublisher{}, func() error { return nil }, nil
	}

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		return nil, nil, err
	}
	publisher, err := events.NewPubSubPublisher(pubsubClient.DomainPublisher(), logg)
	if err != nil {
		_ = pubsubClient.Close()
		return nil, nil, err
	}
	return publisher, pubsubClient.Close, nil
}
