package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/autoads/autoads-backend/internal/engagement"
	"github.com/autoads/autoads-backend/pkg/bigquery"
	"github.com/autoads/autoads-backend/pkg/config"
	"github.com/autoads/autoads-backend/pkg/events"
	"github.com/autoads/autoads-backend/pkg/logger"
	"github.com/autoads/autoads-backend/pkg/metrics"
	"github.com/autoads/autoads-backend/pkg/pubsub"
	"github.com/autoads/autoads-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     strings.EqualFold(cfg.App.LogFormat, "console"),
		FilePath:    cfg.App.LogFile,
	})
	defer logg.Close()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	subscription := pubsubClient.DomainSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "domain subscription", errors.New("subscription not configured"))
	}

	var (
		writer   engagement.AdEventWriter
		bqClient *bigquery.Client
	)
	if cfg.BigQuery.Enabled {
		bqClient, err = bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
		requireResource(ctx, logg, "bigquery client", err)
		defer func() {
			if err := bqClient.Close(); err != nil {
				logg.Error(ctx, "failed to close bigquery client", err)
			}
		}()

		if cfg.BigQuery.AutoCreateTable {
			err = bqClient.EnsureTable(ctx, engagement.AdEventSchema, engagement.AdEventPartitionField)
		} else {
			err = bqClient.Ping(ctx)
		}
		requireResource(ctx, logg, "ad events table", err)

		bqWriter, err := engagement.NewBigQueryWriter(bqClient, bqClient.Table(), engagement.RetryPolicy{})
		requireResource(ctx, logg, "ad events writer", err)
		writer = bqWriter
	} else {
		logg.Warn(ctx, "bigquery disabled, engagement rows are not stored")
	}

	var notifier engagement.AdCreatedNotifier
	if webhook := engagement.NewWebhookNotifier(cfg.Webhook.AdCreatedURL, cfg.Webhook.Timeout); webhook != nil {
		notifier = webhook
	} else {
		logg.Warn(ctx, "ad_created webhook url not set, notifications are skipped")
	}

	deliveries, err := events.NewDeliveryLog(redisClient, cfg.Eventing.IdempotencyTTL)
	requireResource(ctx, logg, "delivery log", err)

	router, err := engagement.NewRouter(writer, notifier, logg)
	requireResource(ctx, logg, "engagement router", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	consumer, err := engagement.NewWorker(subscription, router, deliveries, metrics.NewEventMetrics(registry), logg)
	requireResource(ctx, logg, "engagement worker", err)

	service, err := NewService(ServiceParams{
		Config:   cfg,
		Logger:   logg,
		Redis:    redisClient,
		PubSub:   pubsubClient,
		BigQuery: bqClient,
		Consumer: consumer,
		Gatherer: registry,
	})
	requireResource(ctx, logg, "worker service", err)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":          cfg.App.Env,
		"subscription": cfg.PubSub.DomainSubscription,
	})
	logg.Info(runCtx, "engagement worker ready")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "engagement worker failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "worker shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
