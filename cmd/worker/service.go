package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/autoads/autoads-backend/api"
	"github.com/autoads/autoads-backend/api/controllers"
	"github.com/autoads/autoads-backend/pkg/bigquery"
	"github.com/autoads/autoads-backend/pkg/config"
	"github.com/autoads/autoads-backend/pkg/logger"
	"github.com/autoads/autoads-backend/pkg/pubsub"
	"github.com/autoads/autoads-backend/pkg/redis"
)

type consumer interface {
	Run(ctx context.Context) error
}

type ServiceParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	Redis    *redis.Client
	PubSub   *pubsub.Client
	BigQuery *bigquery.Client
	Consumer consumer
	Gatherer prometheus.Gatherer
}

// Service runs the engagement consumer next to a small health and metrics
// listener. BigQuery is optional.
type Service struct {
	cfg      *config.Config
	logg     *logger.Logger
	redis    *redis.Client
	pubsub   *pubsub.Client
	bigquery *bigquery.Client
	consumer consumer
	gatherer prometheus.Gatherer
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Redis == nil {
		return nil, errors.New("redis client is required")
	}
	if params.PubSub == nil {
		return nil, errors.New("pubsub client is required")
	}
	if params.Consumer == nil {
		return nil, errors.New("consumer is required")
	}

	return &Service{
		cfg:      params.Config,
		logg:     params.Logger,
		redis:    params.Redis,
		pubsub:   params.PubSub,
		bigquery: params.BigQuery,
		consumer: params.Consumer,
		gatherer: params.Gatherer,
	}, nil
}

func (s *Service) checks() []controllers.ReadinessCheck {
	checks := []controllers.ReadinessCheck{
		{Name: "redis", Pinger: s.redis},
		{Name: "pubsub", Pinger: s.pubsub},
	}
	if s.bigquery != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "bigquery", Pinger: s.bigquery})
	}
	return checks
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	for _, check := range s.checks() {
		if err := check.Pinger.Ping(ctx); err != nil {
			s.logg.Error(ctx, fmt.Sprintf("%s ping failed", check.Name), err)
			return fmt.Errorf("%s ping failed: %w", check.Name, err)
		}
	}
	s.logg.Info(ctx, "all worker dependencies are ready")
	return nil
}

func (s *Service) handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health/live", controllers.HealthLive(s.cfg))
	r.Get("/health/ready", controllers.HealthReady(s.cfg, s.logg, s.checks()...))
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = s.cfg.App.Port
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.consumer.Run(gctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logg.Error(gctx, "consumer stopped unexpectedly", err)
		}
		return err
	})
	g.Go(func() error {
		return api.Serve(gctx, api.NewServer(":"+port, s.handler()), s.logg)
	})

	err := g.Wait()
	if ctx.Err() != nil {
		s.logg.Info(ctx, "worker context canceled")
		return ctx.Err()
	}
	return err
}
