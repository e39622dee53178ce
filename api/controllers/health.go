package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/autoads/autoads-backend/api/responses"
	"github.com/autoads/autoads-backend/pkg/config"
	"github.com/autoads/autoads-backend/pkg/logger"
)

const readinessTimeout = 3 * time.Second

// Pinger checks one backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessCheck names a dependency probed by HealthReady. A nil Pinger is
// reported as disabled.
type ReadinessCheck struct {
	Name   string
	Pinger Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AutoAds-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency and answers 503 when any of them fails.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks ...ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AutoAds-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := http.StatusOK
		report := make(map[string]string, len(checks))
		for _, check := range checks {
			if check.Pinger == nil {
				report[check.Name] = "disabled"
				continue
			}
			if err := check.Pinger.Ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				report[check.Name] = "down"
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", check.Name), "readiness check failed", err)
				}
				continue
			}
			report[check.Name] = "up"
		}

		state := "ready"
		if status != http.StatusOK {
			state = "degraded"
		}
		responses.WriteSuccessStatus(w, status, map[string]any{
			"status": state,
			"checks": report,
		})
	}
}
