package engagement

import (
	"context"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/autoads/autoads-backend/pkg/events"
	"github.com/autoads/autoads-backend/pkg/logger"
	"github.com/autoads/autoads-backend/pkg/metrics"
	"github.com/google/uuid"
)

// ConsumerName scopes the idempotency markers of this worker.
const ConsumerName = "engagement"

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *gcppubsub.Message)) error
}

type deliveryLog interface {
	Claim(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Release(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Worker consumes domain events from Pub/Sub while honoring Redis idempotency.
type Worker struct {
	subscription receiver
	handler      Handler
	deliveries   deliveryLog
	metrics      *metrics.EventMetrics
	logg         *logger.Logger
}

// NewWorker wires the consumer. metrics may be nil.
func NewWorker(subscription receiver, handler Handler, deliveries deliveryLog, m *metrics.EventMetrics, logg *logger.Logger) (*Worker, error) {
	if subscription == nil {
		return nil, errors.New("subscription is required")
	}
	if handler == nil {
		return nil, errors.New("handler is required")
	}
	if deliveries == nil {
		return nil, errors.New("delivery log is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Worker{
		subscription: subscription,
		handler:      handler,
		deliveries:   deliveries,
		metrics:      m,
		logg:         logg,
	}, nil
}

type processResult struct {
	nack bool
}

// Run consumes messages until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	return w.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if w.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (w *Worker) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	fields := map[string]any{"message_id": msg.ID}
	logCtx := w.logg.WithFields(ctx, fields)

	env, err := events.DecodeEnvelope(msg.Data, msg.Attributes)
	if err != nil {
		fields["error"] = err.Error()
		w.logg.Warn(w.logg.WithFields(ctx, fields), "invalid event envelope")
		return processResult{}
	}
	fields["event_id"] = env.EventID.String()
	fields["event_type"] = env.EventType.String()
	fields["occurred_at"] = env.OccurredAt.Format(time.RFC3339Nano)
	logCtx = w.logg.WithFields(ctx, fields)

	claimed, err := w.deliveries.Claim(logCtx, ConsumerName, env.EventID)
	if err != nil {
		w.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if !claimed {
		w.logg.Info(logCtx, "event already processed")
		return processResult{}
	}

	start := time.Now()
	err = w.handler.Handle(logCtx, env)
	w.metrics.ObserveDuration(env.EventType.String(), time.Since(start))
	if err != nil {
		w.metrics.IncFailure(env.EventType.String())
		if events.IsNonRetryable(err) {
			w.logg.Warn(w.logg.WithField(logCtx, "error", err.Error()), "dropping event after non-retryable error")
			return processResult{}
		}
		w.logg.Error(logCtx, "handler error", err)
		_ = w.deliveries.Release(logCtx, ConsumerName, env.EventID)
		return processResult{nack: true}
	}

	w.metrics.IncSuccess(env.EventType.String())
	w.logg.Info(logCtx, "event handled")
	return processResult{}
}
