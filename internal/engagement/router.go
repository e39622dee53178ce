package engagement

import (
	"context"
	"errors"
	"fmt"

	"github.com/autoads/autoads-backend/pkg/enums"
	"github.com/autoads/autoads-backend/pkg/events"
	"github.com/autoads/autoads-backend/pkg/logger"
)

var ErrUnsupportedEventType = errors.New("unsupported event type")

// AdEventWriter stores engagement rows.
type AdEventWriter interface {
	InsertAdEvent(ctx context.Context, row AdEventRow) error
}

// AdCreatedNotifier forwards new ads to the automation webhook.
type AdCreatedNotifier interface {
	NotifyAdCreated(ctx context.Context, evt events.AdCreated) error
}

// Handler processes one decoded envelope.
type Handler interface {
	Handle(ctx context.Context, env events.Envelope) error
}

// HandlerFunc adapts functions to the Handler interface.
type HandlerFunc func(ctx context.Context, env events.Envelope) error

func (fn HandlerFunc) Handle(ctx context.Context, env events.Envelope) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, env)
}

// Router dispatches envelopes per event type. A nil writer or notifier turns
// the matching events into logged no-ops.
type Router struct {
	handlers map[enums.EventType]Handler
	writer   AdEventWriter
	notifier AdCreatedNotifier
	logg     *logger.Logger
}

func NewRouter(writer AdEventWriter, notifier AdCreatedNotifier, logg *logger.Logger) (*Router, error) {
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	r := &Router{writer: writer, notifier: notifier, logg: logg}
	r.handlers = map[enums.EventType]Handler{
		enums.EventAdCreated:         HandlerFunc(r.handleAdCreated),
		enums.EventAdViewed:          HandlerFunc(r.handleEngagement),
		enums.EventAdWhatsAppClicked: HandlerFunc(r.handleEngagement),
		enums.EventMetricsImported:   HandlerFunc(r.handleMetricsImported),
	}
	return r, nil
}

// Handle dispatches the envelope. Unknown types are not retryable.
func (r *Router) Handle(ctx context.Context, env events.Envelope) error {
	h, ok := r.handlers[env.EventType]
	if !ok {
		return events.NewNonRetryableError(fmt.Errorf("%w: %s", ErrUnsupportedEventType, env.EventType))
	}
	return h.Handle(ctx, env)
}

func (r *Router) handleAdCreated(ctx context.Context, env events.Envelope) error {
	payload, err := events.DecodeData[events.AdCreated](env)
	if err != nil {
		return events.NewNonRetryableError(err)
	}
	if r.notifier == nil {
		r.logg.Debug(ctx, "ad_created webhook disabled")
		return nil
	}
	if err := r.notifier.NotifyAdCreated(ctx, payload); err != nil {
		return err
	}
	r.logg.Info(r.logg.WithField(ctx, "ad_id", payload.AdID.String()), "ad_created webhook delivered")
	return nil
}

func (r *Router) handleEngagement(ctx context.Context, env events.Envelope) error {
	payload, err := events.DecodeData[events.AdEngagement](env)
	if err != nil {
		return events.NewNonRetryableError(err)
	}
	if r.writer == nil {
		r.logg.Debug(ctx, "bigquery sink disabled")
		return nil
	}
	raw, err := EncodeJSON(env.Data)
	if err != nil {
		return events.NewNonRetryableError(err)
	}
	return r.writer.InsertAdEvent(ctx, AdEventRow{
		EventID:    env.EventID.String(),
		EventType:  env.EventType.String(),
		OccurredAt: env.OccurredAt.UTC(),
		AdID:       payload.AdID.String(),
		OwnerID:    payload.OwnerID.String(),
		Slug:       payload.Slug,
		IP:         optionalString(payload.IP),
		UserAgent:  optionalString(payload.UserAgent),
		Total:      payload.Total,
		Payload:    raw,
	})
}

func (r *Router) handleMetricsImported(ctx context.Context, env events.Envelope) error {
	payload, err := events.DecodeData[events.MetricsImported](env)
	if err != nil {
		return events.NewNonRetryableError(err)
	}
	r.logg.Info(r.logg.WithFields(ctx, map[string]any{
		"import_id": payload.ImportID.String(),
		"rows":      payload.Rows,
	}), "metrics import recorded")
	return nil
}
