package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/autoads/autoads-backend/pkg/logger"
)

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// NoopPublisher drops every event. Used when Pub/Sub is disabled.
type NoopPublisher struct{}

// Publish implements Publisher.
func (NoopPublisher) Publish(context.Context, Event) error { return nil }

type messageSender interface {
	Send(ctx context.Context, data []byte, attrs map[string]string) (string, error)
}

type topicSender struct {
	topic *gcppubsub.Publisher
}

func (s topicSender) Send(ctx context.Context, data []byte, attrs map[string]string) (string, error) {
	return s.topic.Publish(ctx, &gcppubsub.Message{Data: data, Attributes: attrs}).Get(ctx)
}

// PubSubPublisher wraps envelopes and blocks until Pub/Sub acknowledges them.
type PubSubPublisher struct {
	sender messageSender
	logg   *logger.Logger
	now    func() time.Time
}

// NewPubSubPublisher builds a publisher over the given topic handle.
func NewPubSubPublisher(topic *gcppubsub.Publisher, logg *logger.Logger) (*PubSubPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub topic publisher is required")
	}
	return newPubSubPublisher(topicSender{topic: topic}, logg)
}

func newPubSubPublisher(sender messageSender, logg *logger.Logger) (*PubSubPublisher, error) {
	if sender == nil {
		return nil, errors.New("message sender is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &PubSubPublisher{sender: sender, logg: logg, now: time.Now}, nil
}

// Publish implements Publisher.
func (p *PubSubPublisher) Publish(ctx context.Context, evt Event) error {
	env, err := NewEnvelope(evt, p.now())
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	msgID, err := p.sender.Send(ctx, body, env.Attributes())
	if err != nil {
		return fmt.Errorf("publish %s: %w", env.EventType, err)
	}
	p.logg.Debug(p.logg.WithFields(ctx, map[string]any{
		"event_id":   env.EventID.String(),
		"event_type": env.EventType.String(),
		"message_id": msgID,
	}), "domain event published")
	return nil
}
