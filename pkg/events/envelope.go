package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/autoads/autoads-backend/pkg/enums"
	"github.com/google/uuid"
)

// CurrentVersion is the envelope version written by this service.
const CurrentVersion = 1

// Attribute keys set on every published message.
const (
	AttrEventType = "event_type"
	AttrEventID   = "event_id"
	AttrVersion   = "version"
)

// Actor identifies who triggered the event, when known.
type Actor struct {
	UserID uuid.UUID `json:"userId"`
}

// Envelope is the JSON body of every domain event published to Pub/Sub.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    uuid.UUID       `json:"eventId"`
	EventType  enums.EventType `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *Actor          `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// Event is what producers hand to a Publisher.
type Event struct {
	Type    enums.EventType
	ActorID *uuid.UUID
	Data    any
}

// NewEnvelope stamps evt with a fresh id and timestamp.
func NewEnvelope(evt Event, now time.Time) (Envelope, error) {
	if !evt.Type.IsValid() {
		return Envelope{}, fmt.Errorf("invalid event type %q", evt.Type)
	}
	data := json.RawMessage("{}")
	if evt.Data != nil {
		raw, err := json.Marshal(evt.Data)
		if err != nil {
			return Envelope{}, fmt.Errorf("marshal %s payload: %w", evt.Type, err)
		}
		data = raw
	}
	env := Envelope{
		Version:    CurrentVersion,
		EventID:    uuid.New(),
		EventType:  evt.Type,
		OccurredAt: now.UTC(),
		Data:       data,
	}
	if evt.ActorID != nil && *evt.ActorID != uuid.Nil {
		env.Actor = &Actor{UserID: *evt.ActorID}
	}
	return env, nil
}

// Attributes returns the Pub/Sub attributes describing the envelope.
func (e Envelope) Attributes() map[string]string {
	return map[string]string{
		AttrEventType: e.EventType.String(),
		AttrEventID:   e.EventID.String(),
		AttrVersion:   fmt.Sprintf("%d", e.Version),
	}
}

// DecodeEnvelope parses a message body. A missing event type in the body falls
// back to the event_type attribute.
func DecodeEnvelope(body []byte, attrs map[string]string) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.EventType == "" {
		env.EventType = enums.EventType(strings.TrimSpace(attrs[AttrEventType]))
	}
	if !env.EventType.IsValid() {
		return Envelope{}, fmt.Errorf("event_type: invalid value %q", env.EventType)
	}
	if env.EventID == uuid.Nil {
		parsed, err := uuid.Parse(strings.TrimSpace(attrs[AttrEventID]))
		if err != nil {
			return Envelope{}, errors.New("event_id missing")
		}
		env.EventID = parsed
	}
	if env.Version == 0 {
		env.Version = CurrentVersion
	}
	return env, nil
}
