package events

import (
	"context"
	"errors"
	"time"

	"github.com/autoads/autoads-backend/pkg/redis"
	"github.com/google/uuid"
)

// DeliveryLog remembers which events a consumer has taken on, so Pub/Sub
// redeliveries are skipped. Markers live under
// autoads:idempotency:evt:processed:<consumer>:<event_id>.
type DeliveryLog struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewDeliveryLog keeps markers for ttl; zero keeps them forever.
func NewDeliveryLog(store redis.IdempotencyStore, ttl time.Duration) (*DeliveryLog, error) {
	switch {
	case store == nil:
		return nil, errors.New("idempotency store is required")
	case ttl < 0:
		return nil, errors.New("ttl must be non-negative")
	}
	return &DeliveryLog{store: store, ttl: ttl}, nil
}

// Claim marks eventID as taken by consumer. It reports false when another
// delivery of the same event claimed it first.
func (l *DeliveryLog) Claim(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	key, err := l.key(consumer, eventID)
	if err != nil {
		return false, err
	}
	return l.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), l.ttl)
}

// Release drops the marker so the next delivery is handled again.
func (l *DeliveryLog) Release(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := l.key(consumer, eventID)
	if err != nil {
		return err
	}
	return l.store.Del(ctx, key)
}

func (l *DeliveryLog) key(consumer string, eventID uuid.UUID) (string, error) {
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if eventID == uuid.Nil {
		return "", errors.New("event id is required")
	}
	return l.store.IdempotencyKey("evt:processed:"+consumer, eventID.String()), nil
}
