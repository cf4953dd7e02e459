package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	OrderPlaced                = "order.placed"
	OrderCancelled             = "order.cancelled"
	OrderDeleted               = "order.deleted"
	OrderStatusChanged         = "order.status_changed"
	UserPasswordResetRequested = "user.password_reset_requested"
)

// Event is the envelope written to the broker. Key selects the partition.
type Event struct {
	ID         uuid.UUID              `json:"id"`
	Type       string                 `json:"type"`
	Key        string                 `json:"key"`
	OccurredAt time.Time              `json:"occurredAt"`
	Data       map[string]interface{} `json:"data"`
}

func New(eventType, key string, data map[string]interface{}) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }
