// Package events publishes domain events for downstream notification workers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by this service.
const (
	TypeDeliverySkipped       = "delivery.skipped"
	TypeDeliveryUnskipped     = "delivery.unskipped"
	TypeDeliveryStatusChanged = "delivery.status_changed"
	TypeSubscriptionChanged   = "subscription.status_changed"
	TypePlanChanged           = "subscription.plan_changed"
	TypeHolidayCreated        = "holiday.created"
)

// Event is the envelope written to the broker.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// New stamps an event with an id and time.
func New(eventType string, payload any) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Marshal encodes the envelope as JSON.
func (e Event) Marshal() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", e.Type, err)
	}
	return body, nil
}

// Publisher delivers events. Publishing is best effort: callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// LogPublisher only logs events; used when no broker is configured.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, evt Event) error {
	p.log.Debug("event", "type", evt.Type, "id", evt.ID)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// Emit publishes and logs a failure instead of returning it.
func Emit(ctx context.Context, pub Publisher, log *slog.Logger, evt Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, evt); err != nil {
		log.Warn("publish event failed", "type", evt.Type, "id", evt.ID, "error", err)
	}
}
