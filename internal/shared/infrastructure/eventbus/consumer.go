// Package eventbus carries outbox messages to consumers, either in-process
// or over a RabbitMQ topic exchange.
package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/shared/domain"
	"github.com/google/uuid"
)

// Publisher sends an encoded event under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// EventConsumer handles specific event types.
type EventConsumer interface {
	// EventTypes returns the routing keys this consumer handles,
	// e.g. "invitations.invitation.confirmed".
	EventTypes() []string

	// Handle processes the event.
	Handle(ctx context.Context, event *ConsumedEvent) error
}

// ConsumedEvent is the wire envelope of a published domain event.
type ConsumedEvent struct {
	EventID       uuid.UUID            `json:"event_id"`
	AggregateID   uuid.UUID            `json:"aggregate_id"`
	AggregateType string               `json:"aggregate_type"`
	RoutingKey    string               `json:"routing_key"`
	OccurredAt    time.Time            `json:"occurred_at"`
	Payload       json.RawMessage      `json:"payload"`
	Metadata      domain.EventMetadata `json:"metadata"`
}

// Decode unmarshals the payload into v.
func (e *ConsumedEvent) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// DecodeEnvelope parses a published body. Envelopes written without a
// routing key take the one they were delivered under.
func DecodeEnvelope(body []byte, deliveredAs string) (*ConsumedEvent, error) {
	var event ConsumedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, err
	}
	if event.RoutingKey == "" {
		event.RoutingKey = deliveredAs
	}
	return &event, nil
}
