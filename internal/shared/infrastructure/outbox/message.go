package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/shared/domain"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// Message is one domain event waiting in the outbox table. Payload is the
// event body alone; Envelope adds the identifying fields for the wire.
type Message struct {
	ID int64

	// Event identity, copied from the domain event.
	EventID       uuid.UUID
	EventType     string
	RoutingKey    string
	AggregateType string
	AggregateID   uuid.UUID
	Payload       json.RawMessage
	Metadata      json.RawMessage
	CreatedAt     time.Time

	// Delivery state, owned by the Processor.
	PublishedAt      *time.Time
	RetryCount       int
	NextRetryAt      *time.Time
	LastError        *string
	DeadLetteredAt   *time.Time
	DeadLetterReason *string
}

// NewMessage captures event for the outbox.
func NewMessage(event domain.DomainEvent) (*Message, error) {
	key := event.RoutingKey()
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("outbox: encode %s: %w", key, err)
	}
	meta, err := json.Marshal(event.Metadata())
	if err != nil {
		return nil, fmt.Errorf("outbox: encode %s metadata: %w", key, err)
	}

	return &Message{
		EventID:       event.EventID(),
		EventType:     key,
		RoutingKey:    key,
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		Payload:       payload,
		Metadata:      meta,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// MessagesFrom captures every event, failing on the first that cannot be
// encoded.
func MessagesFrom(events []domain.DomainEvent) ([]*Message, error) {
	out := make([]*Message, len(events))
	for i, event := range events {
		msg, err := NewMessage(event)
		if err != nil {
			return nil, err
		}
		out[i] = msg
	}
	return out, nil
}

// Envelope is the JSON document consumers decode into eventbus.ConsumedEvent.
func (m *Message) Envelope() ([]byte, error) {
	env := eventbus.ConsumedEvent{
		EventID:       m.EventID,
		RoutingKey:    m.RoutingKey,
		AggregateType: m.AggregateType,
		AggregateID:   m.AggregateID,
		OccurredAt:    m.CreatedAt,
		Payload:       m.Payload,
	}
	if len(m.Metadata) != 0 {
		if err := json.Unmarshal(m.Metadata, &env.Metadata); err != nil {
			return nil, fmt.Errorf("outbox: decode metadata of event %s: %w", m.EventID, err)
		}
	}
	return json.Marshal(env)
}

func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

// CanRetry reports whether a failure of the attempt in flight still leaves
// room for another one under maxAttempts.
func (m *Message) CanRetry(maxAttempts int) bool {
	return m.RetryCount+1 < maxAttempts
}
