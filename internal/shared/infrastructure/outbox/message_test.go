package outbox

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/shared/domain"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	domain.BaseEvent
	Email string `json:"email"`
}

func newTestEvent(aggregateID uuid.UUID, email string) *testEvent {
	return &testEvent{
		BaseEvent: domain.NewBaseEvent(aggregateID, "Invitation", "invitations.invitation.created", time.Now()),
		Email:     email,
	}
}

func TestNewMessage(t *testing.T) {
	aggregateID := uuid.New()
	event := newTestEvent(aggregateID, "a@x.com")
	event.SetMetadata(domain.EventMetadata{ActorID: uuid.New(), CorrelationID: uuid.New()})

	msg, err := NewMessage(event)
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), msg.EventID)
	assert.Equal(t, "Invitation", msg.AggregateType)
	assert.Equal(t, aggregateID, msg.AggregateID)
	assert.Equal(t, "invitations.invitation.created", msg.EventType)
	assert.Equal(t, "invitations.invitation.created", msg.RoutingKey)
	assert.JSONEq(t, `{"email":"a@x.com"}`, string(msg.Payload))
	assert.Equal(t, event.OccurredAt(), msg.CreatedAt)
	assert.False(t, msg.IsPublished())
	assert.Zero(t, msg.RetryCount)
}

func TestMessagesFrom(t *testing.T) {
	id := uuid.New()
	msgs, err := MessagesFrom([]domain.DomainEvent{newTestEvent(id, "a@x.com"), newTestEvent(id, "b@x.com")})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.NotEqual(t, msgs[0].EventID, msgs[1].EventID)

	empty, err := MessagesFrom(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMessage_Envelope(t *testing.T) {
	actor := uuid.New()
	event := newTestEvent(uuid.New(), "a@x.com")
	event.SetMetadata(domain.EventMetadata{ActorID: actor})

	msg, err := NewMessage(event)
	require.NoError(t, err)

	body, err := msg.Envelope()
	require.NoError(t, err)

	var consumed eventbus.ConsumedEvent
	require.NoError(t, json.Unmarshal(body, &consumed))
	assert.Equal(t, msg.EventID, consumed.EventID)
	assert.Equal(t, msg.AggregateID, consumed.AggregateID)
	assert.Equal(t, "Invitation", consumed.AggregateType)
	assert.Equal(t, msg.RoutingKey, consumed.RoutingKey)
	assert.True(t, msg.CreatedAt.Equal(consumed.OccurredAt))
	assert.JSONEq(t, `{"email":"a@x.com"}`, string(consumed.Payload))
	assert.Equal(t, actor, consumed.Metadata.ActorID)
}

func TestMessage_CanRetry(t *testing.T) {
	msg := &Message{}
	assert.True(t, msg.CanRetry(3))
	assert.False(t, msg.CanRetry(1))
	assert.False(t, msg.CanRetry(0))

	msg.RetryCount = 1
	assert.True(t, msg.CanRetry(3))
	msg.RetryCount = 2
	assert.False(t, msg.CanRetry(3))
}
