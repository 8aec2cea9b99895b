package eventbus_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInProcessBus_Publish(t *testing.T) {
	bus := eventbus.NewInProcessBus(nil)
	consumer := &recordingConsumer{keys: []string{"invitations.invitation.confirmed"}}
	bus.RegisterConsumer(consumer)

	event := newEvent("invitations.invitation.confirmed")
	body, err := json.Marshal(event)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), event.RoutingKey, body))
	require.Len(t, consumer.events, 1)
	assert.Equal(t, event.EventID, consumer.events[0].EventID)
	assert.JSONEq(t, string(event.Payload), string(consumer.events[0].Payload))
}

func TestInProcessBus_FillsMissingRoutingKey(t *testing.T) {
	bus := eventbus.NewInProcessBus(nil)
	consumer := &recordingConsumer{keys: []string{"invitations.invitation.created"}}
	bus.RegisterConsumer(consumer)

	event := newEvent("")
	body, err := json.Marshal(event)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), "invitations.invitation.created", body))
	assert.Len(t, consumer.events, 1)
}

func TestInProcessBus_SwallowsFailures(t *testing.T) {
	bus := eventbus.NewInProcessBus(nil)
	bus.RegisterConsumer(&recordingConsumer{keys: []string{"k"}, err: errors.New("boom")})

	body, err := json.Marshal(newEvent("k"))
	require.NoError(t, err)

	assert.NoError(t, bus.Publish(context.Background(), "k", body))
	assert.NoError(t, bus.Publish(context.Background(), "k", []byte("not json")))
	assert.Equal(t, 1, bus.Registry().ConsumerCount())
}

func TestNoopPublisher(t *testing.T) {
	p := eventbus.NewNoopPublisher(nil)
	assert.NoError(t, p.Publish(context.Background(), "k", []byte("{}")))
	assert.NoError(t, p.Close())
}
