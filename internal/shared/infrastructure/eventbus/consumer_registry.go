package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/felixgeelhaar/gatherly/pkg/observability"
	"github.com/google/uuid"
)

// ConsumerRegistry maps routing keys to the consumers subscribed to them.
// Both buses dispatch through it.
type ConsumerRegistry struct {
	logger *slog.Logger

	mu     sync.RWMutex
	routes map[string][]EventConsumer
}

func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{logger: logger, routes: map[string][]EventConsumer{}}
}

// Register subscribes consumer to every key in its EventTypes.
func (r *ConsumerRegistry) Register(consumer EventConsumer) {
	keys := consumer.EventTypes()

	r.mu.Lock()
	for _, key := range keys {
		r.routes[key] = append(r.routes[key], consumer)
	}
	r.mu.Unlock()

	r.logger.Debug("consumer registered", "consumer", fmt.Sprintf("%T", consumer), "routing_keys", keys)
}

func (r *ConsumerRegistry) GetConsumers(routingKey string) []EventConsumer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.routes[routingKey])
}

// RoutingKeys lists the subscribed keys in order. The RabbitMQ consumer
// binds its queue to exactly these.
func (r *ConsumerRegistry) RoutingKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.routes))
}

// ConsumerCount counts subscriptions, so a consumer of two keys counts twice.
func (r *ConsumerRegistry) ConsumerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, subs := range r.routes {
		n += len(subs)
	}
	return n
}

// Dispatch runs every consumer subscribed to event.RoutingKey, carrying the
// event's correlation id into ctx. A failing consumer does not stop the
// others; the returned error joins all failures.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	subs := r.GetConsumers(event.RoutingKey)
	if len(subs) == 0 {
		r.logger.DebugContext(ctx, "event has no consumers", "routing_key", event.RoutingKey)
		return nil
	}
	if id := event.Metadata.CorrelationID; id != uuid.Nil {
		ctx = observability.WithCorrelationID(ctx, id.String())
	}

	var failures []error
	for _, consumer := range subs {
		err := consumer.Handle(ctx, event)
		if err == nil {
			continue
		}
		r.logger.ErrorContext(ctx, "event consumer failed",
			"consumer", fmt.Sprintf("%T", consumer),
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
			"error", err,
		)
		failures = append(failures, fmt.Errorf("%T: %w", consumer, err))
	}
	return errors.Join(failures...)
}
