package eventbus

import (
	"context"
	"log/slog"
	"time"
)

// InProcessBus is the Publisher used when EVENT_BUS=inprocess: the outbox
// relay hands each envelope straight to the local consumers.
//
// Publish never fails. A consumer error is logged and swallowed, otherwise
// the relay would redeliver the event to consumers that already handled it.
type InProcessBus struct {
	registry *ConsumerRegistry
	logger   *slog.Logger
}

func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{registry: NewConsumerRegistry(logger), logger: logger}
}

func (b *InProcessBus) RegisterConsumer(consumer EventConsumer) {
	b.registry.Register(consumer)
}

func (b *InProcessBus) Registry() *ConsumerRegistry {
	return b.registry
}

func (b *InProcessBus) Publish(ctx context.Context, routingKey string, body []byte) error {
	event, err := DecodeEnvelope(body, routingKey)
	if err != nil {
		b.logger.ErrorContext(ctx, "dropping malformed envelope", "routing_key", routingKey, "error", err)
		return nil
	}

	began := time.Now()
	err = b.registry.Dispatch(ctx, event)
	attrs := []any{"routing_key", event.RoutingKey, "event_id", event.EventID, "elapsed", time.Since(began)}
	if err != nil {
		b.logger.ErrorContext(ctx, "in-process delivery incomplete", append(attrs, "error", err)...)
		return nil
	}
	b.logger.DebugContext(ctx, "in-process delivery done", attrs...)
	return nil
}

func (b *InProcessBus) Close() error { return nil }

// NoopPublisher is the API process's Publisher when a separate worker relays
// the outbox. It discards everything.
type NoopPublisher struct {
	logger *slog.Logger
}

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	p.logger.DebugContext(ctx, "publish discarded", "routing_key", routingKey, "bytes", len(body))
	return nil
}

func (p *NoopPublisher) Close() error { return nil }
