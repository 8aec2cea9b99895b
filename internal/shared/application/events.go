package application

import (
	"context"

	"github.com/felixgeelhaar/gatherly/internal/shared/domain"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/gatherly/pkg/observability"
	"github.com/google/uuid"
)

// EventSource is an aggregate holding events not yet written to the outbox.
type EventSource interface {
	DomainEvents() []domain.DomainEvent
	ClearDomainEvents()
}

// StampEvents attributes events to actorID under the correlation id carried
// by ctx (the HTTP request or CLI invocation), or a new one when ctx has
// none. Every event of one call shares a causation id.
func StampEvents(ctx context.Context, events []domain.DomainEvent, actorID uuid.UUID) domain.EventMetadata {
	meta := domain.EventMetadata{
		CorrelationID: observability.CorrelationUUID(ctx),
		CausationID:   uuid.New(),
		ActorID:       actorID,
	}
	if meta.CorrelationID == uuid.Nil {
		meta.CorrelationID = uuid.New()
	}
	for _, event := range events {
		if e, ok := event.(interface{ SetMetadata(domain.EventMetadata) }); ok {
			e.SetMetadata(meta)
		}
	}
	return meta
}

// Enqueue stamps src's pending events and saves them to the outbox using the
// transaction in ctx. The events are cleared only once saved.
func Enqueue(ctx context.Context, repo outbox.Repository, src EventSource, actorID uuid.UUID) error {
	events := src.DomainEvents()
	if len(events) == 0 {
		return nil
	}
	StampEvents(ctx, events, actorID)

	msgs, err := outbox.MessagesFrom(events)
	if err != nil {
		return err
	}
	if err := repo.SaveBatch(ctx, msgs); err != nil {
		return err
	}
	src.ClearDomainEvents()
	return nil
}
