package outbox

import (
	"context"
	"time"
)

// Repository stores outbox messages. Writes join the transaction carried in
// ctx, so a message commits or rolls back with the aggregate that raised it.
type Repository interface {
	Save(ctx context.Context, msg *Message) error
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished returns up to limit messages that are neither published
	// nor dead and whose retry time has passed, oldest first.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, err string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id int64, reason string) error

	// DeleteOld purges published messages and reports how many went.
	DeleteOld(ctx context.Context, olderThanDays int) (int64, error)
}
