package outbox

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// InMemoryRepository is a Repository for tests of code that writes to or
// relays the outbox without a database. It ignores transactions.
type InMemoryRepository struct {
	mu       sync.Mutex
	messages []*Message
	lastID   int64
	now      func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{now: time.Now}
}

func (r *InMemoryRepository) Save(ctx context.Context, msg *Message) error {
	return r.SaveBatch(ctx, []*Message{msg})
}

func (r *InMemoryRepository) SaveBatch(_ context.Context, msgs []*Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range msgs {
		r.lastID++
		msg.ID = r.lastID
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = r.now()
		}
		r.messages = append(r.messages, msg)
	}
	return nil
}

// due reports whether msg is waiting to be relayed at t.
func due(msg *Message, t time.Time) bool {
	if msg.PublishedAt != nil || msg.DeadLetteredAt != nil {
		return false
	}
	return msg.NextRetryAt == nil || !msg.NextRetryAt.After(t)
}

func (r *InMemoryRepository) GetUnpublished(_ context.Context, limit int) ([]*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.now()
	batch := make([]*Message, 0, min(limit, len(r.messages)))
	for _, msg := range r.messages {
		if len(batch) == limit {
			break
		}
		if due(msg, t) {
			batch = append(batch, msg)
		}
	}
	return batch, nil
}

func (r *InMemoryRepository) MarkPublished(_ context.Context, id int64) error {
	return r.update(id, func(msg *Message, t time.Time) {
		msg.PublishedAt = &t
	})
}

func (r *InMemoryRepository) MarkFailed(_ context.Context, id int64, reason string, nextRetryAt time.Time) error {
	return r.update(id, func(msg *Message, _ time.Time) {
		msg.RetryCount++
		msg.LastError = &reason
		msg.NextRetryAt = &nextRetryAt
	})
}

func (r *InMemoryRepository) MarkDead(_ context.Context, id int64, reason string) error {
	return r.update(id, func(msg *Message, t time.Time) {
		msg.RetryCount++
		msg.LastError = &reason
		msg.DeadLetteredAt = &t
		msg.DeadLetterReason = &reason
	})
}

func (r *InMemoryRepository) DeleteOld(_ context.Context, olderThanDays int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().AddDate(0, 0, -olderThanDays)
	before := len(r.messages)
	r.messages = slices.DeleteFunc(r.messages, func(msg *Message) bool {
		return msg.PublishedAt != nil && msg.PublishedAt.Before(cutoff)
	})
	return int64(before - len(r.messages)), nil
}

// Messages returns every stored message, published or not.
func (r *InMemoryRepository) Messages() []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.messages)
}

func (r *InMemoryRepository) update(id int64, fn func(*Message, time.Time)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.messages, func(msg *Message) bool { return msg.ID == id })
	if i < 0 {
		return fmt.Errorf("outbox message %d not found", id)
	}
	fn(r.messages[i], r.now())
	return nil
}
