package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/shared/domain"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/gatherly/pkg/observability"
)

// ProcessorConfig holds configuration for the outbox processor.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
}

// DefaultProcessorConfig returns the defaults used by the worker.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     500 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}
}

// outcome is what happened to one message in a relay pass.
type outcome string

const (
	outcomePublished outcome = "published"
	outcomeFailed    outcome = "failed"
	outcomeDead      outcome = "dead"
)

// Processor relays outbox messages to a publisher. Each message is sent as
// an eventbus.ConsumedEvent envelope so consumers on either bus decode the
// same document. A message that keeps failing is retried with exponential
// backoff and dead-lettered after MaxRetries attempts.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	metrics   observability.Metrics
	now       func() time.Time

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    sync.WaitGroup

	statsMu sync.Mutex
	stats   Stats
}

// NewProcessor creates a new outbox processor.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultProcessorConfig().BatchSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultProcessorConfig().PollInterval
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger.With("component", "outbox"),
		metrics:   observability.NoopMetrics{},
		now:       time.Now,
	}
}

// SetMetrics routes relay counters and lag to m.
func (p *Processor) SetMetrics(m observability.Metrics) {
	if m != nil {
		p.metrics = m
	}
}

// Start begins polling in the background. It is a no-op when already running.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}
	p.running = true
	p.stop = make(chan struct{})

	p.done.Add(1)
	go p.loop(ctx, p.stop)

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
		"max_retries", p.config.MaxRetries,
	)
	return nil
}

// Stop halts polling and waits for the in-flight batch.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stop)
	p.mu.Unlock()

	p.done.Wait()
	p.logger.Info("outbox processor stopped")
}

// IsRunning returns true if the processor is running.
func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Processor) loop(ctx context.Context, stop <-chan struct{}) {
	defer p.done.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if _, err := p.relayBatch(ctx); err != nil {
				p.logger.Error("outbox batch failed", "error", err)
			}
		}
	}
}

// ProcessOnce relays a single batch synchronously.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	_, err := p.relayBatch(ctx)
	return err
}

// Drain relays batches until one publishes nothing, and returns how many
// messages were published. Messages waiting for a retry are left alone.
func (p *Processor) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		published, err := p.relayBatch(ctx)
		total += published
		if err != nil || published == 0 {
			return total, err
		}
	}
}

func (p *Processor) relayBatch(ctx context.Context) (int, error) {
	messages, err := p.repo.GetUnpublished(ctx, p.config.BatchSize)
	if err != nil {
		p.noteError(err)
		return 0, err
	}
	p.noteLag(messages)

	published := 0
	for _, msg := range messages {
		if p.relay(ctx, msg) == outcomePublished {
			published++
		}
	}
	return published, nil
}

func (p *Processor) relay(ctx context.Context, msg *Message) outcome {
	err := p.publish(ctx, msg)
	if err == nil {
		if markErr := p.repo.MarkPublished(ctx, msg.ID); markErr != nil {
			// Still unpublished, so the next pass relays it again.
			p.logger.Error("failed to mark outbox message published",
				"id", msg.ID, "event_id", msg.EventID, "error", markErr)
			return outcomeFailed
		}
		p.note(outcomePublished, nil)
		return outcomePublished
	}

	meta := metadataOf(msg)
	p.logger.Warn("failed to publish outbox message",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		"attempt", msg.RetryCount+1,
		"correlation_id", meta.CorrelationID,
		"actor_id", meta.ActorID,
		"error", err,
	)

	if !msg.CanRetry(p.config.MaxRetries) {
		if markErr := p.repo.MarkDead(ctx, msg.ID, err.Error()); markErr != nil {
			p.logger.Error("failed to dead-letter outbox message", "id", msg.ID, "error", markErr)
		}
		p.note(outcomeDead, err)
		return outcomeDead
	}

	retryAt := p.now().Add(p.backoff(msg.RetryCount + 1))
	if markErr := p.repo.MarkFailed(ctx, msg.ID, err.Error(), retryAt); markErr != nil {
		p.logger.Error("failed to schedule outbox retry", "id", msg.ID, "error", markErr)
	}
	p.note(outcomeFailed, err)
	return outcomeFailed
}

func (p *Processor) publish(ctx context.Context, msg *Message) error {
	body, err := msg.Envelope()
	if err != nil {
		return err
	}
	return p.publisher.Publish(ctx, msg.RoutingKey, body)
}

// backoff doubles from RetryBackoffBase per attempt, capped at RetryBackoffMax.
func (p *Processor) backoff(attempt int) time.Duration {
	delay := p.config.RetryBackoffBase
	if delay <= 0 {
		delay = time.Second
	}
	ceiling := p.config.RetryBackoffMax
	if ceiling <= 0 {
		ceiling = time.Minute
	}
	for i := 1; i < attempt && delay < ceiling; i++ {
		delay *= 2
	}
	return min(delay, ceiling)
}

type messageMetadata struct {
	CorrelationID string
	ActorID       string
}

func metadataOf(msg *Message) messageMetadata {
	var meta domain.EventMetadata
	if len(msg.Metadata) == 0 || json.Unmarshal(msg.Metadata, &meta) != nil {
		return messageMetadata{}
	}
	return messageMetadata{
		CorrelationID: meta.CorrelationID.String(),
		ActorID:       meta.ActorID.String(),
	}
}

// Stats is a snapshot of the relay's counters.
type Stats struct {
	IsRunning       bool       `json:"running"`
	PublishedCount  uint64     `json:"published"`
	FailedCount     uint64     `json:"failed"`
	DeadCount       uint64     `json:"dead"`
	LagSeconds      float64    `json:"lag_seconds"`
	LastError       string     `json:"last_error,omitempty"`
	LastErrorAt     *time.Time `json:"last_error_at,omitempty"`
	LastProcessedAt *time.Time `json:"last_processed_at,omitempty"`
	OldestMessageAt *time.Time `json:"oldest_message_at,omitempty"`
}

// GetStats returns current processor statistics.
func (p *Processor) GetStats() Stats {
	running := p.IsRunning()

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	s := p.stats
	s.IsRunning = running
	return s
}

func (p *Processor) note(o outcome, err error) {
	p.metrics.Counter("outbox_messages_total", 1, observability.T("result", string(o)))

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	switch o {
	case outcomePublished:
		p.stats.PublishedCount++
	case outcomeFailed:
		p.stats.FailedCount++
	case outcomeDead:
		p.stats.DeadCount++
	}
	if err != nil {
		p.setLastError(err)
	}
}

func (p *Processor) noteError(err error) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.setLastError(err)
}

// setLastError requires statsMu.
func (p *Processor) setLastError(err error) {
	at := p.now()
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &at
}

func (p *Processor) noteLag(messages []*Message) {
	now := p.now()

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.LastProcessedAt = &now
	p.stats.OldestMessageAt = nil
	p.stats.LagSeconds = 0
	for _, msg := range messages {
		if p.stats.OldestMessageAt == nil || msg.CreatedAt.Before(*p.stats.OldestMessageAt) {
			created := msg.CreatedAt
			p.stats.OldestMessageAt = &created
		}
	}
	if p.stats.OldestMessageAt != nil {
		p.stats.LagSeconds = now.Sub(*p.stats.OldestMessageAt).Seconds()
	}
	p.metrics.Gauge("outbox_lag_seconds", p.stats.LagSeconds)
}
