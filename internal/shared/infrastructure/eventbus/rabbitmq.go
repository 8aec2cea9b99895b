package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// ExchangeName is the durable topic exchange for domain events.
	ExchangeName = "gatherly.domain.events"

	// DefaultQueueName is the worker's notification queue.
	DefaultQueueName = "gatherly.notifications"

	deadLetterSuffix = ".dead"
)

// session is one AMQP connection with a single channel on it.
type session struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// openSession dials url and declares the topic exchange.
func openSession(url, exchange string) (*session, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	s := &session{conn: conn}
	if s.ch, err = conn.Channel(); err != nil {
		_ = s.close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	if err := s.ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = s.close()
		return nil, fmt.Errorf("rabbitmq: declare exchange %q: %w", exchange, err)
	}
	return s, nil
}

// declareQueue declares queue with a fanout dead-letter exchange and a
// parking queue behind it, both named queue+".dead". Rejected deliveries
// end up there instead of being dropped.
func (s *session) declareQueue(queue string) error {
	dlx := queue + deadLetterSuffix
	if err := s.ch.ExchangeDeclare(dlx, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: declare dead-letter exchange %q: %w", dlx, err)
	}
	if _, err := s.ch.QueueDeclare(dlx, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: declare dead-letter queue %q: %w", dlx, err)
	}
	if err := s.ch.QueueBind(dlx, "", dlx, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: bind dead-letter queue %q: %w", dlx, err)
	}
	args := amqp.Table{"x-dead-letter-exchange": dlx}
	if _, err := s.ch.QueueDeclare(queue, true, false, false, false, args); err != nil {
		return fmt.Errorf("rabbitmq: declare queue %q: %w", queue, err)
	}
	return nil
}

func (s *session) close() error {
	var errs []error
	if s.ch != nil && !s.ch.IsClosed() {
		errs = append(errs, s.ch.Close())
	}
	if s.conn != nil && !s.conn.IsClosed() {
		errs = append(errs, s.conn.Close())
	}
	return errors.Join(errs...)
}

// RabbitMQPublisher is the outbox relay's Publisher when EVENT_BUS=rabbitmq.
type RabbitMQPublisher struct {
	exchange string
	logger   *slog.Logger

	mu   sync.Mutex
	sess *session
}

func NewRabbitMQPublisher(url string, logger *slog.Logger) (*RabbitMQPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sess, err := openSession(url, ExchangeName)
	if err != nil {
		return nil, err
	}
	logger.Info("rabbitmq publisher ready", "exchange", ExchangeName)
	return &RabbitMQPublisher{exchange: ExchangeName, logger: logger, sess: sess}, nil
}

// Publish sends body as a persistent JSON message.
func (p *RabbitMQPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	msg := amqp.Publishing{
		AppId:        "gatherly",
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.sess.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq: publish %s: %w", routingKey, err)
	}
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sess.close()
}

// RabbitMQConsumerConfig configures NewRabbitMQConsumer. Empty names take
// the package defaults.
type RabbitMQConsumerConfig struct {
	URL       string
	QueueName string
	Exchange  string
	Logger    *slog.Logger
}

// RabbitMQConsumer feeds one durable queue into a ConsumerRegistry, one
// delivery at a time.
type RabbitMQConsumer struct {
	queue    string
	exchange string
	registry *ConsumerRegistry
	logger   *slog.Logger

	mu      sync.Mutex
	sess    *session
	running bool
}

func NewRabbitMQConsumer(cfg RabbitMQConsumerConfig, registry *ConsumerRegistry) (*RabbitMQConsumer, error) {
	c := &RabbitMQConsumer{
		queue:    orDefault(cfg.QueueName, DefaultQueueName),
		exchange: orDefault(cfg.Exchange, ExchangeName),
		registry: registry,
		logger:   cfg.Logger,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	sess, err := openSession(cfg.URL, c.exchange)
	if err != nil {
		return nil, err
	}
	if err := sess.declareQueue(c.queue); err != nil {
		_ = sess.close()
		return nil, err
	}
	c.sess = sess

	c.logger.Info("rabbitmq consumer ready", "queue", c.queue, "exchange", c.exchange)
	return c, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// RegisterConsumer adds consumer to the registry and binds the queue to
// each of its routing keys.
func (c *RabbitMQConsumer) RegisterConsumer(consumer EventConsumer) error {
	c.registry.Register(consumer)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range consumer.EventTypes() {
		if err := c.sess.ch.QueueBind(c.queue, key, c.exchange, false, nil); err != nil {
			return fmt.Errorf("rabbitmq: bind %s to %s: %w", c.queue, key, err)
		}
	}
	return nil
}

// Start blocks, consuming until ctx ends or the broker closes the channel.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	if !c.markRunning(true) {
		return errors.New("rabbitmq: consumer already running")
	}
	defer c.markRunning(false)

	if err := c.sess.ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("rabbitmq: set qos: %w", err)
	}
	deliveries, err := c.sess.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: consume %s: %w", c.queue, err)
	}

	c.logger.Info("consuming", "queue", c.queue, "routing_keys", c.registry.RoutingKeys())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq: delivery channel closed")
			}
			c.settle(d, c.deliver(ctx, d))
		}
	}
}

// markRunning flips the running flag and reports whether it changed.
func (c *RabbitMQConsumer) markRunning(on bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running == on {
		return false
	}
	c.running = on
	return true
}

func (c *RabbitMQConsumer) deliver(ctx context.Context, d amqp.Delivery) error {
	event, err := DecodeEnvelope(d.Body, d.RoutingKey)
	if err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	return c.registry.Dispatch(ctx, event)
}

// settle acks a handled delivery and dead-letters a failed one. Failures
// are never requeued, so a poison message cannot loop.
func (c *RabbitMQConsumer) settle(d amqp.Delivery, err error) {
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			c.logger.Error("ack failed", "delivery_tag", d.DeliveryTag, "error", ackErr)
		}
		return
	}
	c.logger.Error("delivery dead-lettered",
		"queue", c.queue,
		"routing_key", d.RoutingKey,
		"error", err,
	)
	if nackErr := d.Nack(false, false); nackErr != nil {
		c.logger.Error("nack failed", "delivery_tag", d.DeliveryTag, "error", nackErr)
	}
}

func (c *RabbitMQConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.close()
}
