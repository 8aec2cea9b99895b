// Command worker relays the transactional outbox and, with EVENT_BUS=rabbitmq,
// consumes the notification queue.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/app"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/gatherly/pkg/config"
	"github.com/felixgeelhaar/gatherly/pkg/observability"
)

const drainTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:          observability.LogLevel(cfg.LogLevel),
		Format:         observability.LogFormat(cfg.LogFormat),
		Output:         os.Stdout,
		ServiceName:    "gatherly-worker",
		ServiceVersion: cfg.Version,
	})
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("worker failed", "error", err)
		os.Exit(1)
	}
}

type worker struct {
	cfg    *config.Config
	c      *app.Container
	logger *slog.Logger
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	c, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	w := &worker{cfg: cfg, c: c, logger: logger}
	logger.Info("worker starting",
		"event_bus", cfg.EventBus,
		"poll_interval", cfg.Outbox.PollInterval,
		"batch_size", cfg.Outbox.BatchSize,
		"max_retries", cfg.Outbox.MaxRetries,
	)

	if err := c.OutboxProcessor.Start(ctx); err != nil {
		return err
	}
	// The in-process bus already delivers to the notification subscriber.
	if cfg.EventBus == "rabbitmq" && c.InProcessBus == nil {
		if err := w.consume(ctx); err != nil {
			return err
		}
	}

	go every(ctx, cfg.Outbox.CleanupInterval, w.purgePublished)
	go every(ctx, cfg.Outbox.StatsInterval, w.logStats)
	if cfg.WorkerHealthAddr != "" {
		go w.serveHealth(ctx)
	}

	<-ctx.Done()
	w.shutdown()
	return nil
}

// every calls fn each interval until ctx ends.
func every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// shutdown stops polling, then publishes what is still due.
func (w *worker) shutdown() {
	w.logger.Info("worker shutting down")
	w.c.OutboxProcessor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	n, err := w.c.OutboxProcessor.Drain(ctx)
	switch {
	case err != nil:
		w.logger.Warn("outbox drain incomplete", "published", n, "error", err)
	case n > 0:
		w.logger.Info("outbox drained", "published", n)
	}
	w.logger.Info("worker stopped")
}

func (w *worker) consume(ctx context.Context) error {
	consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
		URL:    w.cfg.RabbitMQURL,
		Logger: w.logger,
	}, eventbus.NewConsumerRegistry(w.logger))
	if err != nil {
		return err
	}
	if err := consumer.RegisterConsumer(w.c.NotificationSubscriber); err != nil {
		_ = consumer.Close()
		return err
	}

	go func() {
		defer consumer.Close()
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("notification consumer stopped", "error", err)
		}
	}()
	return nil
}

func (w *worker) purgePublished(ctx context.Context) {
	days := w.cfg.Outbox.RetentionDays
	deleted, err := w.c.Repos.Outbox.DeleteOld(ctx, days)
	if err != nil {
		w.logger.Error("outbox purge failed", "error", err)
		return
	}
	if deleted > 0 {
		w.logger.Info("outbox purged", "deleted", deleted, "retention_days", days)
	}
}

func (w *worker) logStats(context.Context) {
	s := w.c.OutboxProcessor.GetStats()
	w.logger.Info("outbox stats",
		"running", s.IsRunning,
		"published", s.PublishedCount,
		"failed", s.FailedCount,
		"dead", s.DeadCount,
		"lag_seconds", s.LagSeconds,
		"last_error", s.LastError,
	)
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

// serveHealth exposes liveness (relay stats), readiness (dependency checks)
// and Prometheus metrics until ctx ends.
func (w *worker) serveHealth(ctx context.Context) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(rw http.ResponseWriter, _ *http.Request) {
		writeJSON(rw, http.StatusOK, map[string]any{
			"status": "ok",
			"outbox": w.c.OutboxProcessor.GetStats(),
		})
	})
	mux.HandleFunc("GET /readyz", func(rw http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		report := w.c.Health.Check(checkCtx)
		status := http.StatusOK
		if report.Status == observability.HealthStatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(rw, status, report)
	})
	mux.Handle("GET /metrics", w.c.Metrics.Handler())

	srv := &http.Server{Addr: w.cfg.WorkerHealthAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	w.logger.Info("worker health server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		w.logger.Error("worker health server failed", "error", err)
	}
}
