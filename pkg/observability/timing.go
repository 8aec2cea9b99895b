package observability

import (
	"log/slog"
	"time"
)

// Timer measures a single call to an external dependency, such as the
// payment gateway or the mail relay. Stopping it records one sample of
// MetricOperationDuration and bumps MetricOperationTotal, plus
// MetricOperationErrors on failure, all tagged with operation=<name>.
type Timer struct {
	operation string
	tags      []Tag
	metrics   Metrics
	logger    *slog.Logger
	began     time.Time
}

// StartTimer starts timing operation now.
func StartTimer(operation string, tags ...Tag) *Timer {
	return &Timer{operation: operation, tags: tags, metrics: NoopMetrics{}, began: time.Now()}
}

// WithMetrics sets the sink. A nil sink keeps the no-op default.
func (t *Timer) WithMetrics(m Metrics) *Timer {
	if m != nil {
		t.metrics = m
	}
	return t
}

// WithLogger logs slow or failed operations to logger.
func (t *Timer) WithLogger(logger *slog.Logger) *Timer {
	t.logger = logger
	return t
}

// Stop records a successful operation.
func (t *Timer) Stop() time.Duration {
	return t.StopWithError(nil)
}

// StopWithError records the operation, counting it as failed when err is set.
func (t *Timer) StopWithError(err error) time.Duration {
	elapsed := time.Since(t.began)

	tags := make([]Tag, 0, len(t.tags)+1)
	tags = append(tags, T("operation", t.operation))
	tags = append(tags, t.tags...)

	t.metrics.Counter(MetricOperationTotal, 1, tags...)
	t.metrics.Timing(MetricOperationDuration, elapsed, tags...)
	if err != nil {
		t.metrics.Counter(MetricOperationErrors, 1, tags...)
	}

	if t.logger != nil && err != nil {
		t.logger.Warn("operation failed",
			"operation", t.operation,
			"elapsed", elapsed,
			"error", err,
		)
	}
	return elapsed
}

// TimeOperation runs fn under a Timer named operation.
func TimeOperation[R any](metrics Metrics, operation string, fn func() (R, error)) (R, error) {
	timer := StartTimer(operation).WithMetrics(metrics)
	out, err := fn()
	timer.StopWithError(err)
	return out, err
}
