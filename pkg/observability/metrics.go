package observability

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// Metrics is the sink the application records measurements into.
// PrometheusMetrics backs it in the binaries; InMemoryMetrics backs it in tests.
type Metrics interface {
	Counter(name string, value int64, tags ...Tag)
	Gauge(name string, value float64, tags ...Tag)
	Histogram(name string, value float64, tags ...Tag)
	Timing(name string, duration time.Duration, tags ...Tag)
}

// Tag labels a measurement.
type Tag struct {
	Key   string
	Value string
}

// T is shorthand for Tag{Key: key, Value: value}.
func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) Counter(string, int64, ...Tag)        {}
func (NoopMetrics) Gauge(string, float64, ...Tag)        {}
func (NoopMetrics) Histogram(string, float64, ...Tag)    {}
func (NoopMetrics) Timing(string, time.Duration, ...Tag) {}

// series is everything recorded under one name and tag set.
type series struct {
	count     int64
	level     float64
	samples   []float64
	durations []time.Duration
}

// InMemoryMetrics keeps every measurement so tests can assert on it.
// Tags are matched in the order they were recorded.
type InMemoryMetrics struct {
	mu     sync.Mutex
	series map[string]*series
}

// NewInMemoryMetrics returns an empty collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{series: map[string]*series{}}
}

func (m *InMemoryMetrics) record(name string, tags []Tag, fn func(*series)) {
	key := formatKey(name, tags)

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.series[key]
	if !ok {
		s = &series{}
		m.series[key] = s
	}
	fn(s)
}

func (m *InMemoryMetrics) lookup(name string, tags []Tag) series {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.series[formatKey(name, tags)]; ok {
		return series{
			count:     s.count,
			level:     s.level,
			samples:   slices.Clone(s.samples),
			durations: slices.Clone(s.durations),
		}
	}
	return series{}
}

func (m *InMemoryMetrics) Counter(name string, value int64, tags ...Tag) {
	m.record(name, tags, func(s *series) { s.count += value })
}

func (m *InMemoryMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.record(name, tags, func(s *series) { s.level = value })
}

func (m *InMemoryMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.record(name, tags, func(s *series) { s.samples = append(s.samples, value) })
}

func (m *InMemoryMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.record(name, tags, func(s *series) { s.durations = append(s.durations, duration) })
}

// GetCounter returns the summed counter value.
func (m *InMemoryMetrics) GetCounter(name string, tags ...Tag) int64 {
	return m.lookup(name, tags).count
}

// GetGauge returns the last gauge value.
func (m *InMemoryMetrics) GetGauge(name string, tags ...Tag) float64 {
	return m.lookup(name, tags).level
}

// GetHistogram returns a copy of the observed samples.
func (m *InMemoryMetrics) GetHistogram(name string, tags ...Tag) []float64 {
	return m.lookup(name, tags).samples
}

// GetTimings returns a copy of the observed durations.
func (m *InMemoryMetrics) GetTimings(name string, tags ...Tag) []time.Duration {
	return m.lookup(name, tags).durations
}

// Reset forgets everything recorded so far.
func (m *InMemoryMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.series)
}

// formatKey renders name:k1=v1:k2=v2.
func formatKey(name string, tags []Tag) string {
	var b strings.Builder
	b.WriteString(name)
	for _, tag := range tags {
		b.WriteByte(':')
		b.WriteString(tag.Key)
		b.WriteByte('=')
		b.WriteString(tag.Value)
	}
	return b.String()
}

const (
	MetricOperationTotal    = "operation_total"
	MetricOperationDuration = "operation_duration_seconds"
	MetricOperationErrors   = "operation_errors_total"

	MetricInvitationsCreated   = "invitations_created_total"
	MetricInvitationsConfirmed = "invitations_confirmed_total"
	MetricWebhooks             = "payment_webhooks_total"
	MetricGatewayCalls         = "payment_gateway_calls_total"
	MetricNotifications        = "notifications_sent_total"

	MetricHTTPRequests = "http_requests_total"
	MetricHTTPDuration = "http_request_duration_seconds"
)
