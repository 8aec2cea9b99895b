package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *PrometheusMetrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestPrometheusMetrics(t *testing.T) {
	m := NewPrometheusMetrics("gatherly")

	m.Counter(MetricWebhooks, 1, T("outcome", "confirmed"))
	m.Counter(MetricWebhooks, 2, T("outcome", "confirmed"))
	m.Counter(MetricWebhooks, 1, T("outcome", "ignored"))
	m.Gauge("outbox_lag_seconds", 3.5)
	m.Timing(MetricHTTPDuration, 20*time.Millisecond, T("route", "/health"), T("status", "200"))

	body := scrape(t, m)
	assert.Contains(t, body, `gatherly_payment_webhooks_total{outcome="confirmed"} 3`)
	assert.Contains(t, body, `gatherly_payment_webhooks_total{outcome="ignored"} 1`)
	assert.Contains(t, body, `gatherly_outbox_lag_seconds 3.5`)
	assert.Contains(t, body, `gatherly_http_request_duration_seconds_bucket{route="/health",status="200"`)

	t.Run("mismatched labels are dropped", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.Counter(MetricWebhooks, 1, T("other", "x"))
		})
		assert.Contains(t, scrape(t, m), `gatherly_payment_webhooks_total{outcome="confirmed"} 3`)
	})
}
