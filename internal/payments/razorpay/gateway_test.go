package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/payments"
	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	"github.com/felixgeelhaar/gatherly/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() payments.LinkRequest {
	return payments.LinkRequest{
		Amount:          50000,
		Currency:        "INR",
		Description:     "Visitor fee",
		Customer:        payments.Customer{Name: "Anil", Email: "a@x.com", Contact: "9876543210"},
		ReferenceID:     "inv-1",
		IdempotencyNote: "invitation:inv-1",
	}
}

func TestGateway_CreateLink(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_links", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"plink_Abc123","short_url":"https://rzp.io/i/xYz9","status":"created"}`))
	}))
	defer server.Close()

	metrics := observability.NewInMemoryMetrics()
	gw := New(Config{BaseURL: server.URL + "/", KeyID: "key", KeySecret: "secret"}, nil, metrics)

	link, err := gw.CreateLink(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "plink_Abc123", link.ID)
	assert.Equal(t, "https://rzp.io/i/xYz9", link.URL)

	assert.EqualValues(t, 50000, received["amount"])
	assert.Equal(t, "inv-1", received["reference_id"])
	assert.Equal(t, map[string]any{"idempotency_note": "invitation:inv-1"}, received["notes"])
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricGatewayCalls, observability.T("result", "ok")))
	op := observability.T("operation", "payment_gateway.create_link")
	assert.Len(t, metrics.GetTimings(observability.MetricOperationDuration, op), 1)
	assert.Zero(t, metrics.GetCounter(observability.MetricOperationErrors, op))
}

func TestGateway_ClientErrorsDoNotOpenBreaker(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"reference_id already exists"}}`))
	}))
	defer server.Close()

	gw := New(Config{BaseURL: server.URL, BreakerFailures: 2, BreakerTimeout: time.Minute}, nil, nil)
	for range 3 {
		_, err := gw.CreateLink(context.Background(), testRequest())
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ErrGateway)
		assert.Contains(t, err.Error(), "reference_id already exists")
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestGateway_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	metrics := observability.NewInMemoryMetrics()
	gw := New(Config{BaseURL: server.URL, BreakerFailures: 2, BreakerTimeout: time.Minute}, nil, metrics)
	for range 4 {
		_, err := gw.CreateLink(context.Background(), testRequest())
		assert.ErrorIs(t, err, apperr.ErrGateway)
	}

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int64(2), metrics.GetCounter(observability.MetricGatewayCalls, observability.T("result", "rejected")))
}

func TestGateway_OAuthClientCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v1/payment_links", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"plink_1","short_url":"https://rzp.io/i/one"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	gw := New(Config{
		BaseURL:      server.URL,
		TokenURL:     server.URL + "/oauth/token",
		ClientID:     "client",
		ClientSecret: "secret",
	}, nil, nil)

	link, err := gw.CreateLink(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "plink_1", link.ID)
}

func TestGateway_IncompleteResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"plink_1"}`))
	}))
	defer server.Close()

	_, err := New(Config{BaseURL: server.URL}, nil, nil).CreateLink(context.Background(), testRequest())
	assert.ErrorIs(t, err, apperr.ErrGateway)
}
