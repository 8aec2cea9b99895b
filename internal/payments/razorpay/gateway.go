// Package razorpay implements payments.Gateway against the Razorpay payment
// links API, or any provider that speaks the same protocol.
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/payments"
	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	"github.com/felixgeelhaar/gatherly/pkg/observability"
	"github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2/clientcredentials"
)

// Config configures the HTTP gateway.
type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string

	// When TokenURL is set the gateway authenticates with an OAuth2
	// client-credentials token instead of basic auth.
	TokenURL     string
	ClientID     string
	ClientSecret string

	Timeout         time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Gateway creates payment links over HTTP behind a circuit breaker.
type Gateway struct {
	cfg     Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*payments.Link]
	logger  *slog.Logger
	metrics observability.Metrics
}

// statusError is a non-2xx provider response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("payment provider returned status=%d body=%s", e.code, e.body)
}

// New creates a gateway.
func New(cfg Config, logger *slog.Logger, metrics observability.Metrics) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.TokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		client = cc.Client(context.Background())
		client.Timeout = cfg.Timeout
	}

	g := &Gateway{
		cfg:     cfg,
		client:  client,
		logger:  logger,
		metrics: metrics,
	}
	g.breaker = gobreaker.NewCircuitBreaker[*payments.Link](gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// Rejected requests are the caller's fault and must not open the breaker.
		IsSuccessful: func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return se.code < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return g
}

type linkRequestBody struct {
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	AcceptPartial  bool              `json:"accept_partial"`
	Description    string            `json:"description,omitempty"`
	ReferenceID    string            `json:"reference_id,omitempty"`
	Customer       customerBody      `json:"customer"`
	Notify         map[string]bool   `json:"notify"`
	ReminderEnable bool              `json:"reminder_enable"`
	Notes          map[string]string `json:"notes,omitempty"`
}

type customerBody struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// CreateLink implements payments.Gateway.
func (g *Gateway) CreateLink(ctx context.Context, req payments.LinkRequest) (*payments.Link, error) {
	timer := observability.StartTimer("payment_gateway.create_link").WithMetrics(g.metrics).WithLogger(g.logger)
	link, err := g.breaker.Execute(func() (*payments.Link, error) {
		return g.createLink(ctx, req)
	})
	timer.StopWithError(err)
	if err != nil {
		result := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "rejected"
		}
		g.metrics.Counter(observability.MetricGatewayCalls, 1, observability.T("result", result))
		return nil, apperr.Gateway("payment link creation failed", err)
	}

	g.metrics.Counter(observability.MetricGatewayCalls, 1, observability.T("result", "ok"))
	return link, nil
}

func (g *Gateway) createLink(ctx context.Context, req payments.LinkRequest) (*payments.Link, error) {
	body := linkRequestBody{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		ReferenceID: req.ReferenceID,
		Customer: customerBody{
			Name:    req.Customer.Name,
			Email:   req.Customer.Email,
			Contact: req.Customer.Contact,
		},
		// Gatherly sends its own invitation emails.
		Notify: map[string]bool{"sms": false, "email": false},
	}
	if req.IdempotencyNote != "" {
		body.Notes = map[string]string{"idempotency_note": req.IdempotencyNote}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/v1/payment_links", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.cfg.TokenURL == "" {
		httpReq.SetBasicAuth(g.cfg.KeyID, g.cfg.KeySecret)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode, body: gjson.GetBytes(raw, "error.description").String()}
	}

	parsed := gjson.ParseBytes(raw)
	link := &payments.Link{
		ID:  parsed.Get("id").String(),
		URL: parsed.Get("short_url").String(),
	}
	if link.ID == "" || link.URL == "" {
		return nil, errors.New("payment provider response is missing id or short_url")
	}

	g.logger.Debug("payment link created", "link_id", link.ID, "reference_id", req.ReferenceID)
	return link, nil
}
