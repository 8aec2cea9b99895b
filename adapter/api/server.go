// Package api exposes gatherly over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/app"
	"github.com/felixgeelhaar/gatherly/pkg/observability"
	"github.com/rs/cors"
)

// Server is the HTTP API server.
type Server struct {
	mux     *http.ServeMux
	server  *http.Server
	logger  *slog.Logger
	c       *app.Container
	auth    *Authenticator
	handler http.Handler
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates a new API server over the container's handlers.
func NewServer(cfg ServerConfig, c *app.Container) *Server {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		c:      c,
		auth:   NewAuthenticator(c.Config.API.JWTSecret, !c.Config.IsProduction()),
	}
	s.registerRoutes()

	s.handler = newCORS(cfg.AllowedOrigins).Handler(
		requestID(recoverer(logger, instrument(c.Metrics, logger, s.mux))),
	)
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func newCORS(origins []string) *cors.Cors {
	opts := cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", headerRequestID, headerMemberID},
		ExposedHeaders: []string{headerRequestID},
		MaxAge:         600,
	}
	if len(origins) > 0 {
		opts.AllowedOrigins = origins
		opts.AllowCredentials = true
	} else {
		opts.AllowedOrigins = []string{"*"}
	}
	return cors.New(opts)
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	// Operations
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /readyz", s.handleReady)
	s.mux.Handle("GET /metrics", s.c.Metrics.Handler())

	member := s.auth.Require

	// Members
	s.mux.HandleFunc("POST /api/v1/members", member(s.registerMember))
	s.mux.HandleFunc("GET /api/v1/members/community", member(s.listCommunity))
	s.mux.HandleFunc("GET /api/v1/members/{memberID}", member(s.getMember))

	// Meetings
	s.mux.HandleFunc("POST /api/v1/meetings", member(s.createMeeting))
	s.mux.HandleFunc("GET /api/v1/meetings", member(s.listMeetings))
	s.mux.HandleFunc("GET /api/v1/meetings/{meetingID}", member(s.getMeeting))
	s.mux.HandleFunc("PATCH /api/v1/meetings/{meetingID}", member(s.updateMeeting))
	s.mux.HandleFunc("DELETE /api/v1/meetings/{meetingID}", member(s.deleteMeeting))
	s.mux.HandleFunc("POST /api/v1/meetings/{meetingID}/attendees", member(s.registerAttendee))
	s.mux.HandleFunc("GET /api/v1/meetings/{meetingID}/roster", member(s.roster))
	s.mux.HandleFunc("POST /api/v1/meetings/{meetingID}/roster/reconcile", member(s.reconcileRoster))

	// Invitations
	s.mux.HandleFunc("POST /api/v1/meetings/{meetingID}/invitations", member(s.createInvitation))
	s.mux.HandleFunc("GET /api/v1/meetings/{meetingID}/invitations", member(s.listInvitations))
	s.mux.HandleFunc("POST /api/v1/meetings/{meetingID}/invitations/community", member(s.inviteCommunity))
	s.mux.HandleFunc("GET /api/v1/invitations/{invitationID}", member(s.getInvitation))
	s.mux.HandleFunc("POST /api/v1/invitations/{invitationID}/payment-link", member(s.issuePaymentLink))
	s.mux.HandleFunc("POST /api/v1/invitations/{invitationID}/cancel", member(s.cancelInvitation))

	// Reports
	s.mux.HandleFunc("GET /api/v1/reports/invitations", member(s.invitationReport))

	// Payments. The webhook is authenticated by its signature.
	s.mux.HandleFunc("POST /api/v1/webhooks/payments", s.paymentWebhook)
	if s.c.SimulateConfirmationHandler.Enabled() {
		s.mux.HandleFunc("POST /api/v1/dev/payment-links/{paymentLinkID}/simulate", s.simulatePayment)
	}
}

// Handler returns the fully wrapped handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, "ok", map[string]string{
		"status":  "healthy",
		"version": s.c.Config.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady runs the dependency checks. Degraded dependencies keep the
// service ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := s.c.Health.Check(ctx)
	status := http.StatusOK
	if health.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeEnvelope(w, status, status == http.StatusOK, string(health.Status), health)
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}
