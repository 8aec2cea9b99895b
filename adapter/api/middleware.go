package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	"github.com/felixgeelhaar/gatherly/pkg/observability"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	headerRequestID     = "X-Request-ID"
	headerCorrelationID = "X-Correlation-ID"
	// headerMemberID identifies the caller when no JWT secret is configured
	// outside production.
	headerMemberID = "X-Member-ID"
)

var (
	errMissingToken = apperr.Authentication("authorization token required")
	errInvalidToken = apperr.Authentication("invalid or expired token")
)

// Authenticator resolves the acting member of a request.
type Authenticator struct {
	secret      []byte
	allowHeader bool
}

// NewAuthenticator creates an authenticator for HS256 bearer tokens whose
// subject is the member id. With an empty secret and allowHeader set, the
// X-Member-ID header is trusted instead.
func NewAuthenticator(secret string, allowHeader bool) *Authenticator {
	return &Authenticator{secret: []byte(secret), allowHeader: allowHeader}
}

// Issue signs a token for memberID.
func (a *Authenticator) Issue(memberID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   memberID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Authenticate returns the member id carried by r.
func (a *Authenticator) Authenticate(r *http.Request) (uuid.UUID, error) {
	if len(a.secret) == 0 {
		if !a.allowHeader {
			return uuid.Nil, errInvalidToken
		}
		id, err := uuid.Parse(r.Header.Get(headerMemberID))
		if err != nil {
			return uuid.Nil, errMissingToken
		}
		return id, nil
	}

	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return uuid.Nil, errMissingToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return uuid.Nil, errInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errInvalidToken
	}
	return id, nil
}

// Require rejects requests without an authenticated member and stores the
// member id in the request context.
func (a *Authenticator) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := a.Authenticate(r)
		if err != nil {
			writeError(w, err)
			return
		}
		next(w, r.WithContext(observability.WithMemberID(r.Context(), id.String())))
	}
}

// memberID returns the member id set by Require.
func memberID(ctx context.Context) uuid.UUID {
	id, err := uuid.Parse(observability.MemberIDFromContext(ctx))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		ctx := observability.WithRequestID(r.Context(), id)
		ctx = observability.WithCorrelationID(ctx, r.Header.Get(headerCorrelationID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func recoverer(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(r.Context(), "panic in handler", "panic", rec, "path", r.URL.Path)
				writeError(w, fmt.Errorf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument logs each request and records its count and latency under the
// matched route pattern.
func instrument(metrics observability.Metrics, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		tags := []observability.Tag{
			observability.T("route", route),
			observability.T("status", strconv.Itoa(rec.status)),
		}
		metrics.Counter(observability.MetricHTTPRequests, 1, tags...)
		metrics.Histogram(observability.MetricHTTPDuration, elapsed.Seconds(), observability.T("route", route))

		logger.DebugContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}
