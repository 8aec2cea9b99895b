// Package simulated provides an in-process payments.Gateway for development
// and tests. Links it issues are confirmed through the simulate endpoint.
package simulated

import (
	"context"
	"strings"
	"sync"

	"github.com/felixgeelhaar/gatherly/internal/payments"
	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	"github.com/google/uuid"
)

// Gateway issues fake links and records every request.
type Gateway struct {
	linkBase string

	mu    sync.Mutex
	calls []payments.LinkRequest
	fail  error
}

// New creates a simulated gateway whose link URLs start with linkBase.
func New(linkBase string) *Gateway {
	if linkBase == "" {
		linkBase = "https://pay.gatherly.local/l"
	}
	return &Gateway{linkBase: strings.TrimRight(linkBase, "/")}
}

// CreateLink implements payments.Gateway.
func (g *Gateway) CreateLink(_ context.Context, req payments.LinkRequest) (*payments.Link, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, req)
	if g.fail != nil {
		return nil, apperr.Gateway("payment link creation failed", g.fail)
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return &payments.Link{
		ID:  "plink_sim_" + token[:14],
		URL: g.linkBase + "/" + token[14:24],
	}, nil
}

// Calls returns the requests received so far.
func (g *Gateway) Calls() []payments.LinkRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]payments.LinkRequest(nil), g.calls...)
}

// FailWith makes subsequent calls fail with err. nil restores success.
func (g *Gateway) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail = err
}
