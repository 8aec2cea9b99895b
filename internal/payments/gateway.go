// Package payments defines the payment gateway port and the decorators shared
// by every gateway implementation.
package payments

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Customer identifies who pays a link.
type Customer struct {
	Name    string
	Email   string
	Contact string
}

// LinkRequest asks the gateway for a payment link. Amount is in minor units.
type LinkRequest struct {
	Amount      int64
	Currency    string
	Description string
	Customer    Customer
	// ReferenceID is echoed back by the provider and must be unique per link.
	ReferenceID string
	// IdempotencyNote keys repeated requests for the same purpose to one link.
	IdempotencyNote string
}

// Link is an issued payment link.
type Link struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Gateway creates payment links.
type Gateway interface {
	CreateLink(ctx context.Context, req LinkRequest) (*Link, error)
}

// LinkCache remembers links issued per idempotency note.
type LinkCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, key string) (*Link, error)
	Put(ctx context.Context, key string, link *Link, ttl time.Duration) error
}

// IdempotentGateway returns the cached link for a repeated idempotency note
// instead of creating a second one. Calls for the same note are serialized
// within the process.
type IdempotentGateway struct {
	next   Gateway
	cache  LinkCache
	ttl    time.Duration
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewIdempotentGateway wraps next with cache.
func NewIdempotentGateway(next Gateway, cache LinkCache, ttl time.Duration, logger *slog.Logger) *IdempotentGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &IdempotentGateway{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		locks:  make(map[string]*keyLock),
	}
}

// CacheKey returns the cache key for an idempotency note.
func CacheKey(note string) string {
	return "payment-link:" + note
}

// CreateLink implements Gateway.
func (g *IdempotentGateway) CreateLink(ctx context.Context, req LinkRequest) (*Link, error) {
	if req.IdempotencyNote == "" {
		return g.next.CreateLink(ctx, req)
	}

	key := CacheKey(req.IdempotencyNote)
	unlock := g.lock(key)
	defer unlock()

	cached, err := g.cache.Get(ctx, key)
	if err != nil {
		g.logger.Warn("payment link cache read failed", "key", key, "error", err)
	}
	if cached != nil {
		g.logger.Debug("reusing payment link", "key", key, "link_id", cached.ID)
		return cached, nil
	}

	link, err := g.next.CreateLink(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := g.cache.Put(ctx, key, link, g.ttl); err != nil {
		g.logger.Warn("payment link cache write failed", "key", key, "error", err)
	}
	return link, nil
}

func (g *IdempotentGateway) lock(key string) func() {
	g.mu.Lock()
	l, ok := g.locks[key]
	if !ok {
		l = &keyLock{}
		g.locks[key] = l
	}
	l.refs++
	g.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		g.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(g.locks, key)
		}
		g.mu.Unlock()
	}
}

// MemoryLinkCache is a process-local LinkCache.
type MemoryLinkCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	link      Link
	expiresAt time.Time
}

// NewMemoryLinkCache creates an empty cache.
func NewMemoryLinkCache() *MemoryLinkCache {
	return &MemoryLinkCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements LinkCache.
func (c *MemoryLinkCache) Get(_ context.Context, key string) (*Link, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, nil
	}
	link := entry.link
	return &link, nil
}

// Put implements LinkCache. A zero ttl never expires.
func (c *MemoryLinkCache) Put(_ context.Context, key string, link *Link, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := memoryEntry{link: *link}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = entry
	return nil
}
