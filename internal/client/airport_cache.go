package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/flight-tracker-service/internal/config"
	"github.com/couchcryptid/flight-tracker-service/internal/domain"
)

// airportSource is the network lookup behind the cache.
type airportSource interface {
	LookupAirport(ctx context.Context, code string) (*domain.AirportInfo, error)
}

// pendingAirport is a lookup that may still be in flight. done is closed once
// info is final; info stays nil when the lookup failed or found nothing.
type pendingAirport struct {
	done chan struct{}
	info *domain.AirportInfo
}

// AirportCache is the session cache of airport lookups. The in-flight lookup
// itself is cached, so concurrent callers for a code share one request. When
// full, the earliest-inserted code is evicted regardless of how recently it
// was read.
type AirportCache struct {
	source airportSource
	max    int
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*pendingAirport
	order   []string
}

// NewAirportCache creates a cache holding at most size codes.
func NewAirportCache(source airportSource, size int, logger *slog.Logger) *AirportCache {
	if size <= 0 {
		size = config.DefaultClientCacheSize
	}
	return &AirportCache{
		source:  source,
		max:     size,
		logger:  logger,
		entries: make(map[string]*pendingAirport, size),
	}
}

// FetchAirportInfo returns the airport for code, or nil when the code is a
// placeholder, unknown, or the lookup failed. It never returns an error.
func (c *AirportCache) FetchAirportInfo(ctx context.Context, code string) *domain.AirportInfo {
	if domain.IsPlaceholder(code) {
		return nil
	}
	code = domain.NormalizeIdentifierField(code)

	c.mu.Lock()
	p, ok := c.entries[code]
	if !ok {
		p = &pendingAirport{done: make(chan struct{})}
		c.insertLocked(code, p)
		go c.load(context.WithoutCancel(ctx), code, p)
	}
	c.mu.Unlock()

	select {
	case <-p.done:
		if p.info == nil {
			return nil
		}
		info := *p.info
		return &info
	case <-ctx.Done():
		return nil
	}
}

// Resolve adapts the cache to domain.AirportLookup for flight enrichment.
func (c *AirportCache) Resolve(ctx context.Context, code string) (domain.AirportInfo, error) {
	info := c.FetchAirportInfo(ctx, code)
	if info == nil {
		return domain.AirportInfo{}, fmt.Errorf("%w: %s", domain.ErrAirportNotFound, code)
	}
	return *info, nil
}

// Len returns the number of cached codes, pending ones included.
func (c *AirportCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Contains reports whether code currently has an entry.
func (c *AirportCache) Contains(code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[domain.NormalizeIdentifierField(code)]
	return ok
}

func (c *AirportCache) insertLocked(code string, p *pendingAirport) {
	if len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[code] = p
	c.order = append(c.order, code)
}

func (c *AirportCache) load(ctx context.Context, code string, p *pendingAirport) {
	defer close(p.done)
	info, err := c.source.LookupAirport(ctx, code)
	if err != nil {
		c.logger.Warn("airport lookup failed", "code", code, "error", err)
		return
	}
	p.info = info
}
