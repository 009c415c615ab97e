// Package airport resolves IATA codes to airport records through a TTL cache,
// a race between live providers and the bundled table.
package airport

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/flight-tracker-service/internal/config"
	"github.com/couchcryptid/flight-tracker-service/internal/domain"
	"github.com/couchcryptid/flight-tracker-service/internal/observability"
)

// Lookup tiers reported in metrics.
const (
	tierCache    = "cache"
	tierProvider = "provider"
	tierStatic   = "static"
	tierMiss     = "miss"
)

// Options tune a Resolver. Zero values take the package defaults.
type Options struct {
	TTL           time.Duration
	LookupTimeout time.Duration
	Clock         clockwork.Clock
	Metrics       *observability.Metrics
}

type cacheEntry struct {
	info    *domain.AirportInfo // nil records a miss
	expires time.Time
}

// Resolver is the server-side airport lookup. It is safe for concurrent use.
type Resolver struct {
	providers []domain.AirportProvider
	fallback  domain.AirportProvider
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	ttl       time.Duration
	timeout   time.Duration

	group singleflight.Group

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewResolver creates a Resolver that races providers and falls back to
// fallback. fallback may be nil.
func NewResolver(providers []domain.AirportProvider, fallback domain.AirportProvider, logger *slog.Logger, opts Options) *Resolver {
	if opts.TTL <= 0 {
		opts.TTL = config.DefaultAirportCacheTTL
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = config.DefaultLookupTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetricsForTesting()
	}
	return &Resolver{
		providers: providers,
		fallback:  fallback,
		logger:    logger,
		metrics:   opts.Metrics,
		clock:     opts.Clock,
		ttl:       opts.TTL,
		timeout:   opts.LookupTimeout,
		cache:     make(map[string]cacheEntry),
	}
}

// Resolve returns the airport for code. It fails with domain.ErrInvalidIATA for
// codes that are not three letters and domain.ErrAirportNotFound when no tier
// knows the code. Both outcomes of a lookup are cached for the TTL.
func (r *Resolver) Resolve(ctx context.Context, code string) (domain.AirportInfo, error) {
	if !domain.ValidIATA(code) {
		return domain.AirportInfo{}, domain.ErrInvalidIATA
	}
	code = domain.NormalizeIdentifierField(code)

	if info, ok := r.cached(code); ok {
		r.metrics.AirportLookups.WithLabelValues(tierCache).Inc()
		return found(info)
	}

	ch := r.group.DoChan(code, func() (any, error) {
		return r.resolveUncached(context.WithoutCancel(ctx), code), nil
	})
	select {
	case res := <-ch:
		return found(res.Val.(*domain.AirportInfo))
	case <-ctx.Done():
		return domain.AirportInfo{}, ctx.Err()
	}
}

func found(info *domain.AirportInfo) (domain.AirportInfo, error) {
	if info == nil {
		return domain.AirportInfo{}, domain.ErrAirportNotFound
	}
	return *info, nil
}

func (r *Resolver) cached(code string) (*domain.AirportInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.cache[code]
	if !ok {
		return nil, false
	}
	if !r.clock.Now().Before(e.expires) {
		delete(r.cache, code)
		return nil, false
	}
	return e.info, true
}

func (r *Resolver) store(code string, info *domain.AirportInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[code] = cacheEntry{info: info, expires: r.clock.Now().Add(r.ttl)}
}

func (r *Resolver) resolveUncached(ctx context.Context, code string) *domain.AirportInfo {
	if info := r.race(ctx, code); info != nil {
		r.metrics.AirportLookups.WithLabelValues(tierProvider).Inc()
		r.store(code, info)
		return info
	}

	if r.fallback != nil {
		info, err := r.fallback.LookupAirport(ctx, code)
		if err == nil && info != nil {
			r.metrics.AirportLookups.WithLabelValues(tierStatic).Inc()
			r.store(code, info)
			return info
		}
	}

	r.metrics.AirportLookups.WithLabelValues(tierMiss).Inc()
	r.logger.Debug("airport not found", "code", code)
	r.store(code, nil)
	return nil
}

type providerResult struct {
	provider string
	info     *domain.AirportInfo
	err      error
}

// race asks every provider at once and returns the first non-nil answer.
// Remaining lookups are cancelled once a winner is known.
func (r *Resolver) race(ctx context.Context, code string) *domain.AirportInfo {
	if len(r.providers) == 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan providerResult, len(r.providers))
	for _, p := range r.providers {
		go func(p domain.AirportProvider) {
			lookupCtx, lookupCancel := context.WithTimeout(ctx, r.timeout)
			defer lookupCancel()

			start := r.clock.Now()
			info, err := p.LookupAirport(lookupCtx, code)
			r.metrics.UpstreamLatency.WithLabelValues("airport").Observe(r.clock.Since(start).Seconds())
			results <- providerResult{provider: p.Name(), info: info, err: err}
		}(p)
	}

	for range r.providers {
		res := <-results
		if res.err != nil {
			r.metrics.ProviderErrors.WithLabelValues(res.provider).Inc()
			r.logger.Debug("airport provider failed",
				"provider", res.provider,
				"code", code,
				"error", res.err,
			)
			continue
		}
		if res.info != nil {
			info := *res.info
			info.IATA = code
			return &info
		}
	}
	return nil
}
