// Package flights serves flight lists for a bounding box through a single-slot
// cache and a minimum request interval, so map pans and polling do not hammer
// the upstream feed.
package flights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mohae/deepcopy"

	"github.com/couchcryptid/flight-tracker-service/internal/config"
	"github.com/couchcryptid/flight-tracker-service/internal/domain"
	"github.com/couchcryptid/flight-tracker-service/internal/observability"
)

// Fetcher retrieves the raw upstream payload for a bounds string.
type Fetcher interface {
	FetchPositions(ctx context.Context, bounds string) ([]byte, error)
}

// Result is the answer to one GetFlights call.
type Result struct {
	Flights []domain.FlightRecord
	// Bounds the flights belong to. A throttled answer may carry another box's data.
	Bounds    string
	FetchedAt time.Time
	FromCache bool
	Throttled bool
	Rejected  int
}

// State is the loading/error status a UI shows next to the list.
type State struct {
	Loading      bool
	LastError    error
	LastFetch    time.Time
	CachedBounds string
}

// Options tune a Service. Zero values take the package defaults.
type Options struct {
	CacheDuration      time.Duration
	MinRequestInterval time.Duration
	Clock              clockwork.Clock
	Metrics            *observability.Metrics
}

type entry struct {
	bounds    string
	flights   []domain.FlightRecord
	rejected  int
	fetchedAt time.Time
}

// call is one in-flight upstream fetch that callers for the same bounds join.
// seq orders fetches by start time.
type call struct {
	bounds string
	seq    uint64
	done   chan struct{}
	res    Result
	err    error
}

// Service owns one session's bounds cache. It is safe for concurrent use.
type Service struct {
	fetcher       Fetcher
	logger        *slog.Logger
	metrics       *observability.Metrics
	clock         clockwork.Clock
	cacheDuration time.Duration
	minInterval   time.Duration

	mu        sync.Mutex
	slot      *entry
	inflight  map[string]*call
	nextSeq   uint64
	doneSeq   uint64
	lastFetch time.Time
	lastErr   error
}

// NewService creates a Service reading from fetcher.
func NewService(fetcher Fetcher, logger *slog.Logger, opts Options) *Service {
	if opts.CacheDuration <= 0 {
		opts.CacheDuration = config.DefaultCacheDuration
	}
	if opts.MinRequestInterval <= 0 {
		opts.MinRequestInterval = config.DefaultMinRequestInterval
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetricsForTesting()
	}
	return &Service{
		fetcher:       fetcher,
		logger:        logger,
		metrics:       opts.Metrics,
		clock:         opts.Clock,
		cacheDuration: opts.CacheDuration,
		minInterval:   opts.MinRequestInterval,
		inflight:      make(map[string]*call),
	}
}

// GetFlights returns the flights inside bounds.
//
// A fresh cache entry for the same bounds is returned without a network call.
// A caller arriving while the same bounds are being fetched waits for that
// fetch. Within the minimum request interval no new fetch starts: the previous
// cache, possibly stale or for other bounds, is returned with Throttled set, or
// an empty result when nothing is cached. Failures leave the cache untouched.
// When fetches for different bounds overlap, the one started last owns the cache.
func (s *Service) GetFlights(ctx context.Context, bounds string) (Result, error) {
	s.mu.Lock()
	now := s.clock.Now()

	if e := s.slot; e != nil && e.bounds == bounds && now.Sub(e.fetchedAt) < s.cacheDuration {
		res := e.result()
		s.mu.Unlock()
		res.FromCache = true
		s.metrics.FlightQueries.WithLabelValues(observability.OutcomeCached).Inc()
		return res, nil
	}

	if c, ok := s.inflight[bounds]; ok {
		s.mu.Unlock()
		s.metrics.FlightQueries.WithLabelValues(observability.OutcomeJoined).Inc()
		return s.wait(ctx, c)
	}

	if !s.lastFetch.IsZero() && now.Sub(s.lastFetch) < s.minInterval {
		since := now.Sub(s.lastFetch)
		res := Result{Flights: []domain.FlightRecord{}, Bounds: bounds}
		if s.slot != nil {
			res = s.slot.result()
			res.FromCache = true
		}
		s.mu.Unlock()
		res.Throttled = true
		s.metrics.FlightQueries.WithLabelValues(observability.OutcomeThrottled).Inc()
		s.logger.Debug("flight query throttled",
			"bounds", bounds,
			"cached_bounds", res.Bounds,
			"since_last_fetch", since,
		)
		return res, nil
	}

	s.nextSeq++
	c := &call{bounds: bounds, seq: s.nextSeq, done: make(chan struct{})}
	s.inflight[bounds] = c
	s.lastFetch = now
	s.lastErr = nil
	s.mu.Unlock()

	go s.fetch(context.WithoutCancel(ctx), c)
	return s.wait(ctx, c)
}

// wait blocks until c completes or ctx ends. A caller that gives up does not
// cancel the fetch; other waiters and the cache still get its result.
func (s *Service) wait(ctx context.Context, c *call) (Result, error) {
	select {
	case <-c.done:
		if c.err != nil {
			return Result{}, c.err
		}
		return copyResult(c.res), nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (s *Service) fetch(ctx context.Context, c *call) {
	res, err := s.load(ctx, c.bounds)

	s.mu.Lock()
	if s.inflight[c.bounds] == c {
		delete(s.inflight, c.bounds)
	}
	// A fetch that started before the newest finished one only answers its
	// own waiters.
	stale := c.seq < s.doneSeq
	if !stale {
		s.doneSeq = c.seq
		if err != nil {
			s.lastErr = err
		} else {
			s.slot = &entry{
				bounds:    res.Bounds,
				flights:   res.Flights,
				rejected:  res.Rejected,
				fetchedAt: res.FetchedAt,
			}
		}
	}
	c.res, c.err = res, err
	close(c.done)
	s.mu.Unlock()

	if stale {
		s.logger.Debug("stale flight fetch discarded", "bounds", c.bounds)
	}

	if err != nil {
		s.metrics.FlightQueries.WithLabelValues(observability.OutcomeError).Inc()
		s.logger.Warn("flight fetch failed", "bounds", c.bounds, "error", err)
		return
	}
	s.metrics.FlightQueries.WithLabelValues(observability.OutcomeFetched).Inc()
	s.metrics.RecordsRejected.Add(float64(res.Rejected))
	s.logger.Debug("flights fetched",
		"bounds", c.bounds,
		"flights", len(res.Flights),
		"rejected", res.Rejected,
	)
}

func (s *Service) load(ctx context.Context, bounds string) (Result, error) {
	body, err := s.fetcher.FetchPositions(ctx, bounds)
	if err != nil {
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
		}
		return Result{}, err
	}
	records, err := domain.ParseUpstreamPayload(body)
	if err != nil {
		return Result{}, err
	}
	flights, rejected := domain.NormalizeFlights(records)
	return Result{
		Flights:   flights,
		Bounds:    bounds,
		FetchedAt: s.clock.Now(),
		Rejected:  rejected,
	}, nil
}

// State reports whether a fetch is running and how the last one ended.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Loading:   len(s.inflight) > 0,
		LastError: s.lastErr,
		LastFetch: s.lastFetch,
	}
	if s.slot != nil {
		st.CachedBounds = s.slot.bounds
	}
	return st
}

// Cached returns the current cache slot without any fetch or throttle
// bookkeeping. ok is false when nothing has been fetched yet.
func (s *Service) Cached() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slot == nil {
		return Result{}, false
	}
	res := s.slot.result()
	res.FromCache = true
	return res, true
}

// result copies the entry so callers cannot mutate the slot.
func (e *entry) result() Result {
	return copyResult(Result{
		Flights:   e.flights,
		Bounds:    e.bounds,
		FetchedAt: e.fetchedAt,
		Rejected:  e.rejected,
	})
}

func copyResult(r Result) Result {
	if r.Flights != nil {
		r.Flights = deepcopy.Copy(r.Flights).([]domain.FlightRecord)
	}
	return r
}
