// Package pipeline polls a fixed watch area and publishes enriched snapshots.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flight-tracker-service/internal/domain"
	"github.com/couchcryptid/flight-tracker-service/internal/flights"
	"github.com/couchcryptid/flight-tracker-service/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// FlightSource answers bounds queries. *flights.Service implements it.
type FlightSource interface {
	GetFlights(ctx context.Context, bounds string) (flights.Result, error)
}

// Sink receives every snapshot the poller produces.
type Sink interface {
	Name() string
	Publish(ctx context.Context, snap domain.Snapshot) error
}

// Options tunes a Poller. Zero values take the defaults.
type Options struct {
	Interval time.Duration
	Clock    clockwork.Clock
}

// Poller orchestrates the fetch-enrich-publish loop for one bounding box.
type Poller struct {
	source   FlightSource
	enricher *Enricher
	sinks    []Sink
	bounds   string
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	ready  atomic.Bool
	mu     sync.RWMutex
	latest *domain.Snapshot
}

// New creates a Poller for bounds.
func New(source FlightSource, enricher *Enricher, sinks []Sink, bounds domain.Bounds, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = 15 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Poller{
		source:   source,
		enricher: enricher,
		sinks:    sinks,
		bounds:   bounds.String(),
		interval: opts.Interval,
		clock:    opts.Clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once a poll has succeeded, or an error
// describing why the service is not yet ready.
func (p *Poller) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("poller has not completed a poll yet")
	}
	return nil
}

// Latest returns the most recent snapshot.
func (p *Poller) Latest() (domain.Snapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.latest == nil {
		return domain.Snapshot{}, false
	}
	return *p.latest, true
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started", "bounds", p.bounds, "interval", p.interval)
	p.metrics.PollerRunning.Set(1)
	defer p.metrics.PollerRunning.Set(0)

	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			p.logger.Info("poller stopping", "reason", ctx.Err())
			return nil
		}

		if _, err := p.PollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("poll failed", "bounds", p.bounds, "error", err, "retry_in", backoff)
			if !retry.SleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = retry.NextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = initialBackoff

		select {
		case <-ctx.Done():
			p.logger.Info("poller stopping", "reason", ctx.Err())
			return nil
		case <-p.clock.After(p.interval):
		}
	}
}

// PollOnce runs one fetch-enrich-publish cycle. Sink failures are logged and
// counted but do not fail the poll.
func (p *Poller) PollOnce(ctx context.Context) (domain.Snapshot, error) {
	res, err := p.source.GetFlights(ctx, p.bounds)
	if err != nil {
		return domain.Snapshot{}, err
	}

	snap := p.enricher.Enrich(ctx, res)
	if snap.PolledAt.IsZero() {
		snap.PolledAt = p.clock.Now().UTC()
	}
	p.metrics.SnapshotFlights.Set(float64(len(snap.Flights)))

	p.mu.Lock()
	p.latest = &snap
	p.mu.Unlock()
	p.ready.Store(true)

	for _, s := range p.sinks {
		if err := s.Publish(ctx, snap); err != nil {
			p.logger.Warn("publish failed", "sink", s.Name(), "error", err)
			p.metrics.PublishErrors.WithLabelValues(s.Name()).Inc()
			continue
		}
		p.metrics.SnapshotsPublished.WithLabelValues(s.Name()).Inc()
	}
	return snap, nil
}
