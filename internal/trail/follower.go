// Package trail keeps the position history of the selected flight current.
package trail

import (
	"context"
	"log/slog"
	"sync"

	"github.com/couchcryptid/flight-tracker-service/internal/domain"
)

// Follower loads the trail of whichever flight is selected. Selecting another
// flight cancels the previous load, and a result that arrives after the
// selection moved on is dropped without error.
type Follower struct {
	fetcher domain.TrailFetcher
	logger  *slog.Logger

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	flightID string
	current  *domain.Trail
}

// NewFollower creates a Follower loading trails from fetcher.
func NewFollower(fetcher domain.TrailFetcher, logger *slog.Logger) *Follower {
	return &Follower{fetcher: fetcher, logger: logger}
}

// Follow selects flightID and loads its trail. applied is false when another
// Follow or Clear superseded this one before the result arrived; err is then
// nil because a superseded load is not a failure.
func (f *Follower) Follow(ctx context.Context, flightID string) (trail domain.Trail, applied bool, err error) {
	fctx, token := f.begin(ctx, flightID)

	trail, err = f.fetcher.FetchTrail(fctx, flightID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if token != f.gen {
		f.logger.Debug("dropping superseded trail", "flight_id", flightID)
		return domain.Trail{}, false, nil
	}
	f.cancel()
	f.cancel = nil
	if err != nil {
		return domain.Trail{}, false, err
	}
	f.current = &trail
	return trail, true, nil
}

// Clear drops the selection and cancels any load in progress.
func (f *Follower) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.stopLocked()
	f.flightID = ""
	f.current = nil
}

// Current returns the last applied trail of the selected flight.
func (f *Follower) Current() (domain.Trail, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return domain.Trail{}, false
	}
	return *f.current, true
}

// Selected returns the flight currently followed, or "".
func (f *Follower) Selected() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flightID
}

func (f *Follower) begin(ctx context.Context, flightID string) (context.Context, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.stopLocked()
	if flightID != f.flightID {
		f.current = nil
	}
	f.flightID = flightID
	fctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	return fctx, f.gen
}

func (f *Follower) stopLocked() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}
