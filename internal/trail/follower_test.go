package trail

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flight-tracker-service/internal/domain"
)

// gatedFetcher blocks each FetchTrail until release is called for its flight
// id, or until the request context is cancelled when honourCancel is set.
type gatedFetcher struct {
	mu           sync.Mutex
	gates        map[string]chan struct{}
	started      chan string
	honourCancel bool
	err          error
}

func newGatedFetcher(honourCancel bool) *gatedFetcher {
	return &gatedFetcher{
		gates:        map[string]chan struct{}{},
		started:      make(chan string, 10),
		honourCancel: honourCancel,
	}
}

func (g *gatedFetcher) gate(id string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[id]
	if !ok {
		ch = make(chan struct{})
		g.gates[id] = ch
	}
	return ch
}

func (g *gatedFetcher) release(id string) { close(g.gate(id)) }

func (g *gatedFetcher) FetchTrail(ctx context.Context, id string) (domain.Trail, error) {
	gate := g.gate(id)
	g.started <- id
	if g.honourCancel {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.Trail{}, ctx.Err()
		}
	} else {
		<-gate
	}
	if g.err != nil {
		return domain.Trail{}, g.err
	}
	return domain.Trail{FlightID: id, Points: []domain.TrailPoint{{Lat: 59, Lon: 18}}}, nil
}

type followResult struct {
	trail   domain.Trail
	applied bool
	err     error
}

func follow(f *Follower, id string) <-chan followResult {
	out := make(chan followResult, 1)
	go func() {
		trail, applied, err := f.Follow(context.Background(), id)
		out <- followResult{trail, applied, err}
	}()
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitStarted(t *testing.T, g *gatedFetcher, id string) {
	t.Helper()
	select {
	case got := <-g.started:
		require.Equal(t, id, got)
	case <-time.After(time.Second):
		t.Fatalf("fetch for %s never started", id)
	}
}

func TestFollower_AppliesResult(t *testing.T) {
	g := newGatedFetcher(false)
	f := NewFollower(g, discardLogger())

	res := follow(f, "a")
	waitStarted(t, g, "a")
	g.release("a")

	r := <-res
	require.NoError(t, r.err)
	assert.True(t, r.applied)
	assert.Equal(t, "a", r.trail.FlightID)

	cur, ok := f.Current()
	require.True(t, ok)
	assert.Equal(t, "a", cur.FlightID)
	assert.Equal(t, "a", f.Selected())
}

func TestFollower_LateResultIsDropped(t *testing.T) {
	// The fetcher ignores cancellation, so the stale result really does arrive.
	g := newGatedFetcher(false)
	f := NewFollower(g, discardLogger())

	first := follow(f, "a")
	waitStarted(t, g, "a")
	second := follow(f, "b")
	waitStarted(t, g, "b")

	g.release("b")
	r := <-second
	require.NoError(t, r.err)
	assert.True(t, r.applied)

	g.release("a")
	stale := <-first
	assert.NoError(t, stale.err)
	assert.False(t, stale.applied)

	cur, ok := f.Current()
	require.True(t, ok)
	assert.Equal(t, "b", cur.FlightID)
}

func TestFollower_CancelsPreviousFetch(t *testing.T) {
	g := newGatedFetcher(true)
	f := NewFollower(g, discardLogger())

	first := follow(f, "a")
	waitStarted(t, g, "a")
	second := follow(f, "b")
	waitStarted(t, g, "b")

	// "a" is never released: only cancellation can unblock it.
	stale := <-first
	assert.NoError(t, stale.err, "a cancelled fetch is not an error")
	assert.False(t, stale.applied)

	g.release("b")
	r := <-second
	assert.True(t, r.applied)
}

func TestFollower_ClearDropsInFlight(t *testing.T) {
	g := newGatedFetcher(true)
	f := NewFollower(g, discardLogger())

	res := follow(f, "a")
	waitStarted(t, g, "a")
	f.Clear()

	r := <-res
	assert.NoError(t, r.err)
	assert.False(t, r.applied)
	_, ok := f.Current()
	assert.False(t, ok)
	assert.Empty(t, f.Selected())
}

func TestFollower_CurrentErrorSurfaces(t *testing.T) {
	g := newGatedFetcher(false)
	g.err = domain.ErrUpstreamUnavailable
	f := NewFollower(g, discardLogger())

	res := follow(f, "a")
	waitStarted(t, g, "a")
	g.release("a")

	r := <-res
	assert.True(t, errors.Is(r.err, domain.ErrUpstreamUnavailable))
	assert.False(t, r.applied)
}
