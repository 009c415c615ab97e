package nominatim

import (
	"context"
	"math"
	"sync"

	"github.com/couchcryptid/flight-tracker-service/internal/domain"
	"github.com/couchcryptid/flight-tracker-service/internal/observability"
)

const defaultCacheEntries = 1000

// CachedGeocoder wraps a ReverseGeocoder with an in-memory LRU of place names
// per map cell.
type CachedGeocoder struct {
	inner domain.ReverseGeocoder
	cache *placeCache
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.ReverseGeocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner: inner,
		cache: newPlaceCache(maxEntries, metrics),
	}
}

func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	at := cellOf(lat, lon)
	if name, ok := c.cache.lookup(at); ok {
		return name, nil
	}

	name, err := c.inner.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return name, err
	}
	c.cache.store(at, name)
	return name, nil
}

// Len reports how many names are cached.
func (c *CachedGeocoder) Len() int {
	return c.cache.len()
}

// cell is a coordinate rounded to thousandths of a degree, about 100 m.
type cell struct {
	lat, lon int32
}

func cellOf(lat, lon float64) cell {
	return cell{
		lat: int32(math.Round(lat * 1000)),
		lon: int32(math.Round(lon * 1000)),
	}
}

// placeCache is a mutex-guarded LRU from cell to place name. The most recently
// used node sits at newest.
type placeCache struct {
	capacity int
	metrics  *observability.Metrics

	mu     sync.Mutex
	byCell map[cell]*placeNode
	newest *placeNode
	oldest *placeNode
}

type placeNode struct {
	at           cell
	name         string
	older, newer *placeNode
}

func newPlaceCache(capacity int, metrics *observability.Metrics) *placeCache {
	if capacity <= 0 {
		capacity = defaultCacheEntries
	}
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	return &placeCache{
		capacity: capacity,
		metrics:  metrics,
		byCell:   make(map[cell]*placeNode),
	}
}

// lookup returns the cached name for at and records the hit or miss.
func (c *placeCache) lookup(at cell) (string, bool) {
	c.mu.Lock()
	n, ok := c.byCell[at]
	if ok {
		c.touch(n)
	}
	c.mu.Unlock()

	if !ok {
		c.metrics.GeocodeCache.WithLabelValues("miss").Inc()
		return "", false
	}
	c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
	return n.name, true
}

// store remembers name for at. The generic fallback name is skipped so a
// cell that later resolves to a real place is asked again.
func (c *placeCache) store(at cell, name string) {
	if name == "" || name == domain.DefaultPlaceName {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.byCell[at]; ok {
		n.name = name
		c.touch(n)
		return
	}
	n := &placeNode{at: at, name: name}
	c.byCell[at] = n
	c.pushNewest(n)
	if len(c.byCell) > c.capacity {
		c.dropOldest()
	}
}

func (c *placeCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byCell)
}

func (c *placeCache) touch(n *placeNode) {
	if c.newest == n {
		return
	}
	c.detach(n)
	c.pushNewest(n)
}

func (c *placeCache) pushNewest(n *placeNode) {
	n.newer = nil
	n.older = c.newest
	if c.newest != nil {
		c.newest.newer = n
	}
	c.newest = n
	if c.oldest == nil {
		c.oldest = n
	}
}

func (c *placeCache) detach(n *placeNode) {
	if n.newer != nil {
		n.newer.older = n.older
	} else {
		c.newest = n.older
	}
	if n.older != nil {
		n.older.newer = n.newer
	} else {
		c.oldest = n.newer
	}
	n.older, n.newer = nil, nil
}

func (c *placeCache) dropOldest() {
	n := c.oldest
	if n == nil {
		return
	}
	c.detach(n)
	delete(c.byCell, n.at)
}
