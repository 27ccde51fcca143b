package menu

import (
	"context"
	"sync"
	"time"

	domain "github.com/darkangel00016/Voice-Ordering2/internal/entity"
	"github.com/darkangel00016/Voice-Ordering2/internal/usecase"
)

// Cache is an explicitly-owned menu cache: callers that need a snapshot hold
// a reference to this object, there is no package-level state. Snapshots are
// served from memory until TTL expires, then refetched from the underlying
// source. Concurrent callers during a refresh share one fetch.
type Cache struct {
	source usecase.MenuSource
	ttl    time.Duration

	mu        sync.Mutex
	snapshot  domain.Menu
	fetchedAt time.Time

	// now is swappable for tests.
	now func() time.Time
}

func NewCache(source usecase.MenuSource, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Snapshot returns the cached menu, refreshing it from the source when the
// TTL has lapsed. A fetch failure with no prior snapshot is returned to the
// caller; the engine never fabricates menu data.
func (c *Cache) Snapshot(ctx context.Context) (domain.Menu, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.snapshot, nil
	}

	items, err := c.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	c.snapshot = items
	c.fetchedAt = c.now()
	return c.snapshot, nil
}

// Refresh forces a fetch regardless of TTL.
func (c *Cache) Refresh(ctx context.Context) error {
	items, err := c.source.Snapshot(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.snapshot = items
	c.fetchedAt = c.now()
	c.mu.Unlock()
	return nil
}

// Clear drops the cached snapshot; the next Snapshot call refetches.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.snapshot = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

var _ usecase.MenuSource = (*Cache)(nil)
