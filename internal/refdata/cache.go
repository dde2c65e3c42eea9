// Package refdata caches the Gong user and deal directories for the
// lifetime of the process. Both sets are loaded lazily, exhaustively, and
// at most once; a failed load caches nothing so the next request retries.
package refdata

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/sells-group/insights-gateway/pkg/gong"
)

// Cache memoizes the full user and deal listings. Concurrent first
// accesses for a kind share a single in-flight upstream walk; there is no
// TTL, invalidation, or refresh path.
type Cache struct {
	client gong.Client
	group  singleflight.Group

	mu          sync.RWMutex
	users       []gong.User
	deals       []gong.Deal
	usersLoaded bool
	dealsLoaded bool
}

// New creates a cache backed by the given client.
func New(client gong.Client) *Cache {
	return &Cache{client: client}
}

// Users returns the complete user directory, loading it on first use.
func (c *Cache) Users(ctx context.Context) ([]gong.User, error) {
	c.mu.RLock()
	if c.usersLoaded {
		users := c.users
		c.mu.RUnlock()
		return users, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("users", func() (any, error) {
		// A previous flight may have populated the cache while this
		// caller was queued behind it.
		c.mu.RLock()
		loaded, users := c.usersLoaded, c.users
		c.mu.RUnlock()
		if loaded {
			return users, nil
		}

		fetched, err := c.client.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.users = fetched
		c.usersLoaded = true
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]gong.User), nil
}

// Deals returns the complete deal directory, loading it on first use.
func (c *Cache) Deals(ctx context.Context) ([]gong.Deal, error) {
	c.mu.RLock()
	if c.dealsLoaded {
		deals := c.deals
		c.mu.RUnlock()
		return deals, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("deals", func() (any, error) {
		c.mu.RLock()
		loaded, deals := c.dealsLoaded, c.deals
		c.mu.RUnlock()
		if loaded {
			return deals, nil
		}

		fetched, err := c.client.ListDeals(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.deals = fetched
		c.dealsLoaded = true
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]gong.Deal), nil
}
