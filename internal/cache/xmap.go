package cache

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/Niffl3rReturns/n3r-sdk/pkg/distributor"
)

// mapCache is an in-memory cache implementation using xsync.MapOf for
// thread-safe operations.
type mapCache struct {
	xmap *xsync.MapOf[string, distributor.DrawPair]
}

// NewMapCache creates a new in-memory cache instance.
func NewMapCache() Cache {
	return &mapCache{
		xmap: xsync.NewMapOf[string, distributor.DrawPair](),
	}
}

// Put stores a reconciled draw pair under the given key.
func (c *mapCache) Put(_ context.Context, key string, pair distributor.DrawPair) error {
	c.xmap.Store(key, pair)
	return nil
}

// Get returns the draw pair stored under the given key, if any.
func (c *mapCache) Get(_ context.Context, key string) (distributor.DrawPair, bool, error) {
	pair, ok := c.xmap.Load(key)
	return pair, ok, nil
}

// Size returns the current number of cached draw pairs.
func (c *mapCache) Size(_ context.Context) (int64, error) {
	return int64(c.xmap.Size()), nil
}
