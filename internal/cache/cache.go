// Package cache provides in-memory storage of reconciled draw data for the
// watcher service, keyed by distributor identity and draw id. The API server
// reads from it; the processor writes to it.
package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Niffl3rReturns/n3r-sdk/pkg/distributor"
)

const (
	// CacheTypeInternal is the internal in-memory cache implementation
	CacheTypeInternal = "internal"
)

type (
	// Cache defines the interface for draw-pair caching.
	Cache interface {
		// Put stores a reconciled draw pair under the given key.
		Put(context.Context, string, distributor.DrawPair) error

		// Get returns the draw pair stored under the given key, if any.
		Get(context.Context, string) (distributor.DrawPair, bool, error)

		// Size returns the current number of cached draw pairs.
		Size(context.Context) (int64, error)
	}

	// CacheOpts contains configuration options for creating a new Cache instance.
	CacheOpts struct {
		CacheType string       // Cache implementation type ("internal")
		Logg      *slog.Logger // Structured logger
	}
)

// New creates a new Cache instance based on the provided options.
func New(o CacheOpts) (Cache, error) {
	switch o.CacheType {
	case CacheTypeInternal:
		return NewMapCache(), nil
	default:
		o.Logg.Warn("unknown cache type, using default internal cache", "cache_type", o.CacheType)
		return NewMapCache(), nil
	}
}

// Key builds the cache key for one distributor's draw.
func Key(distributorID string, drawID uint32) string {
	return fmt.Sprintf("%s:%d", distributorID, drawID)
}
