// Package db provides draw-state persistence for the watcher service.
// It tracks which draw ids have been processed per distributor and identifies
// gaps for backfilling.
package db

import (
	"log/slog"

	"github.com/bits-and-blooms/bitset"
)

const (
	// DBTypeBolt is the BoltDB implementation type
	DBTypeBolt = "bolt"
)

// DB defines the interface for per-distributor draw-state persistence.
// Distributors are keyed by their facade identity strings; values are draw ids.
type DB interface {
	// Close closes the database and releases resources.
	Close() error

	// GetLowerBound returns the lowest draw id being tracked for a distributor.
	GetLowerBound(distributor string) (uint32, error)

	// SetLowerBound sets the lowest draw id to track for a distributor.
	SetLowerBound(distributor string, v uint32) error

	// GetUpperBound returns the highest draw id being tracked for a distributor.
	GetUpperBound(distributor string) (uint32, error)

	// SetUpperBound sets the highest draw id being tracked for a distributor.
	SetUpperBound(distributor string, v uint32) error

	// SetProcessed marks a draw id as processed for a distributor.
	SetProcessed(distributor string, v uint32) error

	// GetMissingValuesBitSet returns a bitset indicating which draw ids in the
	// range are missing. Bits are set for missing draws and cleared for
	// processed ones.
	GetMissingValuesBitSet(distributor string, lower, upper uint32) (*bitset.BitSet, error)

	// Cleanup removes draw entries below a distributor's lower bound.
	Cleanup(distributor string) error
}

// DBOpts contains configuration options for creating a new DB instance.
type DBOpts struct {
	Logg   *slog.Logger // Structured logger
	DBType string       // Database implementation type ("bolt")
	Path   string       // Database file path
}

// New creates a new DB instance based on the provided options.
func New(o DBOpts) (DB, error) {
	switch o.DBType {
	case DBTypeBolt:
		return NewBoltDB(o.Path)
	default:
		o.Logg.Warn("unknown db type, using default bolt implementation", "db_type", o.DBType)
		return NewBoltDB(o.Path)
	}
}
