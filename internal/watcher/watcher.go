// Package watcher provides periodic draw-buffer synchronization for the
// watcher service. Draw buffers expose no push channel, so new draws are
// detected by polling each distributor's reconciled draw-id range and queuing
// ids above the last persisted upper bound.
package watcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/Niffl3rReturns/n3r-sdk/db"
	"github.com/Niffl3rReturns/n3r-sdk/internal/pool"
	"github.com/Niffl3rReturns/n3r-sdk/internal/stats"
	"github.com/Niffl3rReturns/n3r-sdk/pkg/distributor"
)

const (
	// defaultPollInterval is the interval between reconciled-range polls.
	defaultPollInterval = 30 * time.Second
)

// drawSource is the facade surface the watcher polls.
type drawSource interface {
	ID() string
	GetValidDrawIDs(ctx context.Context) []uint32
}

type (
	// WatcherOpts contains configuration options for creating a new Watcher.
	WatcherOpts struct {
		DB           db.DB                           // Database for draw state management
		Distributors []*distributor.PrizeDistributor // Facades to watch
		Logg         *slog.Logger                    // Structured logger
		Pool         *pool.Pool                      // Worker pool for draw processing
		Stats        *stats.Stats                    // Statistics collector
		PollInterval time.Duration                   // Interval between polls (0 = default)
	}

	// Watcher polls distributor draw ranges and queues newly sealed draws.
	Watcher struct {
		db           db.DB
		distributors []*distributor.PrizeDistributor
		logg         *slog.Logger
		pool         *pool.Pool
		stats        *stats.Stats
		pollInterval time.Duration
		stopCh       chan struct{}
	}
)

// New creates a new Watcher and initializes per-distributor draw bounds.
// The lower bound starts at the oldest reconciled draw id on first run; the
// upper bound tracks the newest id queued so far.
func New(o WatcherOpts) (*Watcher, error) {
	ctx := context.Background()

	pollInterval := o.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	w := &Watcher{
		db:           o.DB,
		distributors: o.Distributors,
		logg:         o.Logg,
		pool:         o.Pool,
		stats:        o.Stats,
		pollInterval: pollInterval,
		stopCh:       make(chan struct{}),
	}

	for _, facade := range o.Distributors {
		ids := facade.GetValidDrawIDs(ctx)
		if len(ids) == 0 {
			o.Logg.Info("no reconciled draws yet", "distributor", facade.ID())
			continue
		}

		if err := w.initLowerBound(facade.ID(), ids[0]); err != nil {
			return nil, err
		}

		w.stats.SetNewestDrawID(ids[len(ids)-1])
	}

	return w, nil
}

// Stop signals the polling loop to shut down.
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.logg.Info("watcher stopped")
}

// Start begins polling each distributor's reconciled range and queuing draws
// above the persisted upper bound. Runs until Stop is called.
func (w *Watcher) Start() {
	w.logg.Info("watcher started", "poll_interval", w.pollInterval, "distributor_count", len(w.distributors))

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			w.logg.Debug("watcher shutting down")
			return
		case <-ticker.C:
			for _, facade := range w.distributors {
				if err := w.poll(context.Background(), facade); err != nil {
					w.logg.Error("distributor poll failed", "distributor", facade.ID(), "error", err)
				}
			}
		}
	}
}

// initLowerBound stores the oldest reconciled draw id as the distributor's
// lower bound unless one is already set. The lower bound arms backfill's gap
// scan, so it must be set as soon as any draws are reconciled.
func (w *Watcher) initLowerBound(distributorID string, oldest uint32) error {
	lowerBound, err := w.db.GetLowerBound(distributorID)
	if err != nil {
		return err
	}
	if lowerBound != 0 {
		return nil
	}

	if err := w.db.SetLowerBound(distributorID, oldest); err != nil {
		return err
	}
	w.logg.Info("initialized lower bound", "distributor", distributorID, "draw", oldest)
	return nil
}

// poll queues every reconciled draw id above the distributor's stored upper
// bound and advances the bound to the newest queued id.
func (w *Watcher) poll(ctx context.Context, facade drawSource) error {
	ids := facade.GetValidDrawIDs(ctx)
	if len(ids) == 0 {
		return nil
	}

	// A distributor whose buffers were empty at construction gets its lower
	// bound here, on the first poll that sees reconciled draws.
	if err := w.initLowerBound(facade.ID(), ids[0]); err != nil {
		return err
	}

	newest := ids[len(ids)-1]
	w.stats.SetNewestDrawID(newest)

	upperBound, err := w.db.GetUpperBound(facade.ID())
	if err != nil {
		return err
	}

	queued := 0
	for _, id := range ids {
		if id <= upperBound {
			continue
		}
		w.pool.Push(facade.ID(), id)
		queued++
	}

	if newest > upperBound {
		if err := w.db.SetUpperBound(facade.ID(), newest); err != nil {
			return err
		}
	}

	if queued > 0 {
		w.logg.Info("queued new draws", "distributor", facade.ID(), "count", queued, "newest", newest)
	}

	return nil
}
