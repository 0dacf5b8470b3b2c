// Package backfill provides functionality for processing missed draws.
// A draw can be missed when its prize distribution lags the draw record;
// the processor leaves such draws unmarked, and this package periodically
// requeues them from the persisted gap bitset.
package backfill

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Niffl3rReturns/n3r-sdk/db"
	"github.com/Niffl3rReturns/n3r-sdk/internal/pool"
	"github.com/Niffl3rReturns/n3r-sdk/pkg/distributor"
)

const (
	// idleCheckInterval is the interval between backfill checks when the queue is idle
	idleCheckInterval = 60 * time.Second
	// busyCheckInterval is the interval between backfill checks when many draws are missing
	busyCheckInterval = 250 * time.Millisecond
	// minQueueSizeForIdleCheck is the maximum queue size to consider the system idle
	minQueueSizeForIdleCheck = 1
)

type (
	// BackfillOpts contains configuration options for creating a new Backfill.
	BackfillOpts struct {
		BatchSize    int                             // Maximum number of draws to queue per run
		DB           db.DB                           // Database for draw state management
		Distributors []*distributor.PrizeDistributor // Facades to backfill
		Logg         *slog.Logger                    // Structured logger
		Pool         *pool.Pool                      // Worker pool for draw processing
	}

	// Backfill manages periodic backfilling of missed draws.
	Backfill struct {
		batchSize    int
		db           db.DB
		distributors []*distributor.PrizeDistributor
		logg         *slog.Logger
		pool         *pool.Pool
		stopCh       chan struct{}
		ticker       *time.Ticker
	}
)

// New creates a new Backfill instance with the provided options.
func New(o BackfillOpts) *Backfill {
	return &Backfill{
		batchSize:    o.BatchSize,
		db:           o.DB,
		distributors: o.Distributors,
		logg:         o.Logg,
		pool:         o.Pool,
		stopCh:       make(chan struct{}),
		ticker:       time.NewTicker(idleCheckInterval),
	}
}

// Stop stops the backfill ticker and signals shutdown.
func (b *Backfill) Stop() {
	b.ticker.Stop()
	close(b.stopCh)
	b.logg.Info("backfill stopped")
}

// Start begins periodic backfill processing.
// It checks for missing draws at intervals based on queue load.
func (b *Backfill) Start() {
	b.logg.Info("backfill started", "batch_size", b.batchSize)

	for {
		select {
		case <-b.stopCh:
			b.logg.Debug("backfill shutting down")
			return
		case <-b.ticker.C:
			queueSize := b.pool.Size()
			if queueSize > minQueueSizeForIdleCheck {
				b.logg.Debug("skipping backfill tick due to busy queue", "queue_size", queueSize)
				continue
			}
			if err := b.Run(true); err != nil {
				b.logg.Error("backfill run failed", "error", err)
			} else {
				b.logg.Debug("backfill run completed", "queue_size", queueSize)
			}
		}
	}
}

// Run performs a single backfill pass over every distributor, finding and
// queuing missing draws. If skipNewest is true, the newest draw is excluded
// from the range check: it is usually still being processed.
func (b *Backfill) Run(skipNewest bool) error {
	totalMissing := uint(0)

	for _, facade := range b.distributors {
		missing, err := b.runOne(facade.ID(), skipNewest)
		if err != nil {
			return err
		}
		totalMissing += missing
	}

	// Check again sooner while gaps remain.
	if totalMissing > uint(b.batchSize) {
		b.ticker.Reset(busyCheckInterval)
	} else {
		b.ticker.Reset(idleCheckInterval)
	}

	return nil
}

// runOne queues up to batchSize missing draws for one distributor and returns
// the total number of missing draws found.
func (b *Backfill) runOne(distributorID string, skipNewest bool) (uint, error) {
	lower, err := b.db.GetLowerBound(distributorID)
	if err != nil {
		return 0, fmt.Errorf("failed to get lower bound for %s: %w", distributorID, err)
	}

	upper, err := b.db.GetUpperBound(distributorID)
	if err != nil {
		return 0, fmt.Errorf("failed to get upper bound for %s: %w", distributorID, err)
	}

	if lower == 0 {
		return 0, nil
	}

	if skipNewest && upper > lower {
		upper--
	}

	if upper < lower {
		return 0, nil
	}

	missingDraws, err := b.db.GetMissingValuesBitSet(distributorID, lower, upper)
	if err != nil {
		return 0, fmt.Errorf("failed to get missing draws bitset for %s: %w", distributorID, err)
	}

	missingCount := missingDraws.Count()
	if missingCount == 0 {
		return 0, nil
	}

	b.logg.Info("found missing draws",
		"distributor", distributorID,
		"skip_newest", skipNewest,
		"missing_count", missingCount,
		"range", fmt.Sprintf("%d-%d", lower, upper),
	)

	buffer := make([]uint, b.batchSize)
	j := uint(0)
	pushedCount := 0

	j, buffer = missingDraws.NextSetMany(j, buffer)
	for len(buffer) > 0 && pushedCount < b.batchSize {
		for _, drawIdx := range buffer {
			if pushedCount >= b.batchSize {
				break
			}

			b.pool.Push(distributorID, uint32(drawIdx))
			b.logg.Debug("queued missing draw", "distributor", distributorID, "draw", drawIdx)
			pushedCount++
		}

		if pushedCount >= b.batchSize {
			break
		}
		j++
		j, buffer = missingDraws.NextSetMany(j, buffer)
	}

	return missingCount, nil
}
