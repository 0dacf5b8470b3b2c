// Package pool provides a worker pool for concurrent draw processing across
// distributors.
package pool

import (
	"context"
	"log/slog"

	"github.com/alitto/pond/v2"

	"github.com/Niffl3rReturns/n3r-sdk/internal/processor"
)

type (
	// PoolOpts contains configuration options for creating a new Pool.
	PoolOpts struct {
		Logg        *slog.Logger         // Structured logger
		WorkerCount int                  // Number of worker goroutines
		Processor   *processor.Processor // Draw processor instance
	}

	// Pool manages a worker pool for concurrent draw processing.
	Pool struct {
		logg       *slog.Logger
		workerPool pond.Pool
		processor  *processor.Processor
	}
)

// New creates a new Pool instance with the specified number of workers.
func New(o PoolOpts) *Pool {
	return &Pool{
		logg: o.Logg,
		workerPool: pond.NewPool(
			o.WorkerCount,
		),
		processor: o.Processor,
	}
}

// Stop gracefully stops the worker pool, waiting for all in-flight tasks to complete.
func (p *Pool) Stop() {
	p.workerPool.StopAndWait()
}

// Push submits a draw for processing asynchronously (non-blocking).
func (p *Pool) Push(distributorID string, drawID uint32) {
	p.workerPool.Submit(func() {
		ctx := context.Background()
		if err := p.processor.ProcessDraw(ctx, distributorID, drawID); err != nil {
			p.logg.Error("draw processing failed",
				"distributor", distributorID,
				"draw", drawID,
				"error", err,
			)
		}
	})
}

// Size returns the number of tasks currently waiting in the queue.
func (p *Pool) Size() uint64 {
	return p.workerPool.WaitingTasks()
}

// ActiveWorkers returns the number of workers currently processing tasks.
func (p *Pool) ActiveWorkers() int64 {
	return p.workerPool.RunningWorkers()
}
