package distributor

import (
	"context"
	"sync"
)

// bufferBounds is the (oldest, newest) draw-id window one on-chain buffer
// exposes. ok is false when either bound could not be read, which callers
// treat as an empty window.
type bufferBounds struct {
	oldest uint32
	newest uint32
	ok     bool
}

// GetValidDrawIDs returns the ascending draw ids simultaneously present in
// both the draw buffer and the prize-distribution buffer. The two buffers are
// written at different times by different actors, so their windows can lag or
// lead each other; the valid range is their overlap. Bounds are fetched
// concurrently from both buffers, and any unavailable bound yields an empty
// result rather than an error.
func (d *PrizeDistributor) GetValidDrawIDs(ctx context.Context) []uint32 {
	var (
		wg                 sync.WaitGroup
		drawB, distributeB bufferBounds
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		drawB = d.fetch.drawBounds(ctx)
	}()
	go func() {
		defer wg.Done()
		distributeB = d.fetch.distributionBounds(ctx)
	}()
	wg.Wait()

	return reconcileRange(drawB, distributeB)
}

// GetDrawBufferRange returns every draw id in the draw buffer's own window,
// without consulting the prize-distribution buffer.
func (d *PrizeDistributor) GetDrawBufferRange(ctx context.Context) []uint32 {
	return rangeFromBounds(d.fetch.drawBounds(ctx))
}

// GetPrizeDistributionBufferRange returns every draw id in the
// prize-distribution buffer's own window.
func (d *PrizeDistributor) GetPrizeDistributionBufferRange(ctx context.Context) []uint32 {
	return rangeFromBounds(d.fetch.distributionBounds(ctx))
}

// reconcileRange computes the overlapping id range of two independently
// bounded windows: [max(oldests), min(newests)], empty when inverted or when
// either window is unavailable.
func reconcileRange(a, b bufferBounds) []uint32 {
	if !a.ok || !b.ok {
		return nil
	}

	lower := a.oldest
	if b.oldest > lower {
		lower = b.oldest
	}
	upper := a.newest
	if b.newest < upper {
		upper = b.newest
	}

	return rangeFromBounds(bufferBounds{oldest: lower, newest: upper, ok: true})
}

// rangeFromBounds expands a window into the ascending id sequence it covers.
func rangeFromBounds(b bufferBounds) []uint32 {
	if !b.ok || b.newest < b.oldest {
		return nil
	}

	ids := make([]uint32, 0, b.newest-b.oldest+1)
	for id := b.oldest; ; id++ {
		ids = append(ids, id)
		if id == b.newest {
			break
		}
	}
	return ids
}
