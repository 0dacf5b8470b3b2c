// Package processor provides draw processing for the watcher service.
// It fetches the reconciled (Draw, PrizeDistribution) pair for one draw id,
// caches it, publishes a sealed-draw event, and persists processing state.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/VictoriaMetrics/metrics"

	"github.com/Niffl3rReturns/n3r-sdk/db"
	"github.com/Niffl3rReturns/n3r-sdk/internal/cache"
	"github.com/Niffl3rReturns/n3r-sdk/internal/pub"
	"github.com/Niffl3rReturns/n3r-sdk/pkg/distributor"
	"github.com/Niffl3rReturns/n3r-sdk/pkg/event"
)

var (
	processedCounter = metrics.NewCounter("draws_processed_total")
	skippedCounter   = metrics.NewCounter("draws_unpaired_total")
)

type (
	// ProcessorOpts contains configuration options for creating a new Processor.
	ProcessorOpts struct {
		Cache        cache.Cache                              // Cache for reconciled draw pairs
		Distributors map[string]*distributor.PrizeDistributor // Facades keyed by identity
		DB           db.DB                                    // Database for draw state persistence
		Pub          pub.Pub                                  // Event publisher
		Logg         *slog.Logger                             // Structured logger
	}

	// Processor handles fetching, caching and publishing of sealed draws.
	Processor struct {
		cache        cache.Cache
		distributors map[string]*distributor.PrizeDistributor
		db           db.DB
		pub          pub.Pub
		logg         *slog.Logger
	}
)

// NewProcessor creates a new Processor instance with the provided options.
func NewProcessor(o ProcessorOpts) *Processor {
	return &Processor{
		cache:        o.Cache,
		distributors: o.Distributors,
		db:           o.DB,
		pub:          o.Pub,
		logg:         o.Logg,
	}
}

// ProcessDraw fetches and processes a single draw for one distributor.
//
// The draw's distribution may not be recorded yet; in that case the paired
// fetch comes back empty and the draw is left unmarked so a later backfill
// run retries it.
func (p *Processor) ProcessDraw(ctx context.Context, distributorID string, drawID uint32) error {
	facade, ok := p.distributors[distributorID]
	if !ok {
		return fmt.Errorf("unknown distributor %s", distributorID)
	}

	pairs, err := facade.GetDrawsAndPrizeDistributions(ctx, []uint32{drawID})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("failed to fetch draw %d for %s: %w", drawID, distributorID, err)
	}

	if len(pairs) == 0 {
		skippedCounter.Inc()
		p.logg.Debug("draw not yet paired with a prize distribution, deferring", "distributor", distributorID, "draw", drawID)
		return nil
	}

	pair := pairs[0]
	if err := p.cache.Put(ctx, cache.Key(distributorID, drawID), pair); err != nil {
		return fmt.Errorf("failed to cache draw %d for %s: %w", drawID, distributorID, err)
	}

	sealedEvent := event.Event{
		ChainID:     facade.ChainID(),
		Distributor: distributorID,
		DrawID:      drawID,
		Type:        event.TypeDrawSealed,
		Timestamp:   pair.Draw.Timestamp,
		Payload: map[string]any{
			"winningRandomNumber": pair.Draw.WinningRandomNumber.String(),
			"prize":               pair.PrizeDistribution.Prize.String(),
			"numberOfPicks":       pair.PrizeDistribution.NumberOfPicks.String(),
		},
	}
	if err := p.pub.Send(ctx, sealedEvent); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("failed to publish draw %d for %s: %w", drawID, distributorID, err)
	}

	if err := p.db.SetProcessed(distributorID, drawID); err != nil {
		return fmt.Errorf("failed to persist draw %d for %s: %w", drawID, distributorID, err)
	}

	processedCounter.Inc()
	p.logg.Debug("successfully processed draw", "distributor", distributorID, "draw", drawID)
	return nil
}
