package distributor

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Niffl3rReturns/n3r-sdk/pkg/prize"
)

// fetcher is the facade's seam to the network. The production implementation
// resolves contract handles lazily and issues batched calls; tests substitute
// an in-memory implementation.
type fetcher interface {
	draws(ctx context.Context, ids []uint32) ([]prize.Draw, error)
	prizeDistributions(ctx context.Context, ids []uint32) ([]prize.PrizeDistribution, error)
	drawsAndPrizeDistributions(ctx context.Context, ids []uint32) ([]prize.Draw, []prize.PrizeDistribution, error)
	drawBounds(ctx context.Context) bufferBounds
	distributionBounds(ctx context.Context) bufferBounds
	normalizedBalances(ctx context.Context, user common.Address, ids []uint32) ([]*big.Int, error)
	claimedAmount(ctx context.Context, user common.Address, id uint32) (*big.Int, error)
	submitClaim(ctx context.Context, claim prize.Claim) (*types.Transaction, error)
}

// networkFetcher executes the facade's reads and writes against the chain.
type networkFetcher struct {
	d *PrizeDistributor
}

func (f *networkFetcher) draws(ctx context.Context, ids []uint32) ([]prize.Draw, error) {
	buffer, err := f.d.resolveOrFetch(ctx, roleDrawBuffer)
	if err != nil {
		return nil, err
	}

	var wire []drawWire
	if err := f.d.provider.CallCtx(ctx, callFunc(buffer.Address(), funcGetDraws, ids).Returns(&wire)); err != nil {
		return nil, fmt.Errorf("failed to fetch draws: %w", err)
	}

	draws := make([]prize.Draw, len(wire))
	for i, w := range wire {
		draws[i] = w.toDraw()
	}
	return draws, nil
}

func (f *networkFetcher) prizeDistributions(ctx context.Context, ids []uint32) ([]prize.PrizeDistribution, error) {
	buffer, err := f.d.resolveOrFetch(ctx, rolePrizeDistributionBuffer)
	if err != nil {
		return nil, err
	}

	var wire []prizeDistributionWire
	if err := f.d.provider.CallCtx(ctx, callFunc(buffer.Address(), funcGetPrizeDistributions, ids).Returns(&wire)); err != nil {
		return nil, fmt.Errorf("failed to fetch prize distributions: %w", err)
	}

	distributions := make([]prize.PrizeDistribution, len(wire))
	for i, w := range wire {
		distributions[i] = w.toPrizeDistribution()
	}
	return distributions, nil
}

// drawsAndPrizeDistributions fetches both record sets in a single batched
// round-trip. Either call reverting fails the whole batch, which the caller
// treats as a retry signal.
func (f *networkFetcher) drawsAndPrizeDistributions(ctx context.Context, ids []uint32) ([]prize.Draw, []prize.PrizeDistribution, error) {
	drawBuffer, err := f.d.resolveOrFetch(ctx, roleDrawBuffer)
	if err != nil {
		return nil, nil, err
	}
	distributionBuffer, err := f.d.resolveOrFetch(ctx, rolePrizeDistributionBuffer)
	if err != nil {
		return nil, nil, err
	}

	var (
		drawsWire         []drawWire
		distributionsWire []prizeDistributionWire
	)
	err = f.d.provider.CallCtx(ctx,
		callFunc(drawBuffer.Address(), funcGetDraws, ids).Returns(&drawsWire),
		callFunc(distributionBuffer.Address(), funcGetPrizeDistributions, ids).Returns(&distributionsWire),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("paired fetch failed: %w", err)
	}

	draws := make([]prize.Draw, len(drawsWire))
	for i, w := range drawsWire {
		draws[i] = w.toDraw()
	}
	distributions := make([]prize.PrizeDistribution, len(distributionsWire))
	for i, w := range distributionsWire {
		distributions[i] = w.toPrizeDistribution()
	}
	return draws, distributions, nil
}

// drawBounds reads the draw buffer's oldest and newest draw ids in one batch.
// Any failure, including an empty buffer reverting the call, yields unusable
// bounds rather than an error: absence means an empty range.
func (f *networkFetcher) drawBounds(ctx context.Context) bufferBounds {
	buffer, err := f.d.resolveOrFetch(ctx, roleDrawBuffer)
	if err != nil {
		f.d.logg.Debug("draw buffer unavailable", "distributor", f.d.ID(), "error", err)
		return bufferBounds{}
	}

	var oldest, newest drawWire
	err = f.d.provider.CallCtx(ctx,
		callFunc(buffer.Address(), funcGetOldestDraw).Returns(&oldest),
		callFunc(buffer.Address(), funcGetNewestDraw).Returns(&newest),
	)
	if err != nil {
		f.d.logg.Debug("draw buffer bounds unavailable", "distributor", f.d.ID(), "error", err)
		return bufferBounds{}
	}

	return bufferBounds{oldest: oldest.DrawId, newest: newest.DrawId, ok: true}
}

// distributionBounds reads the prize-distribution buffer's bounds in one batch,
// with the same absence-means-empty semantics as drawBounds.
func (f *networkFetcher) distributionBounds(ctx context.Context) bufferBounds {
	buffer, err := f.d.resolveOrFetch(ctx, rolePrizeDistributionBuffer)
	if err != nil {
		f.d.logg.Debug("prize distribution buffer unavailable", "distributor", f.d.ID(), "error", err)
		return bufferBounds{}
	}

	var (
		oldest, newest             prizeDistributionWire
		oldestDrawID, newestDrawID uint32
	)
	err = f.d.provider.CallCtx(ctx,
		callFunc(buffer.Address(), funcGetOldestPrizeDistribution).Returns(&oldest, &oldestDrawID),
		callFunc(buffer.Address(), funcGetNewestPrizeDistribution).Returns(&newest, &newestDrawID),
	)
	if err != nil {
		f.d.logg.Debug("prize distribution buffer bounds unavailable", "distributor", f.d.ID(), "error", err)
		return bufferBounds{}
	}

	return bufferBounds{oldest: oldestDrawID, newest: newestDrawID, ok: true}
}

func (f *networkFetcher) normalizedBalances(ctx context.Context, user common.Address, ids []uint32) ([]*big.Int, error) {
	calculator, err := f.d.resolveOrFetch(ctx, roleDrawCalculator)
	if err != nil {
		return nil, err
	}

	var balances []*big.Int
	if err := f.d.provider.CallCtx(ctx, callFunc(calculator.Address(), funcGetNormalizedBalances, user, ids).Returns(&balances)); err != nil {
		return nil, fmt.Errorf("failed to fetch normalized balances: %w", err)
	}
	return balances, nil
}

func (f *networkFetcher) claimedAmount(ctx context.Context, user common.Address, id uint32) (*big.Int, error) {
	var amount *big.Int
	if err := f.d.provider.CallCtx(ctx, callFunc(f.d.meta.Address, funcGetDrawPayoutBalanceOf, user, id).Returns(&amount)); err != nil {
		return nil, fmt.Errorf("failed to fetch claimed amount: %w", err)
	}
	return amount, nil
}

func (f *networkFetcher) submitClaim(ctx context.Context, claim prize.Claim) (*types.Transaction, error) {
	opts := *f.d.provider.TransactOpts()
	opts.Context = ctx
	opts.GasLimit = claimGasLimit

	tx, err := f.d.contract.Transact(&opts, "claim", claim.UserAddress, claim.DrawIDs, claim.EncodedWinningPickIndices)
	if err != nil {
		return nil, fmt.Errorf("failed to submit claim transaction: %w", err)
	}
	return tx, nil
}
