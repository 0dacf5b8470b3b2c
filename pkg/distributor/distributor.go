// Package distributor provides the per-chain prize-distributor facade, the
// multi-chain contract linker, and the draw-range reconciliation logic.
package distributor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Niffl3rReturns/n3r-sdk/pkg/chain"
	"github.com/Niffl3rReturns/n3r-sdk/pkg/contracts"
	"github.com/Niffl3rReturns/n3r-sdk/pkg/prize"
	"github.com/Niffl3rReturns/n3r-sdk/pkg/validate"
)

const (
	// claimGasLimit is the fixed gas-limit override applied to claim transactions.
	claimGasLimit = 400_000
)

// contractRole identifies a dependent contract handle resolved lazily by the
// facade. Resolution happens at most once per role per facade instance.
type contractRole uint8

const (
	roleDrawCalculator contractRole = iota
	roleDrawBuffer
	rolePrizeDistributionBuffer
)

// NothingToClaimError reports a claim submission whose total value is zero.
type NothingToClaimError struct {
	Prefix string
}

func (e *NothingToClaimError) Error() string {
	return fmt.Sprintf("%s: total claim value is zero, nothing to claim", e.Prefix)
}

type (
	// DistributorOpts contains configuration options for creating a PrizeDistributor.
	DistributorOpts struct {
		Metadata      contracts.Metadata   // distributor contract metadata
		ContractList  []contracts.Metadata // fully-linked metadata list for this distributor's chain
		Provider      chain.Provider       // signer-or-provider bound to the distributor's chain
		Calculator    prize.Calculator     // external prize-calculation routine (optional for read-only use)
		ClaimPreparer prize.ClaimPreparer  // external claim-preparation routine (optional for read-only use)
		Logg          *slog.Logger         // Structured logger
	}

	// PrizeDistributor is the per-chain facade bound to one distributor
	// contract. It owns lazily-resolved, cached handles to its dependent
	// contracts and exposes read operations over draws, prize distributions
	// and claims, plus claim submission.
	PrizeDistributor struct {
		meta     contracts.Metadata
		list     []contracts.Metadata
		provider chain.Provider
		contract *contracts.Contract

		calculator    prize.Calculator
		claimPreparer prize.ClaimPreparer
		logg          *slog.Logger

		mu      sync.Mutex
		handles map[contractRole]*contracts.Contract

		fetch fetcher
	}

	// DrawPair is one reconciled (Draw, PrizeDistribution) pair.
	DrawPair struct {
		Draw              prize.Draw
		PrizeDistribution prize.PrizeDistribution
	}
)

// NewPrizeDistributor creates a facade for the given distributor metadata.
// The contract list must contain every dependent contract of the distributor;
// after linking, the facade never consults the original flat list again.
func NewPrizeDistributor(o DistributorOpts) (*PrizeDistributor, error) {
	if o.Metadata.Type != contracts.TypePrizeDistributor {
		return nil, fmt.Errorf("expected %s metadata, got %s", contracts.TypePrizeDistributor, o.Metadata.Type)
	}

	handle, err := contracts.NewContract(o.Metadata, o.Provider)
	if err != nil {
		return nil, err
	}

	logg := o.Logg
	if logg == nil {
		logg = slog.Default()
	}

	d := &PrizeDistributor{
		meta:          o.Metadata,
		list:          o.ContractList,
		provider:      o.Provider,
		contract:      handle,
		calculator:    o.Calculator,
		claimPreparer: o.ClaimPreparer,
		logg:          logg,
		handles:       make(map[contractRole]*contracts.Contract),
	}
	d.fetch = &networkFetcher{d: d}

	// A calculator child attached during linking skips the on-chain address
	// discovery on first use.
	for _, child := range o.Metadata.Children {
		if child.Type == contracts.TypeDrawCalculator {
			calcHandle, err := contracts.NewContract(*child, o.Provider)
			if err != nil {
				return nil, err
			}
			d.handles[roleDrawCalculator] = calcHandle
		}
	}

	return d, nil
}

// ID returns the deterministic identity key of this facade, derived from the
// distributor contract address and chain id. Stable across instances; usable
// for caller-side deduplication.
func (d *PrizeDistributor) ID() string {
	return fmt.Sprintf("%s-%d", d.meta.Address.Hex(), d.meta.ChainID)
}

// Metadata returns the distributor contract metadata.
func (d *PrizeDistributor) Metadata() contracts.Metadata {
	return d.meta
}

// ChainID returns the chain the distributor is deployed on.
func (d *PrizeDistributor) ChainID() int64 {
	return d.meta.ChainID
}

// resolveOrFetch returns the cached handle for the given role, resolving it
// on first use: the dependent contract's address is read on-chain, then the
// matching metadata is looked up in the facade's contract list. The lock is
// held across resolution so each role resolves at most once.
func (d *PrizeDistributor) resolveOrFetch(ctx context.Context, role contractRole) (*contracts.Contract, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resolveOrFetchLocked(ctx, role)
}

func (d *PrizeDistributor) resolveOrFetchLocked(ctx context.Context, role contractRole) (*contracts.Contract, error) {
	if handle, ok := d.handles[role]; ok {
		return handle, nil
	}

	var (
		addr    common.Address
		typeTag string
	)

	switch role {
	case roleDrawCalculator:
		if err := d.provider.CallCtx(ctx, callFunc(d.meta.Address, funcGetDrawCalculator).Returns(&addr)); err != nil {
			return nil, fmt.Errorf("failed to fetch draw calculator address: %w", err)
		}
		typeTag = contracts.TypeDrawCalculator

	case roleDrawBuffer, rolePrizeDistributionBuffer:
		calculator, err := d.resolveOrFetchLocked(ctx, roleDrawCalculator)
		if err != nil {
			return nil, err
		}

		fn := funcGetDrawBuffer
		typeTag = contracts.TypeDrawBuffer
		if role == rolePrizeDistributionBuffer {
			fn = funcGetPrizeDistributionBuffer
			typeTag = contracts.TypePrizeDistributionBuffer
		}

		if err := d.provider.CallCtx(ctx, callFunc(calculator.Address(), fn).Returns(&addr)); err != nil {
			return nil, fmt.Errorf("failed to fetch %s address: %w", typeTag, err)
		}

	default:
		return nil, fmt.Errorf("unknown contract role %d", role)
	}

	handle, err := contracts.Resolve(d.list, typeTag, &addr, d.provider)
	if err != nil {
		return nil, err
	}

	d.handles[role] = handle
	return handle, nil
}

// GetDraw fetches one draw from the draw buffer.
func (d *PrizeDistributor) GetDraw(ctx context.Context, drawID uint32) (prize.Draw, error) {
	draws, err := d.GetDraws(ctx, []uint32{drawID})
	if err != nil {
		return prize.Draw{}, err
	}
	if len(draws) != 1 {
		return prize.Draw{}, fmt.Errorf("draw %d not found", drawID)
	}
	return draws[0], nil
}

// GetDraws fetches the given draws from the draw buffer in one call.
func (d *PrizeDistributor) GetDraws(ctx context.Context, drawIDs []uint32) ([]prize.Draw, error) {
	if len(drawIDs) == 0 {
		return nil, nil
	}
	return d.fetch.draws(ctx, drawIDs)
}

// GetPrizeDistribution fetches one prize distribution from its buffer.
func (d *PrizeDistributor) GetPrizeDistribution(ctx context.Context, drawID uint32) (prize.PrizeDistribution, error) {
	distributions, err := d.GetPrizeDistributions(ctx, []uint32{drawID})
	if err != nil {
		return prize.PrizeDistribution{}, err
	}
	if len(distributions) != 1 {
		return prize.PrizeDistribution{}, fmt.Errorf("prize distribution %d not found", drawID)
	}
	return distributions[0], nil
}

// GetPrizeDistributions fetches the given prize distributions in one call.
func (d *PrizeDistributor) GetPrizeDistributions(ctx context.Context, drawIDs []uint32) ([]prize.PrizeDistribution, error) {
	if len(drawIDs) == 0 {
		return nil, nil
	}
	return d.fetch.prizeDistributions(ctx, drawIDs)
}

// GetDrawsAndPrizeDistributions fetches (Draw, PrizeDistribution) pairs for
// the given draw ids, best effort. When either underlying batched fetch fails
// the single largest requested id is dropped and the fetch retried: a draw is
// typically recorded before its distribution, so the newest id is the one
// most likely to be missing. An exhausted id list yields an empty result.
func (d *PrizeDistributor) GetDrawsAndPrizeDistributions(ctx context.Context, drawIDs []uint32) ([]DrawPair, error) {
	if len(drawIDs) == 0 {
		return nil, nil
	}

	draws, distributions, err := d.fetch.drawsAndPrizeDistributions(ctx, drawIDs)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		d.logg.Debug("paired fetch failed, dropping largest draw id",
			"distributor", d.ID(),
			"dropped", largest(drawIDs),
			"error", err,
		)
		return d.GetDrawsAndPrizeDistributions(ctx, dropLargest(drawIDs))
	}

	if len(draws) != len(distributions) {
		return nil, fmt.Errorf("paired fetch length mismatch: %d draws, %d distributions", len(draws), len(distributions))
	}

	pairs := make([]DrawPair, len(draws))
	for i := range draws {
		pairs[i] = DrawPair{
			Draw:              draws[i],
			PrizeDistribution: distributions[i],
		}
	}
	return pairs, nil
}

// GetUsersPrizes computes every prize the user is owed for the given draw.
// A user with a zero normalized balance for the draw gets an empty result
// without invoking the external prize-calculation routine.
func (d *PrizeDistributor) GetUsersPrizes(ctx context.Context, user common.Address, draw prize.Draw) (prize.DrawResults, error) {
	prizeDistribution, err := d.GetPrizeDistribution(ctx, draw.DrawID)
	if err != nil {
		return prize.DrawResults{}, err
	}

	balances, err := d.fetch.normalizedBalances(ctx, user, []uint32{draw.DrawID})
	if err != nil {
		return prize.DrawResults{}, err
	}
	if len(balances) != 1 {
		return prize.DrawResults{}, fmt.Errorf("expected 1 normalized balance, got %d", len(balances))
	}

	if balances[0].Sign() == 0 {
		return prize.DrawResults{
			DrawID:     draw.DrawID,
			TotalValue: new(big.Int),
			Prizes:     []prize.PrizeAwardable{},
		}, nil
	}

	if d.calculator == nil {
		return prize.DrawResults{}, errors.New("no prize calculator configured")
	}

	return d.calculator.CalculateDrawResults(prizeDistribution, draw, prize.User{
		Address:            user,
		NormalizedBalances: []*big.Int{balances[0]},
	})
}

// GetUsersClaimedAmount returns the amount the user has already been paid out
// for the given draw.
func (d *PrizeDistributor) GetUsersClaimedAmount(ctx context.Context, user common.Address, drawID uint32) (*big.Int, error) {
	return d.fetch.claimedAmount(ctx, user, drawID)
}

// ClaimPrizesByDrawResults submits a claim transaction for one draw's results.
// Requires a signing provider on the facade's chain and a nonzero total value;
// validation failures are raised before any network call.
func (d *PrizeDistributor) ClaimPrizesByDrawResults(ctx context.Context, results prize.DrawResults) (*types.Transaction, error) {
	const op = "claimPrizesByDrawResults"
	return d.claim(ctx, op, []prize.DrawResults{results})
}

// ClaimPrizesAcrossMultipleDrawsByDrawResults merges the results of multiple
// draws into a single claim transaction.
func (d *PrizeDistributor) ClaimPrizesAcrossMultipleDrawsByDrawResults(ctx context.Context, results []prize.DrawResults) (*types.Transaction, error) {
	const op = "claimPrizesAcrossMultipleDrawsByDrawResults"
	return d.claim(ctx, op, results)
}

func (d *PrizeDistributor) claim(ctx context.Context, op string, results []prize.DrawResults) (*types.Transaction, error) {
	if err := validate.Signer(op, d.provider); err != nil {
		return nil, err
	}
	if err := validate.SignerNetwork(op, d.provider, d.meta.ChainID); err != nil {
		return nil, err
	}

	total := new(big.Int)
	claimable := make([]prize.DrawResults, 0, len(results))
	for _, result := range results {
		if result.TotalValue == nil || result.TotalValue.Sign() == 0 {
			continue
		}
		total.Add(total, result.TotalValue)
		claimable = append(claimable, result)
	}
	if total.Sign() == 0 {
		return nil, &NothingToClaimError{Prefix: op}
	}

	if d.claimPreparer == nil {
		return nil, errors.New("no claim preparer configured")
	}

	user, err := d.provider.Address()
	if err != nil {
		return nil, err
	}

	claim, err := d.claimPreparer.PrepareClaims(prize.User{Address: user}, claimable)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare claim: %w", err)
	}

	return d.fetch.submitClaim(ctx, claim)
}

// largest returns the maximum id in a non-empty list.
func largest(ids []uint32) uint32 {
	max := ids[0]
	for _, id := range ids[1:] {
		if id > max {
			max = id
		}
	}
	return max
}

// dropLargest returns a copy of ids without its single largest element.
func dropLargest(ids []uint32) []uint32 {
	max := largest(ids)
	out := make([]uint32, 0, len(ids)-1)
	dropped := false
	for _, id := range ids {
		if !dropped && id == max {
			dropped = true
			continue
		}
		out = append(out, id)
	}
	return out
}
