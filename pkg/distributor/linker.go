package distributor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3/w3types"

	"github.com/Niffl3rReturns/n3r-sdk/pkg/chain"
	"github.com/Niffl3rReturns/n3r-sdk/pkg/contracts"
	"github.com/Niffl3rReturns/n3r-sdk/pkg/prize"
)

// chainMatchedTypes are attached to each distributor's contract list by chain
// id alone, with no on-chain relationship check. With multiple independent
// deployments of one of these types on a single chain the wrong record may be
// attached; this is a documented approximation carried over from the
// deployment tooling, not something Initialize detects.
var chainMatchedTypes = []string{
	contracts.TypeDrawBuffer,
	contracts.TypePrizeDistributionBuffer,
	contracts.TypeTicket,
	contracts.TypeDrawCalculatorTimelock,
}

// InitializeOpts contains configuration options for linking a flat contract
// list into per-chain prize distributor facades.
type InitializeOpts struct {
	Providers     map[int64]chain.Provider // one signer-or-provider per chain id
	Contracts     []contracts.Metadata     // flat metadata list across all chains
	Calculator    prize.Calculator         // external prize-calculation routine (optional)
	ClaimPreparer prize.ClaimPreparer      // external claim-preparation routine (optional)
	Logg          *slog.Logger             // Structured logger
}

// Initialize discovers the calculator linked to every distributor contract via
// one batched on-chain read per chain, rewires the flat metadata list into
// grouped per-distributor lists, and constructs one facade per distributor.
// Facades are ordered by chain id, then by the distributor's position in the
// input list.
//
// Any per-chain discovery batch failing aborts the whole initialization; there
// is no partial per-chain tolerance at this step. This is a one-time procedure
// and is not re-run when new contracts are deployed.
func Initialize(ctx context.Context, o InitializeOpts) ([]*PrizeDistributor, error) {
	logg := o.Logg
	if logg == nil {
		logg = slog.Default()
	}

	distributorMetas := contracts.ByType(o.Contracts, contracts.TypePrizeDistributor)
	if len(distributorMetas) == 0 {
		return nil, nil
	}

	byChain := contracts.ByChain(distributorMetas)
	chainIDs := contracts.ChainIDs(distributorMetas)

	// One discovery batch per chain: every distributor is asked for the
	// address of its linked calculator.
	calculatorAddrs := make(map[common.Address]common.Address, len(distributorMetas))
	for _, chainID := range chainIDs {
		provider, ok := o.Providers[chainID]
		if !ok {
			return nil, fmt.Errorf("no provider configured for chain %d", chainID)
		}

		metas := byChain[chainID]
		addrs := make([]common.Address, len(metas))
		calls := make([]w3types.RPCCaller, len(metas))
		for i, meta := range metas {
			calls[i] = callFunc(meta.Address, funcGetDrawCalculator).Returns(&addrs[i])
		}

		if err := provider.CallCtx(ctx, calls...); err != nil {
			return nil, fmt.Errorf("calculator discovery batch failed for chain %d: %w", chainID, err)
		}

		for i, meta := range metas {
			calculatorAddrs[meta.Address] = addrs[i]
		}
		logg.Debug("discovered draw calculators", "chain_id", chainID, "distributor_count", len(metas))
	}

	var facades []*PrizeDistributor
	for _, chainID := range chainIDs {
		provider := o.Providers[chainID]
		for _, meta := range byChain[chainID] {
			linked, group, err := linkContracts(o.Contracts, meta, calculatorAddrs[meta.Address])
			if err != nil {
				return nil, fmt.Errorf("failed to link contracts for distributor %s on chain %d: %w", meta.Address.Hex(), chainID, err)
			}

			facade, err := NewPrizeDistributor(DistributorOpts{
				Metadata:      linked,
				ContractList:  group,
				Provider:      provider,
				Calculator:    o.Calculator,
				ClaimPreparer: o.ClaimPreparer,
				Logg:          logg,
			})
			if err != nil {
				return nil, err
			}
			facades = append(facades, facade)
		}
	}

	sort.SliceStable(facades, func(i, j int) bool {
		return facades[i].ChainID() < facades[j].ChainID()
	})

	return facades, nil
}

// linkContracts attaches the resolved calculator as a child of the distributor
// metadata and assembles the grouped contract list for one facade: distributor
// first, then its calculator, then the chain-matched supporting contracts.
func linkContracts(list []contracts.Metadata, dist contracts.Metadata, calculatorAddr common.Address) (contracts.Metadata, []contracts.Metadata, error) {
	// Deterministic deployments reuse one address across chains, so the
	// calculator lookup is scoped to the distributor's own chain.
	var chainList []contracts.Metadata
	for _, meta := range list {
		if meta.ChainID == dist.ChainID {
			chainList = append(chainList, meta)
		}
	}

	calculatorMeta, err := contracts.One(chainList, contracts.TypeDrawCalculator, &calculatorAddr)
	if err != nil {
		return contracts.Metadata{}, nil, err
	}

	linked := dist
	linked.Children = []*contracts.Metadata{&calculatorMeta}

	group := []contracts.Metadata{linked, calculatorMeta}
	for _, typeTag := range chainMatchedTypes {
		if meta, ok := contracts.FirstByChain(chainList, typeTag, dist.ChainID); ok {
			group = append(group, meta)
		}
	}

	return linked, group, nil
}
