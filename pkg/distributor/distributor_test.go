package distributor

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lmittmann/w3/w3types"
	"github.com/stretchr/testify/require"

	"github.com/Niffl3rReturns/n3r-sdk/pkg/chain"
	"github.com/Niffl3rReturns/n3r-sdk/pkg/contracts"
	"github.com/Niffl3rReturns/n3r-sdk/pkg/prize"
	"github.com/Niffl3rReturns/n3r-sdk/pkg/validate"
)

var (
	testDistributorAddr = common.HexToAddress("0xaa")
	testUserAddr        = common.HexToAddress("0xbb")
)

// fakeProvider satisfies chain.Provider without any network access.
type fakeProvider struct {
	chainID int64
	opts    *bind.TransactOpts
}

func (p *fakeProvider) ChainID() int64 { return p.chainID }

func (p *fakeProvider) CallCtx(_ context.Context, _ ...w3types.RPCCaller) error {
	return errors.New("unexpected network call")
}

func (p *fakeProvider) Backend() bind.ContractBackend { return nil }

func (p *fakeProvider) TransactOpts() *bind.TransactOpts { return p.opts }

func (p *fakeProvider) Address() (common.Address, error) {
	if p.opts == nil {
		return common.Address{}, chain.ErrNoSigner
	}
	return p.opts.From, nil
}

// fakeFetcher scripts the facade's network seam.
type fakeFetcher struct {
	drawsByID         map[uint32]prize.Draw
	distributionsByID map[uint32]prize.PrizeDistribution
	failPairedFor     map[uint32]bool
	pairedCalls       [][]uint32
	balances          []*big.Int
	balanceErr        error
	drawBoundsVal     bufferBounds
	distributeVal     bufferBounds
	submitted         *prize.Claim
	submitErr         error
}

func (f *fakeFetcher) draws(_ context.Context, ids []uint32) ([]prize.Draw, error) {
	out := make([]prize.Draw, 0, len(ids))
	for _, id := range ids {
		draw, ok := f.drawsByID[id]
		if !ok {
			return nil, errors.New("draw missing")
		}
		out = append(out, draw)
	}
	return out, nil
}

func (f *fakeFetcher) prizeDistributions(_ context.Context, ids []uint32) ([]prize.PrizeDistribution, error) {
	out := make([]prize.PrizeDistribution, 0, len(ids))
	for _, id := range ids {
		distribution, ok := f.distributionsByID[id]
		if !ok {
			return nil, errors.New("prize distribution missing")
		}
		out = append(out, distribution)
	}
	return out, nil
}

func (f *fakeFetcher) drawsAndPrizeDistributions(ctx context.Context, ids []uint32) ([]prize.Draw, []prize.PrizeDistribution, error) {
	f.pairedCalls = append(f.pairedCalls, append([]uint32(nil), ids...))
	for _, id := range ids {
		if f.failPairedFor[id] {
			return nil, nil, errors.New("batch reverted")
		}
	}
	draws, err := f.draws(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	distributions, err := f.prizeDistributions(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return draws, distributions, nil
}

func (f *fakeFetcher) drawBounds(_ context.Context) bufferBounds { return f.drawBoundsVal }

func (f *fakeFetcher) distributionBounds(_ context.Context) bufferBounds { return f.distributeVal }

func (f *fakeFetcher) normalizedBalances(_ context.Context, _ common.Address, ids []uint32) ([]*big.Int, error) {
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return f.balances[:len(ids)], nil
}

func (f *fakeFetcher) claimedAmount(_ context.Context, _ common.Address, _ uint32) (*big.Int, error) {
	return new(big.Int), nil
}

func (f *fakeFetcher) submitClaim(_ context.Context, claim prize.Claim) (*types.Transaction, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = &claim
	return types.NewTx(&types.LegacyTx{}), nil
}

// failCalculator fails the test when the external calculation is invoked.
type failCalculator struct {
	t *testing.T
}

func (c failCalculator) CalculateDrawResults(_ prize.PrizeDistribution, _ prize.Draw, _ prize.User) (prize.DrawResults, error) {
	c.t.Fatal("prize calculation must not run for a zero normalized balance")
	return prize.DrawResults{}, nil
}

// staticCalculator returns a fixed result.
type staticCalculator struct {
	results prize.DrawResults
}

func (c staticCalculator) CalculateDrawResults(_ prize.PrizeDistribution, _ prize.Draw, _ prize.User) (prize.DrawResults, error) {
	return c.results, nil
}

// passthroughPreparer builds a claim covering every result's draw id.
type passthroughPreparer struct{}

func (passthroughPreparer) PrepareClaims(user prize.User, results []prize.DrawResults) (prize.Claim, error) {
	claim := prize.Claim{UserAddress: user.Address}
	for _, result := range results {
		claim.DrawIDs = append(claim.DrawIDs, result.DrawID)
	}
	return claim, nil
}

func newTestDistributor(t *testing.T, provider chain.Provider, fetch fetcher) *PrizeDistributor {
	t.Helper()

	d, err := NewPrizeDistributor(DistributorOpts{
		Metadata: contracts.Metadata{
			Address: testDistributorAddr,
			ChainID: 1,
			Type:    contracts.TypePrizeDistributor,
		},
		Provider:      provider,
		ClaimPreparer: passthroughPreparer{},
	})
	require.NoError(t, err)
	d.fetch = fetch
	return d
}

func TestNewPrizeDistributorRejectsWrongType(t *testing.T) {
	_, err := NewPrizeDistributor(DistributorOpts{
		Metadata: contracts.Metadata{Type: contracts.TypeTicket},
		Provider: &fakeProvider{chainID: 1},
	})
	require.Error(t, err)
}

func TestID(t *testing.T) {
	d := newTestDistributor(t, &fakeProvider{chainID: 1}, &fakeFetcher{})
	require.Equal(t, testDistributorAddr.Hex()+"-1", d.ID())
}

func TestGetUsersPrizesZeroBalanceShortCircuits(t *testing.T) {
	fetch := &fakeFetcher{
		distributionsByID: map[uint32]prize.PrizeDistribution{8: {Prize: big.NewInt(1000)}},
		balances:          []*big.Int{new(big.Int)},
	}
	d := newTestDistributor(t, &fakeProvider{chainID: 1}, fetch)
	d.calculator = failCalculator{t: t}

	results, err := d.GetUsersPrizes(context.Background(), testUserAddr, prize.Draw{DrawID: 8})
	require.NoError(t, err)
	require.Equal(t, uint32(8), results.DrawID)
	require.Zero(t, results.TotalValue.Sign())
	require.Empty(t, results.Prizes)
}

func TestGetUsersPrizesDelegatesForNonzeroBalance(t *testing.T) {
	want := prize.DrawResults{
		DrawID:     8,
		TotalValue: big.NewInt(42),
		Prizes:     []prize.PrizeAwardable{{Amount: big.NewInt(42), TierIndex: 1, Pick: big.NewInt(3)}},
	}
	fetch := &fakeFetcher{
		distributionsByID: map[uint32]prize.PrizeDistribution{8: {Prize: big.NewInt(1000)}},
		balances:          []*big.Int{big.NewInt(7)},
	}
	d := newTestDistributor(t, &fakeProvider{chainID: 1}, fetch)
	d.calculator = staticCalculator{results: want}

	results, err := d.GetUsersPrizes(context.Background(), testUserAddr, prize.Draw{DrawID: 8})
	require.NoError(t, err)
	require.Equal(t, want, results)
}

func TestGetDrawsAndPrizeDistributionsRetriesByDroppingLargest(t *testing.T) {
	fetch := &fakeFetcher{
		drawsByID: map[uint32]prize.Draw{
			1: {DrawID: 1}, 2: {DrawID: 2}, 3: {DrawID: 3},
		},
		distributionsByID: map[uint32]prize.PrizeDistribution{
			1: {Prize: big.NewInt(1)}, 2: {Prize: big.NewInt(2)},
		},
		failPairedFor: map[uint32]bool{3: true},
	}
	d := newTestDistributor(t, &fakeProvider{chainID: 1}, fetch)

	pairs, err := d.GetDrawsAndPrizeDistributions(context.Background(), []uint32{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	require.Equal(t, uint32(1), pairs[0].Draw.DrawID)
	require.Equal(t, uint32(2), pairs[1].Draw.DrawID)

	// One failed attempt for [1 2 3], then the winning retry for [1 2].
	require.Equal(t, [][]uint32{{1, 2, 3}, {1, 2}}, fetch.pairedCalls)
}

func TestGetDrawsAndPrizeDistributionsExhaustsToEmpty(t *testing.T) {
	fetch := &fakeFetcher{
		failPairedFor: map[uint32]bool{1: true, 2: true},
	}
	d := newTestDistributor(t, &fakeProvider{chainID: 1}, fetch)

	pairs, err := d.GetDrawsAndPrizeDistributions(context.Background(), []uint32{1, 2})
	require.NoError(t, err)
	require.Empty(t, pairs)
	require.Equal(t, [][]uint32{{1, 2}, {1}}, fetch.pairedCalls)
}

func TestGetValidDrawIDs(t *testing.T) {
	fetch := &fakeFetcher{
		drawBoundsVal: bufferBounds{oldest: 2, newest: 10, ok: true},
		distributeVal: bufferBounds{oldest: 5, newest: 8, ok: true},
	}
	d := newTestDistributor(t, &fakeProvider{chainID: 1}, fetch)

	require.Equal(t, []uint32{5, 6, 7, 8}, d.GetValidDrawIDs(context.Background()))
}

func TestGetValidDrawIDsEmptyOnUnavailableBuffer(t *testing.T) {
	fetch := &fakeFetcher{
		drawBoundsVal: bufferBounds{oldest: 2, newest: 10, ok: true},
	}
	d := newTestDistributor(t, &fakeProvider{chainID: 1}, fetch)

	require.Empty(t, d.GetValidDrawIDs(context.Background()))
}

func TestClaimRequiresSigner(t *testing.T) {
	fetch := &fakeFetcher{}
	d := newTestDistributor(t, &fakeProvider{chainID: 1}, fetch)

	_, err := d.ClaimPrizesByDrawResults(context.Background(), prize.DrawResults{TotalValue: big.NewInt(5)})

	var signerErr *validate.SignerRequiredError
	require.ErrorAs(t, err, &signerErr)
	require.Nil(t, fetch.submitted)
}

func TestClaimRequiresMatchingNetwork(t *testing.T) {
	fetch := &fakeFetcher{}
	provider := &fakeProvider{chainID: 137, opts: &bind.TransactOpts{From: testUserAddr}}
	d := newTestDistributor(t, provider, fetch)

	_, err := d.ClaimPrizesByDrawResults(context.Background(), prize.DrawResults{TotalValue: big.NewInt(5)})

	var networkErr *validate.NetworkMismatchError
	require.ErrorAs(t, err, &networkErr)
	require.Equal(t, int64(1), networkErr.Expected)
	require.Equal(t, int64(137), networkErr.Actual)
	require.Nil(t, fetch.submitted)
}

func TestClaimRejectsZeroTotalValue(t *testing.T) {
	fetch := &fakeFetcher{}
	provider := &fakeProvider{chainID: 1, opts: &bind.TransactOpts{From: testUserAddr}}
	d := newTestDistributor(t, provider, fetch)

	_, err := d.ClaimPrizesByDrawResults(context.Background(), prize.DrawResults{TotalValue: new(big.Int)})

	var nothingErr *NothingToClaimError
	require.ErrorAs(t, err, &nothingErr)
	// Validation happens before any submission attempt.
	require.Nil(t, fetch.submitted)
}

func TestClaimSubmitsPreparedClaim(t *testing.T) {
	fetch := &fakeFetcher{}
	provider := &fakeProvider{chainID: 1, opts: &bind.TransactOpts{From: testUserAddr}}
	d := newTestDistributor(t, provider, fetch)

	tx, err := d.ClaimPrizesByDrawResults(context.Background(), prize.DrawResults{
		DrawID:     9,
		TotalValue: big.NewInt(123),
	})
	require.NoError(t, err)
	require.NotNil(t, tx)
	require.NotNil(t, fetch.submitted)
	require.Equal(t, testUserAddr, fetch.submitted.UserAddress)
	require.Equal(t, []uint32{9}, fetch.submitted.DrawIDs)
}

func TestClaimAcrossMultipleDrawsSkipsEmptyResults(t *testing.T) {
	fetch := &fakeFetcher{}
	provider := &fakeProvider{chainID: 1, opts: &bind.TransactOpts{From: testUserAddr}}
	d := newTestDistributor(t, provider, fetch)

	tx, err := d.ClaimPrizesAcrossMultipleDrawsByDrawResults(context.Background(), []prize.DrawResults{
		{DrawID: 4, TotalValue: new(big.Int)},
		{DrawID: 5, TotalValue: big.NewInt(10)},
		{DrawID: 6, TotalValue: big.NewInt(20)},
	})
	require.NoError(t, err)
	require.NotNil(t, tx)
	require.Equal(t, []uint32{5, 6}, fetch.submitted.DrawIDs)
}

func TestDropLargest(t *testing.T) {
	require.Equal(t, []uint32{1, 2}, dropLargest([]uint32{1, 3, 2}))
	require.Equal(t, []uint32{3, 3}, dropLargest([]uint32{3, 3, 3}))
	require.Empty(t, dropLargest([]uint32{7}))
}
