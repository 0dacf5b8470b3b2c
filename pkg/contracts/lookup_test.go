package contracts

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func testList() []Metadata {
	return []Metadata{
		{Address: common.HexToAddress("0x01"), ChainID: 1, Type: TypePrizeDistributor},
		{Address: common.HexToAddress("0x02"), ChainID: 1, Type: TypeDrawCalculator},
		{Address: common.HexToAddress("0x03"), ChainID: 1, Type: TypeDrawBuffer},
		{Address: common.HexToAddress("0x04"), ChainID: 137, Type: TypePrizeDistributor},
		{Address: common.HexToAddress("0x05"), ChainID: 137, Type: TypePrizeDistributor},
	}
}

func TestOneExactMatch(t *testing.T) {
	meta, err := One(testList(), TypeDrawCalculator, nil)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0x02"), meta.Address)
}

func TestOneZeroMatches(t *testing.T) {
	_, err := One(testList(), TypeTicket, nil)

	var resolutionErr *ContractResolutionError
	require.ErrorAs(t, err, &resolutionErr)
	require.Equal(t, TypeTicket, resolutionErr.Type)
	require.Equal(t, 0, resolutionErr.Count)
}

func TestOneMultipleMatches(t *testing.T) {
	_, err := One(testList(), TypePrizeDistributor, nil)

	var resolutionErr *ContractResolutionError
	require.ErrorAs(t, err, &resolutionErr)
	require.Equal(t, 3, resolutionErr.Count)
}

func TestOneAddressNarrowsMatches(t *testing.T) {
	addr := common.HexToAddress("0x04")
	meta, err := One(testList(), TypePrizeDistributor, &addr)
	require.NoError(t, err)
	require.Equal(t, int64(137), meta.ChainID)
}

func TestByChain(t *testing.T) {
	grouped := ByChain(testList())
	require.Len(t, grouped[1], 3)
	require.Len(t, grouped[137], 2)
}

func TestByTypePreservesOrder(t *testing.T) {
	matches := ByType(testList(), TypePrizeDistributor)
	require.Len(t, matches, 3)
	require.Equal(t, common.HexToAddress("0x01"), matches[0].Address)
	require.Equal(t, common.HexToAddress("0x05"), matches[2].Address)
}

func TestChainIDsSorted(t *testing.T) {
	require.Equal(t, []int64{1, 137}, ChainIDs(testList()))
}

func TestFirstByChain(t *testing.T) {
	meta, ok := FirstByChain(testList(), TypeDrawBuffer, 1)
	require.True(t, ok)
	require.Equal(t, common.HexToAddress("0x03"), meta.Address)

	_, ok = FirstByChain(testList(), TypeDrawBuffer, 137)
	require.False(t, ok)
}

func TestDefaultABIParseable(t *testing.T) {
	for _, typeTag := range []string{
		TypePrizeDistributor,
		TypeDrawCalculator,
		TypeDrawCalculatorTimelock,
		TypeDrawBuffer,
		TypePrizeDistributionBuffer,
		TypeTicket,
	} {
		require.NotEmpty(t, DefaultABI(typeTag), typeTag)
	}
	require.Empty(t, DefaultABI("Unknown"))
}
