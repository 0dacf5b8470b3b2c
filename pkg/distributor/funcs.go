package distributor

import (
	"math/big"

	"github.com/lmittmann/w3"
	"github.com/lmittmann/w3/module/eth"

	"github.com/Niffl3rReturns/n3r-sdk/pkg/prize"
)

// callFunc builds one eth_call for batched execution.
var callFunc = eth.CallFunc

// Solidity tuple layouts for the two buffer record types.
const (
	drawTuple = "(uint256 winningRandomNumber, uint32 drawId, uint64 timestamp, uint64 beaconPeriodStartedAt, uint32 beaconPeriodSeconds)"

	prizeDistributionTuple = "(uint8 bitRangeSize, uint8 matchCardinality, uint32 startTimestampOffset, uint32 endTimestampOffset, uint32 maxPicksPerUser, uint32 expiryDuration, uint104 numberOfPicks, uint32[16] tiers, uint256 prize)"
)

var (
	funcGetDrawCalculator          = w3.MustNewFunc("getDrawCalculator()", "address")
	funcGetDrawBuffer              = w3.MustNewFunc("getDrawBuffer()", "address")
	funcGetPrizeDistributionBuffer = w3.MustNewFunc("getPrizeDistributionBuffer()", "address")
	funcGetNormalizedBalances      = w3.MustNewFunc("getNormalizedBalancesForDrawIds(address user, uint32[] drawIds)", "uint256[]")
	funcGetDrawPayoutBalanceOf     = w3.MustNewFunc("getDrawPayoutBalanceOf(address user, uint32 drawId)", "uint256")

	funcGetOldestDraw = w3.MustNewFunc("getOldestDraw()", drawTuple)
	funcGetNewestDraw = w3.MustNewFunc("getNewestDraw()", drawTuple)
	funcGetDraws      = w3.MustNewFunc("getDraws(uint32[] drawIds)", drawTuple+"[]")

	funcGetOldestPrizeDistribution = w3.MustNewFunc("getOldestPrizeDistribution()", prizeDistributionTuple+", uint32 drawId")
	funcGetNewestPrizeDistribution = w3.MustNewFunc("getNewestPrizeDistribution()", prizeDistributionTuple+", uint32 drawId")
	funcGetPrizeDistributions      = w3.MustNewFunc("getPrizeDistributions(uint32[] drawIds)", prizeDistributionTuple+"[]")
)

type (
	// drawWire mirrors the on-chain draw tuple field order.
	drawWire struct {
		WinningRandomNumber   *big.Int
		DrawId                uint32
		Timestamp             uint64
		BeaconPeriodStartedAt uint64
		BeaconPeriodSeconds   uint32
	}

	// prizeDistributionWire mirrors the on-chain prize-distribution tuple field order.
	prizeDistributionWire struct {
		BitRangeSize         uint8
		MatchCardinality     uint8
		StartTimestampOffset uint32
		EndTimestampOffset   uint32
		MaxPicksPerUser      uint32
		ExpiryDuration       uint32
		NumberOfPicks        *big.Int
		Tiers                [16]uint32
		Prize                *big.Int
	}
)

func (w drawWire) toDraw() prize.Draw {
	return prize.Draw{
		DrawID:                w.DrawId,
		Timestamp:             w.Timestamp,
		WinningRandomNumber:   w.WinningRandomNumber,
		BeaconPeriodStartedAt: w.BeaconPeriodStartedAt,
		BeaconPeriodSeconds:   w.BeaconPeriodSeconds,
	}
}

func (w prizeDistributionWire) toPrizeDistribution() prize.PrizeDistribution {
	return prize.PrizeDistribution{
		BitRangeSize:         w.BitRangeSize,
		MatchCardinality:     w.MatchCardinality,
		StartTimestampOffset: w.StartTimestampOffset,
		EndTimestampOffset:   w.EndTimestampOffset,
		MaxPicksPerUser:      w.MaxPicksPerUser,
		ExpiryDuration:       w.ExpiryDuration,
		NumberOfPicks:        w.NumberOfPicks,
		Tiers:                w.Tiers,
		Prize:                w.Prize,
	}
}
