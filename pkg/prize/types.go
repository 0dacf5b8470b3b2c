// Package prize provides the prize-draw data model, the legacy prize-record
// normalizer, and the external calculation collaborator interfaces.
package prize

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type (
	// Draw is one completed lottery draw recorded on-chain. Draws form a
	// contiguous, monotonically increasing sequence bounded by the oldest and
	// newest draw ids the on-chain buffer exposes.
	Draw struct {
		DrawID                uint32   `json:"drawId"`
		Timestamp             uint64   `json:"timestamp"`
		WinningRandomNumber   *big.Int `json:"winningRandomNumber"`
		BeaconPeriodStartedAt uint64   `json:"beaconPeriodStartedAt"`
		BeaconPeriodSeconds   uint32   `json:"beaconPeriodSeconds"`
	}

	// PrizeDistribution is the per-draw configuration determining prize tiers
	// and eligibility. Keyed by draw id in its own on-chain buffer whose
	// bounds may lag or lead the draw buffer's bounds.
	PrizeDistribution struct {
		BitRangeSize         uint8      `json:"bitRangeSize"`
		MatchCardinality     uint8      `json:"matchCardinality"`
		StartTimestampOffset uint32     `json:"startTimestampOffset"`
		EndTimestampOffset   uint32     `json:"endTimestampOffset"`
		MaxPicksPerUser      uint32     `json:"maxPicksPerUser"`
		ExpiryDuration       uint32     `json:"expiryDuration"`
		NumberOfPicks        *big.Int   `json:"numberOfPicks"`
		Tiers                [16]uint32 `json:"tiers"`
		Prize                *big.Int   `json:"prize"`
	}

	// PrizeAwardable is the canonical shape of one awardable prize.
	PrizeAwardable struct {
		Amount    *big.Int `json:"amount"`
		TierIndex uint8    `json:"tierIndex"`
		Pick      *big.Int `json:"pick"`
	}

	// DrawResults holds every prize a user is owed for one draw. Computed
	// fresh per user per draw; never persisted by the SDK.
	DrawResults struct {
		DrawID     uint32           `json:"drawId"`
		TotalValue *big.Int         `json:"totalValue"`
		Prizes     []PrizeAwardable `json:"prizes"`
	}

	// User is the record handed to the external prize-calculation routine.
	User struct {
		Address            common.Address `json:"address"`
		NormalizedBalances []*big.Int     `json:"normalizedBalances"`
	}

	// Claim is the prepared payload for one claim transaction. Derived from
	// one or more DrawResults immediately before submission; ephemeral.
	Claim struct {
		UserAddress               common.Address `json:"userAddress"`
		DrawIDs                   []uint32       `json:"drawIds"`
		EncodedWinningPickIndices []byte         `json:"encodedWinningPickIndices"`
	}
)

// Calculator is the external prize-calculation routine. The matching of picks
// against tiers and cardinality is out of scope for this SDK and supplied by
// the consumer.
type Calculator interface {
	CalculateDrawResults(prizeDistribution PrizeDistribution, draw Draw, user User) (DrawResults, error)
}

// ClaimPreparer is the external claim-preparation routine that encodes winning
// pick indices for submission.
type ClaimPreparer interface {
	PrepareClaims(user User, drawResults []DrawResults) (Claim, error)
}
