package contracts

// Minimal ABI fragments for the protocol contracts, covering only the
// functions the SDK calls. Contract lists may override these with full ABIs.

const prizeDistributorABI = `[
	{"type":"function","name":"getDrawCalculator","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"getDrawPayoutBalanceOf","stateMutability":"view","inputs":[{"name":"user","type":"address"},{"name":"drawId","type":"uint32"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"claim","stateMutability":"nonpayable","inputs":[{"name":"user","type":"address"},{"name":"drawIds","type":"uint32[]"},{"name":"data","type":"bytes"}],"outputs":[{"name":"","type":"uint256"}]}
]`

const drawCalculatorABI = `[
	{"type":"function","name":"getDrawBuffer","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"getPrizeDistributionBuffer","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"getNormalizedBalancesForDrawIds","stateMutability":"view","inputs":[{"name":"user","type":"address"},{"name":"drawIds","type":"uint32[]"}],"outputs":[{"name":"","type":"uint256[]"}]}
]`

const drawBufferABI = `[
	{"type":"function","name":"getOldestDraw","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"tuple","components":[{"name":"winningRandomNumber","type":"uint256"},{"name":"drawId","type":"uint32"},{"name":"timestamp","type":"uint64"},{"name":"beaconPeriodStartedAt","type":"uint64"},{"name":"beaconPeriodSeconds","type":"uint32"}]}]},
	{"type":"function","name":"getNewestDraw","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"tuple","components":[{"name":"winningRandomNumber","type":"uint256"},{"name":"drawId","type":"uint32"},{"name":"timestamp","type":"uint64"},{"name":"beaconPeriodStartedAt","type":"uint64"},{"name":"beaconPeriodSeconds","type":"uint32"}]}]},
	{"type":"function","name":"getDraws","stateMutability":"view","inputs":[{"name":"drawIds","type":"uint32[]"}],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"winningRandomNumber","type":"uint256"},{"name":"drawId","type":"uint32"},{"name":"timestamp","type":"uint64"},{"name":"beaconPeriodStartedAt","type":"uint64"},{"name":"beaconPeriodSeconds","type":"uint32"}]}]}
]`

const prizeDistributionBufferABI = `[
	{"type":"function","name":"getOldestPrizeDistribution","stateMutability":"view","inputs":[],"outputs":[{"name":"prizeDistribution","type":"tuple","components":[{"name":"bitRangeSize","type":"uint8"},{"name":"matchCardinality","type":"uint8"},{"name":"startTimestampOffset","type":"uint32"},{"name":"endTimestampOffset","type":"uint32"},{"name":"maxPicksPerUser","type":"uint32"},{"name":"expiryDuration","type":"uint32"},{"name":"numberOfPicks","type":"uint104"},{"name":"tiers","type":"uint32[16]"},{"name":"prize","type":"uint256"}]},{"name":"drawId","type":"uint32"}]},
	{"type":"function","name":"getNewestPrizeDistribution","stateMutability":"view","inputs":[],"outputs":[{"name":"prizeDistribution","type":"tuple","components":[{"name":"bitRangeSize","type":"uint8"},{"name":"matchCardinality","type":"uint8"},{"name":"startTimestampOffset","type":"uint32"},{"name":"endTimestampOffset","type":"uint32"},{"name":"maxPicksPerUser","type":"uint32"},{"name":"expiryDuration","type":"uint32"},{"name":"numberOfPicks","type":"uint104"},{"name":"tiers","type":"uint32[16]"},{"name":"prize","type":"uint256"}]},{"name":"drawId","type":"uint32"}]},
	{"type":"function","name":"getPrizeDistributions","stateMutability":"view","inputs":[{"name":"drawIds","type":"uint32[]"}],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"bitRangeSize","type":"uint8"},{"name":"matchCardinality","type":"uint8"},{"name":"startTimestampOffset","type":"uint32"},{"name":"endTimestampOffset","type":"uint32"},{"name":"maxPicksPerUser","type":"uint32"},{"name":"expiryDuration","type":"uint32"},{"name":"numberOfPicks","type":"uint104"},{"name":"tiers","type":"uint32[16]"},{"name":"prize","type":"uint256"}]}]}
]`

const ticketABI = `[
	{"type":"function","name":"getBalanceAt","stateMutability":"view","inputs":[{"name":"user","type":"address"},{"name":"timestamp","type":"uint64"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

const drawCalculatorTimelockABI = `[
	{"type":"function","name":"getTimelock","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"tuple","components":[{"name":"timestamp","type":"uint64"},{"name":"drawId","type":"uint32"}]}]}
]`

// DefaultABI returns the embedded ABI fragment for a known contract type tag,
// or an empty string for unknown tags.
func DefaultABI(typeTag string) string {
	switch typeTag {
	case TypePrizeDistributor:
		return prizeDistributorABI
	case TypeDrawCalculator:
		return drawCalculatorABI
	case TypeDrawBuffer:
		return drawBufferABI
	case TypePrizeDistributionBuffer:
		return prizeDistributionBufferABI
	case TypeTicket:
		return ticketABI
	case TypeDrawCalculatorTimelock:
		return drawCalculatorTimelockABI
	default:
		return ""
	}
}
