package vesting

// AllocationID identifies one top-level bucket of the token supply.
type AllocationID int

const (
	Treasury AllocationID = iota
	Liquidity
	Team
	Community
	Partners
)

func (a AllocationID) String() string {
	return [...]string{
		"Treasury",
		"Liquidity",
		"Team",
		"Community",
		"Partners",
	}[a]
}

// AllocationOrder is the fixed processing order used by ProcessAll.
var AllocationOrder = [...]AllocationID{Treasury, Liquidity, Team, Community, Partners}

const (
	TokenName     = "Anya Governance Token"
	TokenSymbol   = "AGT"
	TokenDecimals = 8

	// DefaultTotalSupply is 21 billion whole tokens at 8 decimals.
	DefaultTotalSupply uint64 = 21_000_000_000 * 100_000_000

	TreasuryPercentage  uint64 = 35
	LiquidityPercentage uint64 = 25
	TeamPercentage      uint64 = 20
	CommunityPercentage uint64 = 15
	PartnersPercentage  uint64 = 5

	// DefaultTicksPerMonth assumes second-denominated ticks. Hosts that
	// drive the engine with block heights configure their own value.
	DefaultTicksPerMonth uint64 = 30 * 24 * 60 * 60

	// CustodyAccount holds the undistributed supply on the ledger.
	CustodyAccount = "vesting_pool"

	MinMemberPercentage uint64 = 5
	MaxMemberPercentage uint64 = 100
	MaxMilestones              = 10

	allocationKeyPrefix = "allocation_"
	memberKeyPrefix     = "member_"
	memberIndexKey      = "team_members"
	launchStateKey      = "launch_state"
)
