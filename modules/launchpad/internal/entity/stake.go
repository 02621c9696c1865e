package entity

import (
	"github.com/gaze-network/uint128"
)

// StakePosition is a wallet's current staked balance, maintained by the
// staking subsystem and read here only to derive tiers.
type StakePosition struct {
	Wallet string
	Staked uint128.Uint128
}

// Tier is an allocation tier derived from staked balance. AllocationLimit
// caps how much a wallet in this tier may contribute to a sale; a zero
// limit means the sale's own per-wallet cap applies unchanged.
type Tier struct {
	Index           int
	Name            string
	MinStake        uint128.Uint128
	AllocationLimit uint128.Uint128
}

// TierForStake returns the highest tier whose MinStake the staked balance
// meets. Tiers must be ordered by ascending MinStake. Returns false if the
// balance meets no tier.
func TierForStake(tiers []Tier, staked uint128.Uint128) (Tier, bool) {
	var (
		matched Tier
		found   bool
	)
	for _, tier := range tiers {
		if staked.Cmp(tier.MinStake) >= 0 {
			matched = tier
			found = true
		}
	}
	return matched, found
}
