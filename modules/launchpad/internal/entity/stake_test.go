package entity

import (
	"testing"

	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierForStake(t *testing.T) {
	tiers := []Tier{
		{Index: 0, Name: "bronze", MinStake: uint128.From64(100), AllocationLimit: uint128.From64(1_000)},
		{Index: 1, Name: "silver", MinStake: uint128.From64(1_000), AllocationLimit: uint128.From64(10_000)},
		{Index: 2, Name: "gold", MinStake: uint128.From64(10_000), AllocationLimit: uint128.From64(100_000)},
	}

	test := func(staked uint64, expectedName string, expectFound bool) {
		tier, found := TierForStake(tiers, uint128.From64(staked))
		require.Equal(t, expectFound, found, "staked %d", staked)
		if expectFound {
			assert.Equal(t, expectedName, tier.Name, "staked %d", staked)
		}
	}

	test(0, "", false)
	test(99, "", false)
	test(100, "bronze", true)
	test(999, "bronze", true)
	test(1_000, "silver", true)
	test(9_999, "silver", true)
	test(10_000, "gold", true)
	test(1_000_000, "gold", true)

	t.Run("no tiers", func(t *testing.T) {
		_, found := TierForStake(nil, uint128.From64(1_000_000))
		assert.False(t, found)
	})
}
