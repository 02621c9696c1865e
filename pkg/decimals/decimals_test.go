package decimals

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDecimal(t *testing.T) {
	test := func(amount uint64, decimalsCount uint8, expected string) {
		t.Run(expected, func(t *testing.T) {
			actual := ToDecimal(uint128.From64(amount), decimalsCount)
			assert.Equal(t, expected, actual.String())
		})
	}

	test(1_500_000, 6, "1.5")
	test(1, 18, "0.000000000000000001")
	test(42, 0, "42")
	test(0, 6, "0")
}

func TestFromString(t *testing.T) {
	test := func(s string, decimalsCount uint8, expected uint64) {
		t.Run(s, func(t *testing.T) {
			actual, err := FromString(s, decimalsCount)
			require.NoError(t, err)
			assert.Equal(t, uint128.From64(expected), actual)
		})
	}

	test("1.5", 6, 1_500_000)
	test("0.000000000000000001", 18, 1)
	test("42", 0, 42)
	// precision beyond the decimals is truncated
	test("1.9999999", 6, 1_999_999)

	t.Run("invalid string", func(t *testing.T) {
		_, err := FromString("not-a-number", 6)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.InvalidArgument))
	})

	t.Run("negative", func(t *testing.T) {
		_, err := FromString("-1", 6)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.InvalidArgument))
	})
}

func TestRoundTrip(t *testing.T) {
	amount := uint128.From64(123_456_789)
	value := ToDecimal(amount, 8)
	back, err := FromDecimal(value, 8)
	require.NoError(t, err)
	assert.Equal(t, amount, back)
}

func TestFromDecimalOverflow(t *testing.T) {
	value := ToDecimal(uint128.Max, 0)
	_, err := FromDecimal(value.Add(decimal.NewFromInt(1)), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.OverflowUint128))
}
