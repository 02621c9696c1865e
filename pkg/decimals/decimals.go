package decimals

import (
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/shopspring/decimal"
)

const DefaultDivPrecision = 36

func init() {
	decimal.DivisionPrecision = DefaultDivPrecision
}

// PowerOfTen returns 10^n as a big.Int.
func PowerOfTen(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// ToDecimal converts a base-unit amount to a human-readable decimal,
// shifting the point left by the given number of decimals.
func ToDecimal(amount uint128.Uint128, decimalsCount uint8) decimal.Decimal {
	return decimal.NewFromBigInt(amount.Big(), -int32(decimalsCount))
}

// FromDecimal converts a human-readable decimal to a base-unit amount,
// truncating any precision beyond the given number of decimals.
// Returns errs.OverflowUint128 if the result does not fit in 128 bits.
func FromDecimal(value decimal.Decimal, decimalsCount uint8) (uint128.Uint128, error) {
	shifted := value.Shift(int32(decimalsCount)).Truncate(0)
	if shifted.Sign() < 0 {
		return uint128.Zero, errors.Wrap(errs.InvalidArgument, "amount must not be negative")
	}
	return FromBigInt(shifted.BigInt())
}

// FromString parses a decimal string into a base-unit amount.
func FromString(s string, decimalsCount uint8) (uint128.Uint128, error) {
	value, err := decimal.NewFromString(s)
	if err != nil {
		return uint128.Zero, errors.Wrapf(errs.InvalidArgument, "invalid decimal string %q", s)
	}
	return FromDecimal(value, decimalsCount)
}

// FromBigInt converts a non-negative big.Int to uint128.
// Returns errs.OverflowUint128 if the value does not fit in 128 bits.
func FromBigInt(value *big.Int) (uint128.Uint128, error) {
	if value.Sign() < 0 {
		return uint128.Zero, errors.Wrap(errs.InvalidArgument, "value must not be negative")
	}
	result, err := uint128.FromBig(value)
	if err != nil {
		return uint128.Zero, errors.WithStack(errs.OverflowUint128)
	}
	return result, nil
}
