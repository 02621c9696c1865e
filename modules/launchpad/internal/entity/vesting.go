package entity

import (
	"math/big"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/orbit-network/launchpad-engine/common/errs"
)

// VestingSchedule is a time-locked grant. ReleasedAmount only grows and
// never exceeds the amount releasable at the current time. Revocation is
// terminal: it freezes accrual at the revocation time but never claws back
// tokens that were already vested.
type VestingSchedule struct {
	ID              int64
	Beneficiary     string
	TotalAmount     uint128.Uint128
	StartsAt        time.Time
	CliffDuration   time.Duration
	VestingDuration time.Duration
	Revocable       bool
	Revoked         bool
	RevokedAt       time.Time
	ReleasedAmount  uint128.Uint128
}

type NewVestingScheduleParams struct {
	Beneficiary     string
	TotalAmount     uint128.Uint128
	StartsAt        time.Time
	CliffDuration   time.Duration
	VestingDuration time.Duration
	Revocable       bool
}

func NewVestingSchedule(params NewVestingScheduleParams) (VestingSchedule, error) {
	if params.Beneficiary == "" {
		return VestingSchedule{}, errors.Wrap(errs.InvalidArgument, "beneficiary is required")
	}
	if params.TotalAmount.IsZero() {
		return VestingSchedule{}, errors.Wrap(errs.InvalidArgument, "total amount must be positive")
	}
	if params.VestingDuration <= 0 {
		return VestingSchedule{}, errors.Wrap(errs.InvalidArgument, "vesting duration must be positive")
	}
	if params.CliffDuration < 0 {
		return VestingSchedule{}, errors.Wrap(errs.InvalidArgument, "cliff duration must not be negative")
	}
	if params.CliffDuration > params.VestingDuration {
		return VestingSchedule{}, errors.Wrap(errs.InvalidArgument, "cliff duration must not exceed vesting duration")
	}
	return VestingSchedule{
		Beneficiary:     params.Beneficiary,
		TotalAmount:     params.TotalAmount,
		StartsAt:        params.StartsAt.UTC(),
		CliffDuration:   params.CliffDuration,
		VestingDuration: params.VestingDuration,
		Revocable:       params.Revocable,
		ReleasedAmount:  uint128.Zero,
	}, nil
}

// Releasable computes the amount vested at the given time. It is a pure
// function of the schedule fields and may be called concurrently.
//
// Zero before the cliff, the full amount after the vesting duration, and
// floor(total * elapsed / vestingDuration) in between. A revoked schedule
// accrues nothing past its revocation time.
func (s VestingSchedule) Releasable(now time.Time) uint128.Uint128 {
	if s.Revoked && s.RevokedAt.Before(now) {
		now = s.RevokedAt
	}
	elapsed := now.Sub(s.StartsAt)
	if elapsed < s.CliffDuration {
		return uint128.Zero
	}
	if elapsed >= s.VestingDuration {
		return s.TotalAmount
	}
	// floor(total * elapsed / vestingDuration), integer arithmetic only
	result := new(big.Int).Mul(s.TotalAmount.Big(), big.NewInt(int64(elapsed)))
	result.Quo(result, big.NewInt(int64(s.VestingDuration)))
	vested, err := uint128.FromBig(result)
	if err != nil {
		// total * elapsed/vestingDuration <= total, cannot overflow
		return s.TotalAmount
	}
	return vested
}

// Claimable returns the amount releasable at the given time that has not
// been released yet.
func (s VestingSchedule) Claimable(now time.Time) uint128.Uint128 {
	releasable := s.Releasable(now)
	if releasable.Cmp(s.ReleasedAmount) <= 0 {
		return uint128.Zero
	}
	return releasable.Sub(s.ReleasedAmount)
}

// Unvested returns the amount not yet vested at the given time. This is
// what returns to the issuer treasury on revocation.
func (s VestingSchedule) Unvested(now time.Time) uint128.Uint128 {
	return s.TotalAmount.Sub(s.Releasable(now))
}
