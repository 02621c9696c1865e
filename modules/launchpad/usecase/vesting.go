package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/datagateway"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
	"github.com/orbit-network/launchpad-engine/pkg/logger"
	"github.com/orbit-network/launchpad-engine/pkg/logger/slogx"
)

func (u *Usecase) CreateVestingSchedule(ctx context.Context, params entity.NewVestingScheduleParams) (*entity.VestingSchedule, error) {
	schedule, err := entity.NewVestingSchedule(params)
	if err != nil {
		return nil, errors.Wrap(err, "invalid vesting schedule parameters")
	}
	scheduleID, err := u.launchpadDg.CreateVestingSchedule(ctx, schedule)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create vesting schedule")
	}
	schedule.ID = scheduleID
	return &schedule, nil
}

func (u *Usecase) GetVestingSchedule(ctx context.Context, scheduleID int64) (*entity.VestingSchedule, error) {
	schedule, err := u.launchpadDg.GetVestingSchedule(ctx, scheduleID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get vesting schedule")
	}
	return schedule, nil
}

type ReleaseResult struct {
	Released uint128.Uint128
	// JobID is the distribution job disbursing the released amount. Zero
	// when nothing was claimable.
	JobID int64
}

// ReleaseVested moves the schedule's claimable amount into a distribution
// job for the beneficiary. Releasing with nothing claimable is a no-op.
func (u *Usecase) ReleaseVested(ctx context.Context, scheduleID int64, now time.Time) (*ReleaseResult, error) {
	u.scheduleLocks.Lock(scheduleID)
	defer u.scheduleLocks.Unlock(scheduleID)

	qtx, err := u.launchpadDg.BeginLaunchpadTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := qtx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "failed to rollback transaction", slogx.Error(err))
		}
	}()

	schedule, err := qtx.GetVestingSchedule(ctx, scheduleID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get vesting schedule")
	}

	claimable := schedule.Claimable(now)
	if claimable.IsZero() {
		return &ReleaseResult{Released: uint128.Zero}, nil
	}

	newReleased, overflow := schedule.ReleasedAmount.AddOverflow(claimable)
	if overflow {
		return nil, errors.Wrap(errs.OverflowUint128, "released amount overflow")
	}
	ok, err := qtx.UpdateReleasedAmount(ctx, datagateway.UpdateReleasedAmountParams{
		ScheduleID:       scheduleID,
		ExpectedReleased: schedule.ReleasedAmount,
		NewReleased:      newReleased,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update released amount")
	}
	if !ok {
		return nil, errors.Wrap(errs.Conflict, "released amount changed concurrently")
	}

	obligations := []entity.Transfer{{Recipient: schedule.Beneficiary, Amount: claimable}}
	jobID, err := u.createDistributionJob(ctx, qtx, obligations, u.batchSize, now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create distribution job")
	}
	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}

	logger.InfoContext(ctx, "vested tokens released",
		slogx.Int64("scheduleId", scheduleID),
		slogx.String("beneficiary", schedule.Beneficiary),
		slogx.Stringer("released", claimable),
		slogx.Int64("jobId", jobID),
	)
	return &ReleaseResult{Released: claimable, JobID: jobID}, nil
}

type RevokeResult struct {
	// Unvested is the remainder returned to the treasury.
	Unvested uint128.Uint128
}

// RevokeVesting stops accrual at the revocation time. Vested-but-unclaimed
// tokens stay claimable by the beneficiary; only the unvested remainder is
// returned. Terminal: a revoked schedule cannot be revoked again.
func (u *Usecase) RevokeVesting(ctx context.Context, scheduleID int64, now time.Time) (*RevokeResult, error) {
	u.scheduleLocks.Lock(scheduleID)
	defer u.scheduleLocks.Unlock(scheduleID)

	schedule, err := u.launchpadDg.GetVestingSchedule(ctx, scheduleID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get vesting schedule")
	}
	if !schedule.Revocable {
		return nil, errors.Wrapf(errs.Unsupported, "vesting schedule %d is not revocable", scheduleID)
	}
	if schedule.Revoked {
		return nil, errors.Wrapf(errs.InvalidArgument, "vesting schedule %d is already revoked", scheduleID)
	}

	unvested := schedule.Unvested(now)
	ok, err := u.launchpadDg.MarkVestingRevoked(ctx, scheduleID, now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to mark vesting schedule revoked")
	}
	if !ok {
		return nil, errors.Wrapf(errs.InvalidArgument, "vesting schedule %d is already revoked", scheduleID)
	}

	logger.InfoContext(ctx, "vesting schedule revoked",
		slogx.Int64("scheduleId", scheduleID),
		slogx.String("beneficiary", schedule.Beneficiary),
		slogx.Stringer("unvested", unvested),
	)
	return &RevokeResult{Unvested: unvested}, nil
}
