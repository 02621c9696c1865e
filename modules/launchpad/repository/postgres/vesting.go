package postgres

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/datagateway"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
)

func (r *Repository) CreateVestingSchedule(ctx context.Context, schedule entity.VestingSchedule) (int64, error) {
	totalAmount, err := numericFromUint128(schedule.TotalAmount)
	if err != nil {
		return 0, errors.Wrap(err, "invalid total amount")
	}
	releasedAmount, err := numericFromUint128(schedule.ReleasedAmount)
	if err != nil {
		return 0, errors.Wrap(err, "invalid released amount")
	}
	var scheduleID int64
	err = r.queries.QueryRow(ctx, `
		INSERT INTO launchpad_vesting_schedules (beneficiary, total_amount, starts_at, cliff_duration, vesting_duration, revocable, revoked, released_amount)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
		RETURNING id`,
		schedule.Beneficiary, totalAmount, schedule.StartsAt, int64(schedule.CliffDuration), int64(schedule.VestingDuration), schedule.Revocable, releasedAmount,
	).Scan(&scheduleID)
	if err != nil {
		return 0, errors.Wrap(err, "Cannot insert vesting schedule")
	}
	return scheduleID, nil
}

func (r *Repository) GetVestingSchedule(ctx context.Context, scheduleID int64) (*entity.VestingSchedule, error) {
	var model vestingScheduleModel
	err := r.queries.QueryRow(ctx, `
		SELECT id, beneficiary, total_amount, starts_at, cliff_duration, vesting_duration, revocable, revoked, revoked_at, released_amount
		FROM launchpad_vesting_schedules
		WHERE id = $1`,
		scheduleID,
	).Scan(&model.ID, &model.Beneficiary, &model.TotalAmount, &model.StartsAt, &model.CliffDuration, &model.VestingDuration, &model.Revocable, &model.Revoked, &model.RevokedAt, &model.ReleasedAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "vesting schedule %d not found", scheduleID)
		}
		return nil, errors.Wrap(err, "Cannot get vesting schedule")
	}
	schedule, err := mapVestingScheduleModelToType(model)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &schedule, nil
}

func (r *Repository) UpdateReleasedAmount(ctx context.Context, arg datagateway.UpdateReleasedAmountParams) (bool, error) {
	expectedReleased, err := numericFromUint128(arg.ExpectedReleased)
	if err != nil {
		return false, errors.Wrap(err, "invalid expected released amount")
	}
	newReleased, err := numericFromUint128(arg.NewReleased)
	if err != nil {
		return false, errors.Wrap(err, "invalid new released amount")
	}
	tag, err := r.queries.Exec(ctx, `
		UPDATE launchpad_vesting_schedules
		SET released_amount = $3
		WHERE id = $1 AND released_amount = $2`,
		arg.ScheduleID, expectedReleased, newReleased,
	)
	if err != nil {
		return false, errors.Wrap(err, "Cannot update released amount")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) MarkVestingRevoked(ctx context.Context, scheduleID int64, revokedAt time.Time) (bool, error) {
	tag, err := r.queries.Exec(ctx, `
		UPDATE launchpad_vesting_schedules
		SET revoked = TRUE, revoked_at = $2
		WHERE id = $1 AND revoked = FALSE`,
		scheduleID, revokedAt,
	)
	if err != nil {
		return false, errors.Wrap(err, "Cannot mark vesting schedule revoked")
	}
	return tag.RowsAffected() > 0, nil
}
