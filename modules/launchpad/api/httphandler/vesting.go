package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
)

type createVestingScheduleRequest struct {
	Beneficiary    string    `json:"beneficiary"`
	TotalAmount    string    `json:"totalAmount"`
	StartsAt       time.Time `json:"startsAt"`
	CliffSeconds   int64     `json:"cliffSeconds"`
	VestingSeconds int64     `json:"vestingSeconds"`
	Revocable      bool      `json:"revocable"`
}

func (r createVestingScheduleRequest) Validate() error {
	var errList []error
	if r.Beneficiary == "" {
		errList = append(errList, errors.New("'beneficiary' is required"))
	}
	if _, err := uint128.FromString(r.TotalAmount); err != nil {
		errList = append(errList, errors.New("'totalAmount' is not a valid amount"))
	}
	if r.VestingSeconds <= 0 {
		errList = append(errList, errors.New("'vestingSeconds' must be positive"))
	}
	if r.CliffSeconds < 0 {
		errList = append(errList, errors.New("'cliffSeconds' must not be negative"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type createVestingScheduleResponse = HttpResponse[vestingScheduleResult]

func (h *HttpHandler) CreateVestingSchedule(ctx *fiber.Ctx) error {
	var req createVestingScheduleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	totalAmount, _ := uint128.FromString(req.TotalAmount)

	schedule, err := h.usecase.CreateVestingSchedule(ctx.UserContext(), entity.NewVestingScheduleParams{
		Beneficiary:     req.Beneficiary,
		TotalAmount:     totalAmount,
		StartsAt:        req.StartsAt,
		CliffDuration:   time.Duration(req.CliffSeconds) * time.Second,
		VestingDuration: time.Duration(req.VestingSeconds) * time.Second,
		Revocable:       req.Revocable,
	})
	if err != nil {
		if errors.Is(err, errs.InvalidArgument) {
			return errs.WithPublicMessage(err, "invalid vesting schedule parameters")
		}
		return errors.Wrap(err, "error during CreateVestingSchedule")
	}

	result := vestingScheduleToResult(*schedule, time.Now().UTC())
	return errors.WithStack(ctx.JSON(createVestingScheduleResponse{Result: &result}))
}

type vestingScheduleIDRequest struct {
	ScheduleID int64 `params:"scheduleId"`
}

func (r vestingScheduleIDRequest) Validate() error {
	var errList []error
	if r.ScheduleID <= 0 {
		errList = append(errList, errors.New("'scheduleId' must be a positive integer"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getVestingScheduleResponse = HttpResponse[vestingScheduleResult]

func (h *HttpHandler) GetVestingSchedule(ctx *fiber.Ctx) error {
	var req vestingScheduleIDRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	schedule, err := h.usecase.GetVestingSchedule(ctx.UserContext(), req.ScheduleID)
	if err != nil {
		return errors.Wrap(err, "error during GetVestingSchedule")
	}

	result := vestingScheduleToResult(*schedule, time.Now().UTC())
	return errors.WithStack(ctx.JSON(getVestingScheduleResponse{Result: &result}))
}

type releaseVestedResult struct {
	ScheduleID int64           `json:"scheduleId"`
	Released   uint128.Uint128 `json:"released"`
	JobID      int64           `json:"jobId,omitempty"`
}

type releaseVestedResponse = HttpResponse[releaseVestedResult]

func (h *HttpHandler) ReleaseVested(ctx *fiber.Ctx) error {
	var req vestingScheduleIDRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	release, err := h.usecase.ReleaseVested(ctx.UserContext(), req.ScheduleID, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "error during ReleaseVested")
	}

	result := releaseVestedResult{
		ScheduleID: req.ScheduleID,
		Released:   release.Released,
		JobID:      release.JobID,
	}
	return errors.WithStack(ctx.JSON(releaseVestedResponse{Result: &result}))
}

type revokeVestingResult struct {
	ScheduleID int64           `json:"scheduleId"`
	Unvested   uint128.Uint128 `json:"unvested"`
}

type revokeVestingResponse = HttpResponse[revokeVestingResult]

func (h *HttpHandler) RevokeVesting(ctx *fiber.Ctx) error {
	var req vestingScheduleIDRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	revoke, err := h.usecase.RevokeVesting(ctx.UserContext(), req.ScheduleID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, errs.InvalidArgument) || errors.Is(err, errs.Unsupported) {
			return errs.WithPublicMessage(err, "vesting schedule cannot be revoked")
		}
		return errors.Wrap(err, "error during RevokeVesting")
	}

	result := revokeVestingResult{ScheduleID: req.ScheduleID, Unvested: revoke.Unvested}
	return errors.WithStack(ctx.JSON(revokeVestingResponse{Result: &result}))
}
