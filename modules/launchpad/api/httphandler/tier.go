package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/orbit-network/launchpad-engine/common/errs"
)

type getTierRequest struct {
	Wallet string `params:"wallet"`
}

func (r getTierRequest) Validate() error {
	var errList []error
	if r.Wallet == "" {
		errList = append(errList, errors.New("'wallet' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type tierResult struct {
	Index           int             `json:"index"`
	Name            string          `json:"name"`
	MinStake        uint128.Uint128 `json:"minStake"`
	AllocationLimit uint128.Uint128 `json:"allocationLimit"`
}

type getTierResponse = HttpResponse[tierResult]

func (h *HttpHandler) GetTier(ctx *fiber.Ctx) error {
	var req getTierRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	tier, err := h.usecase.TierOf(ctx.UserContext(), req.Wallet)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.WithPublicMessage(err, "wallet does not meet any tier threshold")
		}
		if errors.Is(err, errs.Unsupported) {
			return errs.WithPublicMessage(err, "tiers are not configured")
		}
		return errors.Wrap(err, "error during TierOf")
	}

	result := tierResult{
		Index:           tier.Index,
		Name:            tier.Name,
		MinStake:        tier.MinStake,
		AllocationLimit: tier.AllocationLimit,
	}
	return errors.WithStack(ctx.JSON(getTierResponse{Result: &result}))
}

type setStakeRequest struct {
	Wallet string `params:"wallet"`
	Staked string `json:"staked"`
}

func (r setStakeRequest) Validate() error {
	var errList []error
	if r.Wallet == "" {
		errList = append(errList, errors.New("'wallet' is required"))
	}
	if _, err := uint128.FromString(r.Staked); err != nil {
		errList = append(errList, errors.New("'staked' is not a valid amount"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type setStakeResult struct {
	Wallet string          `json:"wallet"`
	Staked uint128.Uint128 `json:"staked"`
}

type setStakeResponse = HttpResponse[setStakeResult]

func (h *HttpHandler) SetStake(ctx *fiber.Ctx) error {
	var req setStakeRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	staked, _ := uint128.FromString(req.Staked)

	if err := h.usecase.SetStake(ctx.UserContext(), req.Wallet, staked); err != nil {
		return errors.Wrap(err, "error during SetStake")
	}

	result := setStakeResult{Wallet: req.Wallet, Staked: staked}
	return errors.WithStack(ctx.JSON(setStakeResponse{Result: &result}))
}
