package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/orbit-network/launchpad-engine/common/errs"
)

type contributeRequest struct {
	SaleID int64  `params:"saleId"`
	Wallet string `json:"wallet"`
	Amount string `json:"amount"`
}

func (r contributeRequest) Validate() error {
	var errList []error
	if r.SaleID <= 0 {
		errList = append(errList, errors.New("'saleId' must be a positive integer"))
	}
	if r.Wallet == "" {
		errList = append(errList, errors.New("'wallet' is required"))
	}
	if _, err := uint128.FromString(r.Amount); err != nil {
		errList = append(errList, errors.New("'amount' is not a valid amount"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type contributeResult struct {
	Accepted     bool               `json:"accepted"`
	RejectReason string             `json:"rejectReason,omitempty"`
	Contribution contributionResult `json:"contribution"`
}

type contributeResponse = HttpResponse[contributeResult]

func (h *HttpHandler) Contribute(ctx *fiber.Ctx) error {
	var req contributeRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	amount, _ := uint128.FromString(req.Amount)

	result, err := h.usecase.Contribute(ctx.UserContext(), req.SaleID, req.Wallet, amount, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "error during Contribute")
	}

	resp := contributeResult{
		Accepted:     result.Accepted,
		RejectReason: result.Reason.String(),
		Contribution: contributionToResult(result.Contribution),
	}
	return errors.WithStack(ctx.JSON(contributeResponse{Result: &resp}))
}
