package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/orbit-network/launchpad-engine/common/errs"
)

type refundRequest struct {
	ContributionID int64 `params:"contributionId"`
}

func (r refundRequest) Validate() error {
	var errList []error
	if r.ContributionID <= 0 {
		errList = append(errList, errors.New("'contributionId' must be a positive integer"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type refundResult struct {
	ContributionID int64  `json:"contributionId"`
	Outcome        string `json:"outcome"`
}

type refundResponse = HttpResponse[refundResult]

func (h *HttpHandler) Refund(ctx *fiber.Ctx) error {
	var req refundRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	outcome, err := h.usecase.Refund(ctx.UserContext(), req.ContributionID)
	if err != nil {
		if errors.Is(err, errs.InvalidArgument) {
			return errs.WithPublicMessage(err, "refund is not available for this contribution")
		}
		return errors.Wrap(err, "error during Refund")
	}

	result := refundResult{ContributionID: req.ContributionID, Outcome: string(outcome)}
	return errors.WithStack(ctx.JSON(refundResponse{Result: &result}))
}
