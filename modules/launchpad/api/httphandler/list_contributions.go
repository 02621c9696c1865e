package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/orbit-network/launchpad-engine/common/errs"
)

type listContributionsRequest struct {
	SaleID int64  `params:"saleId"`
	Wallet string `query:"wallet"`
}

func (r listContributionsRequest) Validate() error {
	var errList []error
	if r.SaleID <= 0 {
		errList = append(errList, errors.New("'saleId' must be a positive integer"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type listContributionsResult struct {
	List []contributionResult `json:"list"`
}

type listContributionsResponse = HttpResponse[listContributionsResult]

func (h *HttpHandler) ListContributions(ctx *fiber.Ctx) error {
	var req listContributionsRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	contributions, err := h.usecase.ListContributions(ctx.UserContext(), req.SaleID, req.Wallet)
	if err != nil {
		return errors.Wrap(err, "error during ListContributions")
	}

	list := make([]contributionResult, 0, len(contributions))
	for _, contribution := range contributions {
		list = append(list, contributionToResult(contribution))
	}
	return errors.WithStack(ctx.JSON(listContributionsResponse{Result: &listContributionsResult{List: list}}))
}
