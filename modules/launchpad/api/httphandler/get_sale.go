package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/orbit-network/launchpad-engine/common/errs"
)

type getSaleRequest struct {
	SaleID int64 `params:"saleId"`
}

func (r getSaleRequest) Validate() error {
	var errList []error
	if r.SaleID <= 0 {
		errList = append(errList, errors.New("'saleId' must be a positive integer"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getSaleResponse = HttpResponse[saleResult]

func (h *HttpHandler) GetSale(ctx *fiber.Ctx) error {
	var req getSaleRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	sale, err := h.usecase.GetSale(ctx.UserContext(), req.SaleID)
	if err != nil {
		return errors.Wrap(err, "error during GetSale")
	}

	result := saleToResult(*sale)
	return errors.WithStack(ctx.JSON(getSaleResponse{Result: &result}))
}
