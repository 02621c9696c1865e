package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/orbit-network/launchpad-engine/common/errs"
)

type exportSaleRequest struct {
	SaleID int64 `params:"saleId"`
}

func (r exportSaleRequest) Validate() error {
	var errList []error
	if r.SaleID <= 0 {
		errList = append(errList, errors.New("'saleId' must be a positive integer"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type exportSaleResult struct {
	SaleID int64  `json:"saleId"`
	Key    string `json:"key"`
}

type exportSaleResponse = HttpResponse[exportSaleResult]

func (h *HttpHandler) ExportSale(ctx *fiber.Ctx) error {
	var req exportSaleRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	if h.exporter == nil {
		return errs.WithPublicMessage(errs.Unsupported, "exporter is disabled")
	}

	key, err := h.exporter.ExportSaleSnapshot(ctx.UserContext(), req.SaleID, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "error during ExportSaleSnapshot")
	}

	result := exportSaleResult{SaleID: req.SaleID, Key: key}
	return errors.WithStack(ctx.JSON(exportSaleResponse{Result: &result}))
}
