package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
)

type saleActionRequest struct {
	SaleID int64 `params:"saleId"`
}

func (r saleActionRequest) Validate() error {
	var errList []error
	if r.SaleID <= 0 {
		errList = append(errList, errors.New("'saleId' must be a positive integer"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type saleStateResult struct {
	SaleID int64  `json:"saleId"`
	State  string `json:"state"`
}

type saleStateResponse = HttpResponse[saleStateResult]

func (h *HttpHandler) parseSaleAction(ctx *fiber.Ctx) (saleActionRequest, error) {
	var req saleActionRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return saleActionRequest{}, errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return saleActionRequest{}, errors.WithStack(err)
	}
	return req, nil
}

func (h *HttpHandler) saleAction(ctx *fiber.Ctx, action func(saleID int64, now time.Time) error, state entity.SaleState) error {
	req, err := h.parseSaleAction(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := action(req.SaleID, time.Now().UTC()); err != nil {
		if errors.Is(err, entity.ErrInvalidTransition) {
			return errs.WithPublicMessage(err, "invalid sale state transition")
		}
		return errors.Wrap(err, "error during sale state transition")
	}
	result := saleStateResult{SaleID: req.SaleID, State: state.String()}
	return errors.WithStack(ctx.JSON(saleStateResponse{Result: &result}))
}

func (h *HttpHandler) ActivateSale(ctx *fiber.Ctx) error {
	return h.saleAction(ctx, func(saleID int64, now time.Time) error {
		return h.usecase.ActivateSale(ctx.UserContext(), saleID, now)
	}, entity.SaleStateLive)
}

func (h *HttpHandler) PauseSale(ctx *fiber.Ctx) error {
	return h.saleAction(ctx, func(saleID int64, now time.Time) error {
		return h.usecase.PauseSale(ctx.UserContext(), saleID, now)
	}, entity.SaleStatePaused)
}

func (h *HttpHandler) ResumeSale(ctx *fiber.Ctx) error {
	return h.saleAction(ctx, func(saleID int64, now time.Time) error {
		return h.usecase.ResumeSale(ctx.UserContext(), saleID, now)
	}, entity.SaleStateLive)
}

// TransitionSale applies the due time-driven transition, if any.
func (h *HttpHandler) TransitionSale(ctx *fiber.Ctx) error {
	req, err := h.parseSaleAction(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	state, err := h.usecase.TransitionSale(ctx.UserContext(), req.SaleID, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "error during TransitionSale")
	}
	result := saleStateResult{SaleID: req.SaleID, State: state.String()}
	return errors.WithStack(ctx.JSON(saleStateResponse{Result: &result}))
}

type finalizeSaleResult struct {
	SaleID int64  `json:"saleId"`
	State  string `json:"state"`
	JobID  int64  `json:"jobId"`
}

type finalizeSaleResponse = HttpResponse[finalizeSaleResult]

func (h *HttpHandler) FinalizeSale(ctx *fiber.Ctx) error {
	req, err := h.parseSaleAction(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	jobID, err := h.usecase.FinalizeSale(ctx.UserContext(), req.SaleID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, entity.ErrInvalidTransition) {
			return errs.WithPublicMessage(err, "invalid sale state transition")
		}
		return errors.Wrap(err, "error during FinalizeSale")
	}
	result := finalizeSaleResult{
		SaleID: req.SaleID,
		State:  entity.SaleStateFinalized.String(),
		JobID:  jobID,
	}
	return errors.WithStack(ctx.JSON(finalizeSaleResponse{Result: &result}))
}
