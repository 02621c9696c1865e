package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
)

type createSaleRequest struct {
	Name            string    `json:"name"`
	TokenDecimals   uint8     `json:"tokenDecimals"`
	TokenPrice      string    `json:"tokenPrice"`
	SoftCap         string    `json:"softCap"`
	HardCap         string    `json:"hardCap"`
	MinContribution string    `json:"minContribution"`
	MaxContribution string    `json:"maxContribution"`
	MaxPerWallet    string    `json:"maxPerWallet"`
	StartsAt        time.Time `json:"startsAt"`
	EndsAt          time.Time `json:"endsAt"`
}

func (r createSaleRequest) Validate() error {
	var errList []error
	if r.Name == "" {
		errList = append(errList, errors.New("'name' is required"))
	}
	for field, value := range map[string]string{
		"tokenPrice":      r.TokenPrice,
		"softCap":         r.SoftCap,
		"hardCap":         r.HardCap,
		"minContribution": r.MinContribution,
		"maxContribution": r.MaxContribution,
		"maxPerWallet":    r.MaxPerWallet,
	} {
		if _, err := uint128.FromString(value); err != nil {
			errList = append(errList, errors.Errorf("'%s' is not a valid amount", field))
		}
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type createSaleResponse = HttpResponse[saleResult]

func (h *HttpHandler) CreateSale(ctx *fiber.Ctx) error {
	var req createSaleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	params := entity.NewSaleParams{
		Name:          req.Name,
		TokenDecimals: req.TokenDecimals,
		StartsAt:      req.StartsAt,
		EndsAt:        req.EndsAt,
	}
	params.TokenPrice, _ = uint128.FromString(req.TokenPrice)
	params.SoftCap, _ = uint128.FromString(req.SoftCap)
	params.HardCap, _ = uint128.FromString(req.HardCap)
	params.MinContribution, _ = uint128.FromString(req.MinContribution)
	params.MaxContribution, _ = uint128.FromString(req.MaxContribution)
	params.MaxPerWallet, _ = uint128.FromString(req.MaxPerWallet)

	sale, err := h.usecase.CreateSale(ctx.UserContext(), params)
	if err != nil {
		if errors.Is(err, errs.InvalidArgument) {
			return errs.WithPublicMessage(err, "invalid sale parameters")
		}
		return errors.Wrap(err, "error during CreateSale")
	}

	result := saleToResult(*sale)
	return errors.WithStack(ctx.JSON(createSaleResponse{Result: &result}))
}
