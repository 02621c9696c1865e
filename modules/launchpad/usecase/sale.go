package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
)

func (u *Usecase) CreateSale(ctx context.Context, params entity.NewSaleParams) (*entity.Sale, error) {
	sale, err := entity.NewSale(params)
	if err != nil {
		return nil, errors.Wrap(err, "invalid sale parameters")
	}
	saleID, err := u.launchpadDg.CreateSale(ctx, sale)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create sale")
	}
	sale.ID = saleID
	return &sale, nil
}

func (u *Usecase) GetSale(ctx context.Context, saleID int64) (*entity.Sale, error) {
	sale, err := u.launchpadDg.GetSale(ctx, saleID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sale")
	}
	return sale, nil
}

func (u *Usecase) ListContributions(ctx context.Context, saleID int64, wallet string) ([]entity.Contribution, error) {
	contributions, err := u.launchpadDg.GetContributionsBySale(ctx, saleID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list contributions")
	}
	if wallet == "" {
		return contributions, nil
	}
	filtered := make([]entity.Contribution, 0, len(contributions))
	for _, contribution := range contributions {
		if contribution.Wallet == wallet {
			filtered = append(filtered, contribution)
		}
	}
	return filtered, nil
}
