package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/datagateway"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
)

func (r *Repository) CreateSale(ctx context.Context, sale entity.Sale) (int64, error) {
	tokenPrice, err := numericFromUint128(sale.TokenPrice)
	if err != nil {
		return 0, errors.Wrap(err, "invalid token price")
	}
	softCap, err := numericFromUint128(sale.SoftCap)
	if err != nil {
		return 0, errors.Wrap(err, "invalid soft cap")
	}
	hardCap, err := numericFromUint128(sale.HardCap)
	if err != nil {
		return 0, errors.Wrap(err, "invalid hard cap")
	}
	minContribution, err := numericFromUint128(sale.MinContribution)
	if err != nil {
		return 0, errors.Wrap(err, "invalid min contribution")
	}
	maxContribution, err := numericFromUint128(sale.MaxContribution)
	if err != nil {
		return 0, errors.Wrap(err, "invalid max contribution")
	}
	maxPerWallet, err := numericFromUint128(sale.MaxPerWallet)
	if err != nil {
		return 0, errors.Wrap(err, "invalid max per wallet")
	}
	raisedTotal, err := numericFromUint128(sale.RaisedTotal)
	if err != nil {
		return 0, errors.Wrap(err, "invalid raised total")
	}

	var saleID int64
	err = r.queries.QueryRow(ctx, `
		INSERT INTO launchpad_sales (name, token_decimals, token_price, soft_cap, hard_cap, min_contribution, max_contribution, max_per_wallet, starts_at, ends_at, raised_total, state, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		sale.Name, int16(sale.TokenDecimals), tokenPrice, softCap, hardCap, minContribution, maxContribution, maxPerWallet, sale.StartsAt, sale.EndsAt, raisedTotal, sale.State.String(), sale.UpdatedAt,
	).Scan(&saleID)
	if err != nil {
		return 0, errors.Wrap(err, "Cannot insert sale")
	}
	return saleID, nil
}

func (r *Repository) GetSale(ctx context.Context, saleID int64) (*entity.Sale, error) {
	var model saleModel
	err := r.queries.QueryRow(ctx, `
		SELECT id, name, token_decimals, token_price, soft_cap, hard_cap, min_contribution, max_contribution, max_per_wallet, starts_at, ends_at, raised_total, state, updated_at
		FROM launchpad_sales
		WHERE id = $1`,
		saleID,
	).Scan(&model.ID, &model.Name, &model.TokenDecimals, &model.TokenPrice, &model.SoftCap, &model.HardCap, &model.MinContribution, &model.MaxContribution, &model.MaxPerWallet, &model.StartsAt, &model.EndsAt, &model.RaisedTotal, &model.State, &model.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "sale %d not found", saleID)
		}
		return nil, errors.Wrap(err, "Cannot get sale")
	}
	sale, err := mapSaleModelToType(model)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &sale, nil
}

func (r *Repository) UpdateSaleState(ctx context.Context, arg datagateway.UpdateSaleStateParams) (bool, error) {
	tag, err := r.queries.Exec(ctx, `
		UPDATE launchpad_sales
		SET state = $3, updated_at = $4
		WHERE id = $1 AND state = $2`,
		arg.SaleID, arg.FromState.String(), arg.ToState.String(), arg.UpdatedAt,
	)
	if err != nil {
		return false, errors.Wrap(err, "Cannot update sale state")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) UpdateRaisedTotal(ctx context.Context, arg datagateway.UpdateRaisedTotalParams) (bool, error) {
	expectedTotal, err := numericFromUint128(arg.ExpectedTotal)
	if err != nil {
		return false, errors.Wrap(err, "invalid expected total")
	}
	newTotal, err := numericFromUint128(arg.NewTotal)
	if err != nil {
		return false, errors.Wrap(err, "invalid new total")
	}
	tag, err := r.queries.Exec(ctx, `
		UPDATE launchpad_sales
		SET raised_total = $3, updated_at = $4
		WHERE id = $1 AND raised_total = $2`,
		arg.SaleID, expectedTotal, newTotal, arg.UpdatedAt,
	)
	if err != nil {
		return false, errors.Wrap(err, "Cannot update raised total")
	}
	return tag.RowsAffected() > 0, nil
}
