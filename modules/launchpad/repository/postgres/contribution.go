package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
)

func (r *Repository) CreateContribution(ctx context.Context, contribution entity.Contribution) (int64, error) {
	amount, err := numericFromUint128(contribution.Amount)
	if err != nil {
		return 0, errors.Wrap(err, "invalid amount")
	}
	tokenAmount, err := numericFromUint128(contribution.TokenAmount)
	if err != nil {
		return 0, errors.Wrap(err, "invalid token amount")
	}
	var contributionID int64
	err = r.queries.QueryRow(ctx, `
		INSERT INTO launchpad_contributions (sale_id, wallet, amount, token_amount, status, reject_reason, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		contribution.SaleID, contribution.Wallet, amount, tokenAmount, contribution.Status.String(), contribution.RejectReason, contribution.At,
	).Scan(&contributionID)
	if err != nil {
		return 0, errors.Wrap(err, "Cannot insert contribution")
	}
	return contributionID, nil
}

const selectContribution = `
	SELECT id, sale_id, wallet, amount, token_amount, status, reject_reason, at
	FROM launchpad_contributions`

func (r *Repository) GetContribution(ctx context.Context, contributionID int64) (*entity.Contribution, error) {
	var model contributionModel
	err := r.queries.QueryRow(ctx, selectContribution+` WHERE id = $1`, contributionID).
		Scan(&model.ID, &model.SaleID, &model.Wallet, &model.Amount, &model.TokenAmount, &model.Status, &model.RejectReason, &model.At)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "contribution %d not found", contributionID)
		}
		return nil, errors.Wrap(err, "Cannot get contribution")
	}
	contribution, err := mapContributionModelToType(model)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &contribution, nil
}

func (r *Repository) GetContributionsBySale(ctx context.Context, saleID int64) ([]entity.Contribution, error) {
	rows, err := r.queries.Query(ctx, selectContribution+` WHERE sale_id = $1 ORDER BY id`, saleID)
	if err != nil {
		return nil, errors.Wrap(err, "Cannot get contributions")
	}
	defer rows.Close()

	var contributions []entity.Contribution
	for rows.Next() {
		var model contributionModel
		if err := rows.Scan(&model.ID, &model.SaleID, &model.Wallet, &model.Amount, &model.TokenAmount, &model.Status, &model.RejectReason, &model.At); err != nil {
			return nil, errors.Wrap(err, "Cannot scan contribution")
		}
		contribution, err := mapContributionModelToType(model)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		contributions = append(contributions, contribution)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "Cannot iterate contributions")
	}
	return contributions, nil
}

func (r *Repository) GetWalletContributedTotal(ctx context.Context, saleID int64, wallet string) (uint128.Uint128, error) {
	var total pgtype.Numeric
	err := r.queries.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM launchpad_contributions
		WHERE sale_id = $1 AND wallet = $2 AND status = $3`,
		saleID, wallet, entity.ContributionStatusAccepted.String(),
	).Scan(&total)
	if err != nil {
		return uint128.Zero, errors.Wrap(err, "Cannot sum contributions")
	}
	result, err := uint128FromNumeric(total)
	if err != nil {
		return uint128.Zero, errors.WithStack(err)
	}
	return result, nil
}

func (r *Repository) MarkContributionRefunded(ctx context.Context, contributionID int64) (bool, error) {
	tag, err := r.queries.Exec(ctx, `
		UPDATE launchpad_contributions
		SET status = $2
		WHERE id = $1 AND status = $3`,
		contributionID, entity.ContributionStatusRefunded.String(), entity.ContributionStatusAccepted.String(),
	)
	if err != nil {
		return false, errors.Wrap(err, "Cannot mark contribution refunded")
	}
	return tag.RowsAffected() > 0, nil
}
