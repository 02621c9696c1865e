package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func (r *Repository) GetStakedBalance(ctx context.Context, wallet string) (uint128.Uint128, error) {
	var staked pgtype.Numeric
	err := r.queries.QueryRow(ctx, `
		SELECT staked FROM launchpad_stake_positions WHERE wallet = $1`,
		wallet,
	).Scan(&staked)
	if err != nil {
		// no position means zero stake
		if errors.Is(err, pgx.ErrNoRows) {
			return uint128.Zero, nil
		}
		return uint128.Zero, errors.Wrap(err, "Cannot get staked balance")
	}
	result, err := uint128FromNumeric(staked)
	if err != nil {
		return uint128.Zero, errors.WithStack(err)
	}
	return result, nil
}

func (r *Repository) SetStakedBalance(ctx context.Context, wallet string, staked uint128.Uint128) error {
	amount, err := numericFromUint128(staked)
	if err != nil {
		return errors.Wrap(err, "invalid staked amount")
	}
	_, err = r.queries.Exec(ctx, `
		INSERT INTO launchpad_stake_positions (wallet, staked, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (wallet) DO UPDATE SET staked = EXCLUDED.staked, updated_at = NOW()`,
		wallet, amount,
	)
	if err != nil {
		return errors.Wrap(err, "Cannot set staked balance")
	}
	return nil
}
