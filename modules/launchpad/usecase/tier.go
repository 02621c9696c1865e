package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/datagateway"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
)

// TierOf resolves the wallet's tier from its staked balance against the
// configured thresholds.
func (u *Usecase) TierOf(ctx context.Context, wallet string) (*entity.Tier, error) {
	if len(u.tiers) == 0 {
		return nil, errors.Wrap(errs.Unsupported, "no tiers configured")
	}
	staked, err := u.launchpadDg.GetStakedBalance(ctx, wallet)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get staked balance")
	}
	tier, ok := entity.TierForStake(u.tiers, staked)
	if !ok {
		return nil, errors.Wrapf(errs.NotFound, "wallet %s does not meet any tier threshold", wallet)
	}
	return &tier, nil
}

// SetStake records a wallet's staked balance. Stake tracking is fed by an
// external position feed, so this is a plain upsert.
func (u *Usecase) SetStake(ctx context.Context, wallet string, staked uint128.Uint128) error {
	if wallet == "" {
		return errors.Wrap(errs.InvalidArgument, "wallet is required")
	}
	if err := u.launchpadDg.SetStakedBalance(ctx, wallet, staked); err != nil {
		return errors.Wrap(err, "failed to set staked balance")
	}
	return nil
}

// effectiveWalletCap narrows the sale's per-wallet cap by the wallet's tier
// allocation limit. Wallets below every tier threshold, or sales run without
// configured tiers, keep the sale's own cap.
func (u *Usecase) effectiveWalletCap(ctx context.Context, dg datagateway.LaunchpadDataGateway, sale entity.Sale, wallet string) (uint128.Uint128, error) {
	if len(u.tiers) == 0 {
		return sale.MaxPerWallet, nil
	}
	staked, err := dg.GetStakedBalance(ctx, wallet)
	if err != nil {
		return uint128.Zero, errors.Wrap(err, "failed to get staked balance")
	}
	tier, ok := entity.TierForStake(u.tiers, staked)
	if !ok {
		return sale.MaxPerWallet, nil
	}
	if tier.AllocationLimit.Cmp(sale.MaxPerWallet) < 0 {
		return tier.AllocationLimit, nil
	}
	return sale.MaxPerWallet, nil
}
