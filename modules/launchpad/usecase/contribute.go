package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/datagateway"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
	contributionvalidator "github.com/orbit-network/launchpad-engine/modules/launchpad/internal/validator/contribution"
	"github.com/orbit-network/launchpad-engine/pkg/logger"
	"github.com/orbit-network/launchpad-engine/pkg/logger/slogx"
)

type ContributionResult struct {
	Contribution entity.Contribution
	Accepted     bool
	Reason       contributionvalidator.RejectReason
}

// Contribute admits or rejects a contribution attempt and atomically updates
// the sale's raised total. Rejected attempts are recorded as audit events
// with their reason. Attempts against the same sale are serialized.
func (u *Usecase) Contribute(ctx context.Context, saleID int64, wallet string, amount uint128.Uint128, now time.Time) (*ContributionResult, error) {
	if wallet == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "wallet is required")
	}

	kycApproved, err := u.kycOracle.IsApproved(ctx, wallet)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check kyc status")
	}

	u.saleLocks.Lock(saleID)
	defer u.saleLocks.Unlock(saleID)

	qtx, err := u.launchpadDg.BeginLaunchpadTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := qtx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "failed to rollback transaction", slogx.Error(err))
		}
	}()

	sale, err := qtx.GetSale(ctx, saleID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sale")
	}

	walletTotal, err := qtx.GetWalletContributedTotal(ctx, saleID, wallet)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get wallet contributed total")
	}

	walletCap, err := u.effectiveWalletCap(ctx, qtx, *sale, wallet)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve wallet cap")
	}

	validator := contributionvalidator.New()
	validator.KycApproved(kycApproved)
	validator.SaleActive(*sale, now)
	validator.AmountWithinRange(*sale, amount)
	validator.WalletCapNotExceeded(walletCap, walletTotal, amount)
	validator.HardCapNotExceeded(*sale, amount)

	contribution := entity.Contribution{
		SaleID: saleID,
		Wallet: wallet,
		Amount: amount,
		At:     now,
	}

	if !validator.Valid {
		contribution.Status = entity.ContributionStatusRejected
		contribution.RejectReason = validator.Reason.String()
		contributionID, err := qtx.CreateContribution(ctx, contribution)
		if err != nil {
			return nil, errors.Wrap(err, "failed to record rejected contribution")
		}
		if err := qtx.Commit(ctx); err != nil {
			return nil, errors.Wrap(err, "failed to commit transaction")
		}
		contribution.ID = contributionID
		logger.DebugContext(ctx, "contribution rejected",
			slogx.Int64("saleId", saleID),
			slogx.String("wallet", wallet),
			slogx.Stringer("reason", validator.Reason),
		)
		return &ContributionResult{Contribution: contribution, Reason: validator.Reason}, nil
	}

	tokenAmount, err := sale.TokenAmountFor(amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute token amount")
	}

	newTotal, overflow := sale.RaisedTotal.AddOverflow(amount)
	if overflow {
		return nil, errors.Wrap(errs.OverflowUint128, "raised total overflow")
	}
	ok, err := qtx.UpdateRaisedTotal(ctx, datagateway.UpdateRaisedTotalParams{
		SaleID:        saleID,
		ExpectedTotal: sale.RaisedTotal,
		NewTotal:      newTotal,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update raised total")
	}
	if !ok {
		return nil, errors.Wrap(errs.Conflict, "sale raised total changed concurrently")
	}

	contribution.Status = entity.ContributionStatusAccepted
	contribution.TokenAmount = tokenAmount
	contributionID, err := qtx.CreateContribution(ctx, contribution)
	if err != nil {
		return nil, errors.Wrap(err, "failed to record contribution")
	}
	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	contribution.ID = contributionID

	logger.InfoContext(ctx, "contribution accepted",
		slogx.Int64("saleId", saleID),
		slogx.String("wallet", wallet),
		slogx.Stringer("amount", amount),
		slogx.Stringer("tokenAmount", tokenAmount),
		slogx.Stringer("raisedTotal", newTotal),
	)
	return &ContributionResult{Contribution: contribution, Accepted: true}, nil
}
