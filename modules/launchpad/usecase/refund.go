package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
	"github.com/orbit-network/launchpad-engine/pkg/logger"
	"github.com/orbit-network/launchpad-engine/pkg/logger/slogx"
)

type RefundOutcome string

const (
	RefundOutcomeRefunded        RefundOutcome = "Refunded"
	RefundOutcomeAlreadyRefunded RefundOutcome = "AlreadyRefunded"
)

// Refund marks an accepted contribution to a Failed sale as refunded.
// Idempotent: refunding twice reports AlreadyRefunded without error.
func (u *Usecase) Refund(ctx context.Context, contributionID int64) (RefundOutcome, error) {
	contribution, err := u.launchpadDg.GetContribution(ctx, contributionID)
	if err != nil {
		return "", errors.Wrap(err, "failed to get contribution")
	}

	u.saleLocks.Lock(contribution.SaleID)
	defer u.saleLocks.Unlock(contribution.SaleID)

	switch contribution.Status {
	case entity.ContributionStatusRefunded:
		return RefundOutcomeAlreadyRefunded, nil
	case entity.ContributionStatusAccepted:
	default:
		return "", errors.Wrapf(errs.InvalidArgument, "contribution %d was not accepted", contributionID)
	}

	sale, err := u.launchpadDg.GetSale(ctx, contribution.SaleID)
	if err != nil {
		return "", errors.Wrap(err, "failed to get sale")
	}
	if sale.State != entity.SaleStateFailed {
		return "", errors.Wrapf(errs.InvalidArgument, "sale %d is not failed, refunds are unavailable", sale.ID)
	}

	ok, err := u.launchpadDg.MarkContributionRefunded(ctx, contributionID)
	if err != nil {
		return "", errors.Wrap(err, "failed to mark contribution refunded")
	}
	if !ok {
		return RefundOutcomeAlreadyRefunded, nil
	}

	logger.InfoContext(ctx, "contribution refunded",
		slogx.Int64("contributionId", contributionID),
		slogx.Int64("saleId", contribution.SaleID),
		slogx.String("wallet", contribution.Wallet),
		slogx.Stringer("amount", contribution.Amount),
	)
	return RefundOutcomeRefunded, nil
}
