package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/datagateway"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
	"github.com/orbit-network/launchpad-engine/pkg/logger"
	"github.com/orbit-network/launchpad-engine/pkg/logger/slogx"
	"github.com/orbit-network/launchpad-engine/pkg/reportingclient"
)

// TransitionSale applies the time-driven transition due at the given time,
// if any. It is idempotent: calling it when nothing is due returns the
// current state unchanged.
func (u *Usecase) TransitionSale(ctx context.Context, saleID int64, now time.Time) (entity.SaleState, error) {
	u.saleLocks.Lock(saleID)
	defer u.saleLocks.Unlock(saleID)

	sale, err := u.launchpadDg.GetSale(ctx, saleID)
	if err != nil {
		return "", errors.Wrap(err, "failed to get sale")
	}
	target, due := sale.DueTransition(now)
	if !due {
		return sale.State, nil
	}
	if err := u.transition(ctx, u.launchpadDg, *sale, target, now); err != nil {
		return "", err
	}
	return target, nil
}

// ActivateSale moves a Pending sale to Live.
func (u *Usecase) ActivateSale(ctx context.Context, saleID int64, now time.Time) error {
	return u.adminTransition(ctx, saleID, entity.SaleStateLive, now, entity.SaleStatePending)
}

// PauseSale suspends a Live sale.
func (u *Usecase) PauseSale(ctx context.Context, saleID int64, now time.Time) error {
	return u.adminTransition(ctx, saleID, entity.SaleStatePaused, now, entity.SaleStateLive)
}

// ResumeSale puts a Paused sale back to Live.
func (u *Usecase) ResumeSale(ctx context.Context, saleID int64, now time.Time) error {
	return u.adminTransition(ctx, saleID, entity.SaleStateLive, now, entity.SaleStatePaused)
}

func (u *Usecase) adminTransition(ctx context.Context, saleID int64, target entity.SaleState, now time.Time, allowedFrom ...entity.SaleState) error {
	u.saleLocks.Lock(saleID)
	defer u.saleLocks.Unlock(saleID)

	sale, err := u.launchpadDg.GetSale(ctx, saleID)
	if err != nil {
		return errors.Wrap(err, "failed to get sale")
	}
	for _, from := range allowedFrom {
		if sale.State == from {
			return u.transition(ctx, u.launchpadDg, *sale, target, now)
		}
	}
	return errors.Wrapf(entity.ErrInvalidTransition, "cannot transition sale %d from %s to %s", saleID, sale.State, target)
}

func (u *Usecase) transition(ctx context.Context, dg datagateway.LaunchpadDataGateway, sale entity.Sale, target entity.SaleState, now time.Time) error {
	if !sale.State.CanTransitionTo(target) {
		return errors.Wrapf(entity.ErrInvalidTransition, "cannot transition sale %d from %s to %s", sale.ID, sale.State, target)
	}
	ok, err := dg.UpdateSaleState(ctx, datagateway.UpdateSaleStateParams{
		SaleID:    sale.ID,
		FromState: sale.State,
		ToState:   target,
		UpdatedAt: now,
	})
	if err != nil {
		return errors.Wrap(err, "failed to update sale state")
	}
	if !ok {
		return errors.Wrap(errs.Conflict, "sale state changed concurrently")
	}
	logger.InfoContext(ctx, "sale state transitioned",
		slogx.Int64("saleId", sale.ID),
		slogx.Stringer("from", sale.State),
		slogx.Stringer("to", target),
		slogx.Stringer("raisedTotal", sale.RaisedTotal),
	)
	if u.reporting != nil && target.IsTerminal() {
		if err := u.reporting.SubmitSaleReport(ctx, reportingclient.SubmitSaleReportPayload{
			Type:        "sale_transition",
			SaleID:      sale.ID,
			State:       target.String(),
			RaisedTotal: sale.RaisedTotal.String(),
		}); err != nil {
			logger.WarnContext(ctx, "failed to submit sale report", slogx.Error(err))
		}
	}
	return nil
}

// FinalizeSale closes out a Success sale: it builds the token obligation
// list from accepted contributions, creates the distribution job and moves
// the sale to Finalized, all in one transaction. Returns the created job id.
func (u *Usecase) FinalizeSale(ctx context.Context, saleID int64, now time.Time) (int64, error) {
	u.saleLocks.Lock(saleID)
	defer u.saleLocks.Unlock(saleID)

	qtx, err := u.launchpadDg.BeginLaunchpadTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := qtx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "failed to rollback transaction", slogx.Error(err))
		}
	}()

	sale, err := qtx.GetSale(ctx, saleID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get sale")
	}
	if sale.State != entity.SaleStateSuccess {
		return 0, errors.Wrapf(entity.ErrInvalidTransition, "cannot finalize sale %d in state %s", saleID, sale.State)
	}

	contributions, err := qtx.GetContributionsBySale(ctx, saleID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get contributions")
	}
	obligations, err := tokenObligations(contributions)
	if err != nil {
		return 0, errors.Wrap(err, "failed to build obligations")
	}

	jobID, err := u.createDistributionJob(ctx, qtx, obligations, u.batchSize, now)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create distribution job")
	}

	if err := u.transition(ctx, qtx, *sale, entity.SaleStateFinalized, now); err != nil {
		return 0, err
	}
	if err := qtx.Commit(ctx); err != nil {
		return 0, errors.Wrap(err, "failed to commit transaction")
	}
	return jobID, nil
}

// tokenObligations aggregates accepted contributions into one obligation
// per wallet, in first-contribution order.
func tokenObligations(contributions []entity.Contribution) ([]entity.Transfer, error) {
	totals := make(map[string]uint128.Uint128)
	order := make([]string, 0, len(contributions))
	for _, contribution := range contributions {
		if contribution.Status != entity.ContributionStatusAccepted {
			continue
		}
		total, seen := totals[contribution.Wallet]
		if !seen {
			order = append(order, contribution.Wallet)
		}
		sum, overflow := total.AddOverflow(contribution.TokenAmount)
		if overflow {
			return nil, errors.Wrapf(errs.OverflowUint128, "token obligation overflow for wallet %s", contribution.Wallet)
		}
		totals[contribution.Wallet] = sum
	}
	obligations := make([]entity.Transfer, 0, len(order))
	for _, wallet := range order {
		obligations = append(obligations, entity.Transfer{
			Recipient: wallet,
			Amount:    totals[wallet],
		})
	}
	return obligations, nil
}
