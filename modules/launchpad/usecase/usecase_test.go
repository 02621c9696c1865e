package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
	contributionvalidator "github.com/orbit-network/launchpad-engine/modules/launchpad/internal/validator/contribution"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/kyc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ether = 1_000_000_000_000_000_000

func newTestUsecase(dg *memGateway, tiers []entity.Tier, approved ...string) *Usecase {
	return New(dg, kyc.NewStaticOracle(approved), tiers, 100)
}

func newLiveSale(t *testing.T, u *Usecase) *entity.Sale {
	t.Helper()
	ctx := context.Background()
	sale, err := u.CreateSale(ctx, entity.NewSaleParams{
		Name:            "test-sale",
		TokenDecimals:   18,
		TokenPrice:      uint128.From64(ether), // 1:1
		SoftCap:         uint128.From64(1 * ether),
		HardCap:         uint128.From64(10 * ether),
		MinContribution: uint128.From64(ether / 100),
		MaxContribution: uint128.From64(5 * ether),
		MaxPerWallet:    uint128.From64(5 * ether),
		StartsAt:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:          time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, u.ActivateSale(ctx, sale.ID, sale.StartsAt))
	sale.State = entity.SaleStateLive
	return sale
}

func TestContribute(t *testing.T) {
	ctx := context.Background()
	dg := newMemGateway()
	u := newTestUsecase(dg, nil, "wallet-w", "wallet-x")
	sale := newLiveSale(t, u)
	now := sale.StartsAt.Add(time.Hour)

	t.Run("amount below minimum is rejected", func(t *testing.T) {
		result, err := u.Contribute(ctx, sale.ID, "wallet-w", uint128.From64(ether/200), now)
		require.NoError(t, err)
		assert.False(t, result.Accepted)
		assert.Equal(t, contributionvalidator.ReasonAmountOutOfRange, result.Reason)
		assert.Equal(t, entity.ContributionStatusRejected, result.Contribution.Status)
	})

	t.Run("max contribution is accepted", func(t *testing.T) {
		result, err := u.Contribute(ctx, sale.ID, "wallet-w", uint128.From64(5*ether), now)
		require.NoError(t, err)
		assert.True(t, result.Accepted)
		assert.Equal(t, uint128.From64(5*ether), result.Contribution.TokenAmount)

		updated, err := u.GetSale(ctx, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, uint128.From64(5*ether), updated.RaisedTotal)
	})

	t.Run("wallet cap blocks a second contribution", func(t *testing.T) {
		result, err := u.Contribute(ctx, sale.ID, "wallet-w", uint128.From64(ether/10), now)
		require.NoError(t, err)
		assert.False(t, result.Accepted)
		assert.Equal(t, contributionvalidator.ReasonWalletCapExceeded, result.Reason)

		// raised total unchanged by the rejection
		updated, err := u.GetSale(ctx, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, uint128.From64(5*ether), updated.RaisedTotal)
	})

	t.Run("unknown wallet fails kyc", func(t *testing.T) {
		result, err := u.Contribute(ctx, sale.ID, "wallet-unknown", uint128.From64(ether), now)
		require.NoError(t, err)
		assert.False(t, result.Accepted)
		assert.Equal(t, contributionvalidator.ReasonKycRequired, result.Reason)
	})

	t.Run("rejections are recorded in the ledger", func(t *testing.T) {
		contributions, err := u.ListContributions(ctx, sale.ID, "wallet-w")
		require.NoError(t, err)
		require.Len(t, contributions, 3)
		assert.Equal(t, entity.ContributionStatusRejected, contributions[0].Status)
		assert.Equal(t, entity.ContributionStatusAccepted, contributions[1].Status)
		assert.Equal(t, entity.ContributionStatusRejected, contributions[2].Status)
	})

	t.Run("empty wallet", func(t *testing.T) {
		_, err := u.Contribute(ctx, sale.ID, "", uint128.From64(ether), now)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.InvalidArgument))
	})
}

func TestContributeConcurrentCapSafety(t *testing.T) {
	ctx := context.Background()
	dg := newMemGateway()
	wallets := make([]string, 20)
	for i := range wallets {
		wallets[i] = "wallet-" + string(rune('a'+i))
	}
	u := newTestUsecase(dg, nil, wallets...)
	sale := newLiveSale(t, u)
	now := sale.StartsAt.Add(time.Hour)

	var wg sync.WaitGroup
	results := make([]*ContributionResult, len(wallets))
	for i, wallet := range wallets {
		wg.Add(1)
		go func(i int, wallet string) {
			defer wg.Done()
			result, err := u.Contribute(ctx, sale.ID, wallet, uint128.From64(ether), now)
			assert.NoError(t, err)
			results[i] = result
		}(i, wallet)
	}
	wg.Wait()
	require.False(t, t.Failed())

	accepted := 0
	for _, result := range results {
		if result.Accepted {
			accepted++
		} else {
			assert.Equal(t, contributionvalidator.ReasonHardCapExceeded, result.Reason)
		}
	}
	assert.Equal(t, 10, accepted)

	updated, err := u.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.HardCap, updated.RaisedTotal)
}

func TestContributeTierCap(t *testing.T) {
	ctx := context.Background()
	dg := newMemGateway()
	tiers := []entity.Tier{
		{Index: 0, Name: "bronze", MinStake: uint128.From64(100), AllocationLimit: uint128.From64(2 * ether)},
		{Index: 1, Name: "silver", MinStake: uint128.From64(1000), AllocationLimit: uint128.From64(ether).Mul64(20)},
	}
	u := newTestUsecase(dg, tiers, "wallet-bronze", "wallet-silver", "wallet-unstaked")
	sale := newLiveSale(t, u)
	now := sale.StartsAt.Add(time.Hour)

	require.NoError(t, u.SetStake(ctx, "wallet-bronze", uint128.From64(100)))
	require.NoError(t, u.SetStake(ctx, "wallet-silver", uint128.From64(1000)))

	t.Run("tier limit narrows the wallet cap", func(t *testing.T) {
		result, err := u.Contribute(ctx, sale.ID, "wallet-bronze", uint128.From64(3*ether), now)
		require.NoError(t, err)
		assert.False(t, result.Accepted)
		assert.Equal(t, contributionvalidator.ReasonWalletCapExceeded, result.Reason)
	})

	t.Run("tier limit above the sale cap has no effect", func(t *testing.T) {
		result, err := u.Contribute(ctx, sale.ID, "wallet-silver", uint128.From64(5*ether), now)
		require.NoError(t, err)
		assert.True(t, result.Accepted)
	})

	t.Run("unstaked wallet keeps the sale cap", func(t *testing.T) {
		result, err := u.Contribute(ctx, sale.ID, "wallet-unstaked", uint128.From64(3*ether), now)
		require.NoError(t, err)
		assert.True(t, result.Accepted)
	})
}

func TestTierOf(t *testing.T) {
	ctx := context.Background()
	dg := newMemGateway()
	tiers := []entity.Tier{
		{Index: 0, Name: "bronze", MinStake: uint128.From64(100), AllocationLimit: uint128.From64(1000)},
	}

	t.Run("no tiers configured", func(t *testing.T) {
		u := newTestUsecase(dg, nil)
		_, err := u.TierOf(ctx, "wallet-w")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.Unsupported))
	})

	t.Run("below every threshold", func(t *testing.T) {
		u := newTestUsecase(dg, tiers)
		_, err := u.TierOf(ctx, "wallet-w")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.NotFound))
	})

	t.Run("matches a tier", func(t *testing.T) {
		u := newTestUsecase(dg, tiers)
		require.NoError(t, u.SetStake(ctx, "wallet-w", uint128.From64(150)))
		tier, err := u.TierOf(ctx, "wallet-w")
		require.NoError(t, err)
		assert.Equal(t, "bronze", tier.Name)
	})
}

func TestTransitionSale(t *testing.T) {
	ctx := context.Background()

	t.Run("success when soft cap met", func(t *testing.T) {
		dg := newMemGateway()
		u := newTestUsecase(dg, nil, "wallet-w")
		sale := newLiveSale(t, u)
		now := sale.StartsAt.Add(time.Hour)
		_, err := u.Contribute(ctx, sale.ID, "wallet-w", uint128.From64(2*ether), now)
		require.NoError(t, err)

		state, err := u.TransitionSale(ctx, sale.ID, sale.EndsAt.Add(time.Second))
		require.NoError(t, err)
		assert.Equal(t, entity.SaleStateSuccess, state)

		// idempotent: nothing further is due
		state, err = u.TransitionSale(ctx, sale.ID, sale.EndsAt.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, entity.SaleStateSuccess, state)
	})

	t.Run("failed when soft cap missed", func(t *testing.T) {
		dg := newMemGateway()
		u := newTestUsecase(dg, nil)
		sale := newLiveSale(t, u)

		state, err := u.TransitionSale(ctx, sale.ID, sale.EndsAt.Add(time.Second))
		require.NoError(t, err)
		assert.Equal(t, entity.SaleStateFailed, state)
	})

	t.Run("nothing due before end", func(t *testing.T) {
		dg := newMemGateway()
		u := newTestUsecase(dg, nil)
		sale := newLiveSale(t, u)

		state, err := u.TransitionSale(ctx, sale.ID, sale.EndsAt)
		require.NoError(t, err)
		assert.Equal(t, entity.SaleStateLive, state)
	})

	t.Run("pause and resume", func(t *testing.T) {
		dg := newMemGateway()
		u := newTestUsecase(dg, nil)
		sale := newLiveSale(t, u)
		now := sale.StartsAt.Add(time.Hour)

		require.NoError(t, u.PauseSale(ctx, sale.ID, now))
		err := u.PauseSale(ctx, sale.ID, now)
		require.Error(t, err)
		assert.True(t, errors.Is(err, entity.ErrInvalidTransition))
		require.NoError(t, u.ResumeSale(ctx, sale.ID, now))
	})

	t.Run("activate only from pending", func(t *testing.T) {
		dg := newMemGateway()
		u := newTestUsecase(dg, nil)
		sale := newLiveSale(t, u)
		err := u.ActivateSale(ctx, sale.ID, sale.StartsAt)
		require.Error(t, err)
		assert.True(t, errors.Is(err, entity.ErrInvalidTransition))
	})
}

func TestFinalizeSale(t *testing.T) {
	ctx := context.Background()
	dg := newMemGateway()
	u := newTestUsecase(dg, nil, "wallet-a", "wallet-b")
	sale := newLiveSale(t, u)
	now := sale.StartsAt.Add(time.Hour)

	for _, c := range []struct {
		wallet string
		amount uint64
	}{
		{"wallet-a", 2 * ether},
		{"wallet-b", 3 * ether},
		{"wallet-a", 1 * ether},
	} {
		result, err := u.Contribute(ctx, sale.ID, c.wallet, uint128.From64(c.amount), now)
		require.NoError(t, err)
		require.True(t, result.Accepted)
	}

	t.Run("only a success sale can be finalized", func(t *testing.T) {
		_, err := u.FinalizeSale(ctx, sale.ID, now)
		require.Error(t, err)
		assert.True(t, errors.Is(err, entity.ErrInvalidTransition))
	})

	_, err := u.TransitionSale(ctx, sale.ID, sale.EndsAt.Add(time.Second))
	require.NoError(t, err)

	jobID, err := u.FinalizeSale(ctx, sale.ID, sale.EndsAt.Add(time.Minute))
	require.NoError(t, err)

	t.Run("sale is finalized", func(t *testing.T) {
		updated, err := u.GetSale(ctx, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.SaleStateFinalized, updated.State)
	})

	t.Run("obligations are aggregated per wallet", func(t *testing.T) {
		status, err := u.JobStatus(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, uint128.From64(6*ether), status.Job.TotalAmount)
		require.Len(t, status.Batches, 1)
		require.Len(t, status.Batches[0].Transfers, 2)
		assert.Equal(t, entity.Transfer{Recipient: "wallet-a", Amount: uint128.From64(3 * ether)}, status.Batches[0].Transfers[0])
		assert.Equal(t, entity.Transfer{Recipient: "wallet-b", Amount: uint128.From64(3 * ether)}, status.Batches[0].Transfers[1])
	})

	t.Run("cannot finalize twice", func(t *testing.T) {
		_, err := u.FinalizeSale(ctx, sale.ID, now)
		require.Error(t, err)
		assert.True(t, errors.Is(err, entity.ErrInvalidTransition))
	})
}

func TestRefund(t *testing.T) {
	ctx := context.Background()
	dg := newMemGateway()
	u := newTestUsecase(dg, nil, "wallet-w")
	sale := newLiveSale(t, u)
	now := sale.StartsAt.Add(time.Hour)

	accepted, err := u.Contribute(ctx, sale.ID, "wallet-w", uint128.From64(ether/2), now)
	require.NoError(t, err)
	require.True(t, accepted.Accepted)
	rejected, err := u.Contribute(ctx, sale.ID, "wallet-w", uint128.From64(ether/1000), now)
	require.NoError(t, err)
	require.False(t, rejected.Accepted)

	t.Run("unavailable while the sale is not failed", func(t *testing.T) {
		_, err := u.Refund(ctx, accepted.Contribution.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.InvalidArgument))
	})

	// sale misses its soft cap
	_, err = u.TransitionSale(ctx, sale.ID, sale.EndsAt.Add(time.Second))
	require.NoError(t, err)

	t.Run("refunds an accepted contribution once", func(t *testing.T) {
		outcome, err := u.Refund(ctx, accepted.Contribution.ID)
		require.NoError(t, err)
		assert.Equal(t, RefundOutcomeRefunded, outcome)

		outcome, err = u.Refund(ctx, accepted.Contribution.ID)
		require.NoError(t, err)
		assert.Equal(t, RefundOutcomeAlreadyRefunded, outcome)
	})

	t.Run("rejected contributions cannot be refunded", func(t *testing.T) {
		_, err := u.Refund(ctx, rejected.Contribution.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.InvalidArgument))
	})
}

func TestReleaseVested(t *testing.T) {
	ctx := context.Background()
	dg := newMemGateway()
	u := newTestUsecase(dg, nil)

	schedule, err := u.CreateVestingSchedule(ctx, entity.NewVestingScheduleParams{
		Beneficiary:     "wallet-w",
		TotalAmount:     uint128.From64(1000),
		StartsAt:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CliffDuration:   30 * 24 * time.Hour,
		VestingDuration: 365 * 24 * time.Hour,
		Revocable:       true,
	})
	require.NoError(t, err)
	day30 := schedule.StartsAt.Add(30 * 24 * time.Hour)

	t.Run("nothing claimable before the cliff", func(t *testing.T) {
		result, err := u.ReleaseVested(ctx, schedule.ID, schedule.StartsAt.Add(24*time.Hour))
		require.NoError(t, err)
		assert.True(t, result.Released.IsZero())
		assert.Zero(t, result.JobID)
	})

	t.Run("release at the cliff creates a payout job", func(t *testing.T) {
		result, err := u.ReleaseVested(ctx, schedule.ID, day30)
		require.NoError(t, err)
		assert.Equal(t, uint128.From64(82), result.Released)
		require.NotZero(t, result.JobID)

		status, err := u.JobStatus(ctx, result.JobID)
		require.NoError(t, err)
		assert.Equal(t, uint128.From64(82), status.Job.TotalAmount)
		require.Len(t, status.Batches, 1)
		assert.Equal(t, "wallet-w", status.Batches[0].Transfers[0].Recipient)
	})

	t.Run("repeat release at the same time is a no-op", func(t *testing.T) {
		result, err := u.ReleaseVested(ctx, schedule.ID, day30)
		require.NoError(t, err)
		assert.True(t, result.Released.IsZero())
		assert.Zero(t, result.JobID)
	})
}

func TestRevokeVesting(t *testing.T) {
	ctx := context.Background()
	dg := newMemGateway()
	u := newTestUsecase(dg, nil)
	startsAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("not revocable", func(t *testing.T) {
		schedule, err := u.CreateVestingSchedule(ctx, entity.NewVestingScheduleParams{
			Beneficiary:     "wallet-w",
			TotalAmount:     uint128.From64(1000),
			StartsAt:        startsAt,
			VestingDuration: 365 * 24 * time.Hour,
		})
		require.NoError(t, err)
		_, err = u.RevokeVesting(ctx, schedule.ID, startsAt.Add(time.Hour))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.Unsupported))
	})

	t.Run("revocation is terminal and keeps vested tokens claimable", func(t *testing.T) {
		schedule, err := u.CreateVestingSchedule(ctx, entity.NewVestingScheduleParams{
			Beneficiary:     "wallet-w",
			TotalAmount:     uint128.From64(1000),
			StartsAt:        startsAt,
			CliffDuration:   30 * 24 * time.Hour,
			VestingDuration: 365 * 24 * time.Hour,
			Revocable:       true,
		})
		require.NoError(t, err)
		day100 := startsAt.Add(100 * 24 * time.Hour)
		day200 := startsAt.Add(200 * 24 * time.Hour)

		result, err := u.RevokeVesting(ctx, schedule.ID, day100)
		require.NoError(t, err)
		assert.Equal(t, uint128.From64(727), result.Unvested)

		_, err = u.RevokeVesting(ctx, schedule.ID, day100)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.InvalidArgument))

		// vested portion stays claimable after revocation
		release, err := u.ReleaseVested(ctx, schedule.ID, day200)
		require.NoError(t, err)
		assert.Equal(t, uint128.From64(273), release.Released)
	})
}
