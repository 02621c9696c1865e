package datagateway

import (
	"context"
	"time"

	"github.com/gaze-network/uint128"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
)

type LaunchpadDataGateway interface {
	BeginLaunchpadTx(ctx context.Context) (LaunchpadDataGatewayWithTx, error)

	// sales
	CreateSale(ctx context.Context, sale entity.Sale) (int64, error)
	GetSale(ctx context.Context, saleID int64) (*entity.Sale, error)
	// UpdateSaleState moves the sale from one state to another. Returns
	// false without error when the sale is no longer in the expected state.
	UpdateSaleState(ctx context.Context, arg UpdateSaleStateParams) (bool, error)
	// UpdateRaisedTotal is a compare-and-swap on the sale's raised total.
	// Returns false without error on a conflicting concurrent update.
	UpdateRaisedTotal(ctx context.Context, arg UpdateRaisedTotalParams) (bool, error)

	// contributions
	CreateContribution(ctx context.Context, contribution entity.Contribution) (int64, error)
	GetContribution(ctx context.Context, contributionID int64) (*entity.Contribution, error)
	GetContributionsBySale(ctx context.Context, saleID int64) ([]entity.Contribution, error)
	// GetWalletContributedTotal sums the wallet's accepted, non-refunded
	// contributions to the sale.
	GetWalletContributedTotal(ctx context.Context, saleID int64, wallet string) (uint128.Uint128, error)
	// MarkContributionRefunded flips an accepted contribution to refunded.
	// Returns false without error when the contribution is already refunded.
	MarkContributionRefunded(ctx context.Context, contributionID int64) (bool, error)

	// vesting
	CreateVestingSchedule(ctx context.Context, schedule entity.VestingSchedule) (int64, error)
	GetVestingSchedule(ctx context.Context, scheduleID int64) (*entity.VestingSchedule, error)
	// UpdateReleasedAmount is a compare-and-swap on the schedule's released
	// amount. Returns false without error on conflict.
	UpdateReleasedAmount(ctx context.Context, arg UpdateReleasedAmountParams) (bool, error)
	// MarkVestingRevoked marks the schedule revoked. Returns false without
	// error when the schedule was already revoked.
	MarkVestingRevoked(ctx context.Context, scheduleID int64, revokedAt time.Time) (bool, error)

	// distribution
	CreateDistributionJob(ctx context.Context, job entity.DistributionJob, batches []entity.DistributionBatch) (int64, error)
	GetDistributionJob(ctx context.Context, jobID int64) (*entity.DistributionJob, error)
	GetDistributionBatches(ctx context.Context, jobID int64) ([]entity.DistributionBatch, error)
	UpdateBatchStatus(ctx context.Context, arg UpdateBatchStatusParams) error
	UpdateJobStatus(ctx context.Context, jobID int64, status entity.JobStatus) error
	// GetRunnableJobs lists jobs that still have pending batches, oldest first.
	GetRunnableJobs(ctx context.Context, limit int) ([]entity.DistributionJob, error)

	// staking
	GetStakedBalance(ctx context.Context, wallet string) (uint128.Uint128, error)
	SetStakedBalance(ctx context.Context, wallet string, staked uint128.Uint128) error
}

type LaunchpadDataGatewayWithTx interface {
	LaunchpadDataGateway
	Tx
}

type UpdateSaleStateParams struct {
	SaleID    int64
	FromState entity.SaleState
	ToState   entity.SaleState
	UpdatedAt time.Time
}

type UpdateRaisedTotalParams struct {
	SaleID        int64
	ExpectedTotal uint128.Uint128
	NewTotal      uint128.Uint128
	UpdatedAt     time.Time
}

type UpdateReleasedAmountParams struct {
	ScheduleID       int64
	ExpectedReleased uint128.Uint128
	NewReleased      uint128.Uint128
}

type UpdateBatchStatusParams struct {
	JobID     int64
	Index     int
	Status    entity.BatchStatus
	Attempts  int
	LastError string
}
