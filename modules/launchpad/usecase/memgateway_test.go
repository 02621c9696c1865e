package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/datagateway"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
)

// memGateway is an in-memory LaunchpadDataGateway with real
// compare-and-swap semantics, used to exercise the usecases without a
// database. Transactions are not isolated: Begin returns the same store
// and Commit/Rollback are no-ops.
type memGateway struct {
	mu                sync.Mutex
	sales             map[int64]entity.Sale
	contributions     map[int64]entity.Contribution
	contributionOrder []int64
	schedules         map[int64]entity.VestingSchedule
	jobs              map[int64]entity.DistributionJob
	batches           map[int64][]entity.DistributionBatch
	stakes            map[string]uint128.Uint128
	nextID            int64
}

var _ datagateway.LaunchpadDataGateway = (*memGateway)(nil)

func newMemGateway() *memGateway {
	return &memGateway{
		sales:         make(map[int64]entity.Sale),
		contributions: make(map[int64]entity.Contribution),
		schedules:     make(map[int64]entity.VestingSchedule),
		jobs:          make(map[int64]entity.DistributionJob),
		batches:       make(map[int64][]entity.DistributionBatch),
		stakes:        make(map[string]uint128.Uint128),
	}
}

type memGatewayTx struct {
	*memGateway
}

func (g *memGateway) BeginLaunchpadTx(ctx context.Context) (datagateway.LaunchpadDataGatewayWithTx, error) {
	return &memGatewayTx{g}, nil
}

func (t *memGatewayTx) Commit(ctx context.Context) error   { return nil }
func (t *memGatewayTx) Rollback(ctx context.Context) error { return nil }

func (g *memGateway) allocID() int64 {
	g.nextID++
	return g.nextID
}

func (g *memGateway) CreateSale(ctx context.Context, sale entity.Sale) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sale.ID = g.allocID()
	g.sales[sale.ID] = sale
	return sale.ID, nil
}

func (g *memGateway) GetSale(ctx context.Context, saleID int64) (*entity.Sale, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sale, ok := g.sales[saleID]
	if !ok {
		return nil, errors.Wrapf(errs.NotFound, "sale %d", saleID)
	}
	return &sale, nil
}

func (g *memGateway) UpdateSaleState(ctx context.Context, arg datagateway.UpdateSaleStateParams) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sale, ok := g.sales[arg.SaleID]
	if !ok || sale.State != arg.FromState {
		return false, nil
	}
	sale.State = arg.ToState
	sale.UpdatedAt = arg.UpdatedAt
	g.sales[arg.SaleID] = sale
	return true, nil
}

func (g *memGateway) UpdateRaisedTotal(ctx context.Context, arg datagateway.UpdateRaisedTotalParams) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sale, ok := g.sales[arg.SaleID]
	if !ok || !sale.RaisedTotal.Equals(arg.ExpectedTotal) {
		return false, nil
	}
	sale.RaisedTotal = arg.NewTotal
	sale.UpdatedAt = arg.UpdatedAt
	g.sales[arg.SaleID] = sale
	return true, nil
}

func (g *memGateway) CreateContribution(ctx context.Context, contribution entity.Contribution) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	contribution.ID = g.allocID()
	g.contributions[contribution.ID] = contribution
	g.contributionOrder = append(g.contributionOrder, contribution.ID)
	return contribution.ID, nil
}

func (g *memGateway) GetContribution(ctx context.Context, contributionID int64) (*entity.Contribution, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	contribution, ok := g.contributions[contributionID]
	if !ok {
		return nil, errors.Wrapf(errs.NotFound, "contribution %d", contributionID)
	}
	return &contribution, nil
}

func (g *memGateway) GetContributionsBySale(ctx context.Context, saleID int64) ([]entity.Contribution, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	result := make([]entity.Contribution, 0)
	for _, id := range g.contributionOrder {
		if g.contributions[id].SaleID == saleID {
			result = append(result, g.contributions[id])
		}
	}
	return result, nil
}

func (g *memGateway) GetWalletContributedTotal(ctx context.Context, saleID int64, wallet string) (uint128.Uint128, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := uint128.Zero
	for _, contribution := range g.contributions {
		if contribution.SaleID == saleID && contribution.Wallet == wallet && contribution.Status == entity.ContributionStatusAccepted {
			total = total.Add(contribution.Amount)
		}
	}
	return total, nil
}

func (g *memGateway) MarkContributionRefunded(ctx context.Context, contributionID int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	contribution, ok := g.contributions[contributionID]
	if !ok || contribution.Status != entity.ContributionStatusAccepted {
		return false, nil
	}
	contribution.Status = entity.ContributionStatusRefunded
	g.contributions[contributionID] = contribution
	return true, nil
}

func (g *memGateway) CreateVestingSchedule(ctx context.Context, schedule entity.VestingSchedule) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	schedule.ID = g.allocID()
	g.schedules[schedule.ID] = schedule
	return schedule.ID, nil
}

func (g *memGateway) GetVestingSchedule(ctx context.Context, scheduleID int64) (*entity.VestingSchedule, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	schedule, ok := g.schedules[scheduleID]
	if !ok {
		return nil, errors.Wrapf(errs.NotFound, "vesting schedule %d", scheduleID)
	}
	return &schedule, nil
}

func (g *memGateway) UpdateReleasedAmount(ctx context.Context, arg datagateway.UpdateReleasedAmountParams) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	schedule, ok := g.schedules[arg.ScheduleID]
	if !ok || !schedule.ReleasedAmount.Equals(arg.ExpectedReleased) {
		return false, nil
	}
	schedule.ReleasedAmount = arg.NewReleased
	g.schedules[arg.ScheduleID] = schedule
	return true, nil
}

func (g *memGateway) MarkVestingRevoked(ctx context.Context, scheduleID int64, revokedAt time.Time) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	schedule, ok := g.schedules[scheduleID]
	if !ok || schedule.Revoked {
		return false, nil
	}
	schedule.Revoked = true
	schedule.RevokedAt = revokedAt
	g.schedules[scheduleID] = schedule
	return true, nil
}

func (g *memGateway) CreateDistributionJob(ctx context.Context, job entity.DistributionJob, batches []entity.DistributionBatch) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	job.ID = g.allocID()
	g.jobs[job.ID] = job
	stored := make([]entity.DistributionBatch, len(batches))
	copy(stored, batches)
	for i := range stored {
		stored[i].JobID = job.ID
	}
	g.batches[job.ID] = stored
	return job.ID, nil
}

func (g *memGateway) GetDistributionJob(ctx context.Context, jobID int64) (*entity.DistributionJob, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	job, ok := g.jobs[jobID]
	if !ok {
		return nil, errors.Wrapf(errs.NotFound, "distribution job %d", jobID)
	}
	return &job, nil
}

func (g *memGateway) GetDistributionBatches(ctx context.Context, jobID int64) ([]entity.DistributionBatch, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	batches := make([]entity.DistributionBatch, len(g.batches[jobID]))
	copy(batches, g.batches[jobID])
	return batches, nil
}

func (g *memGateway) UpdateBatchStatus(ctx context.Context, arg datagateway.UpdateBatchStatusParams) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	batches := g.batches[arg.JobID]
	for i := range batches {
		if batches[i].Index == arg.Index {
			batches[i].Status = arg.Status
			batches[i].Attempts = arg.Attempts
			batches[i].LastError = arg.LastError
			return nil
		}
	}
	return errors.Wrapf(errs.NotFound, "batch %d of job %d", arg.Index, arg.JobID)
}

func (g *memGateway) UpdateJobStatus(ctx context.Context, jobID int64, status entity.JobStatus) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	job, ok := g.jobs[jobID]
	if !ok {
		return errors.Wrapf(errs.NotFound, "distribution job %d", jobID)
	}
	job.Status = status
	g.jobs[jobID] = job
	return nil
}

func (g *memGateway) GetRunnableJobs(ctx context.Context, limit int) ([]entity.DistributionJob, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	result := make([]entity.DistributionJob, 0)
	for id := int64(1); id <= g.nextID && len(result) < limit; id++ {
		job, ok := g.jobs[id]
		if !ok || job.Status.IsTerminal() {
			continue
		}
		for _, batch := range g.batches[id] {
			if batch.Status == entity.BatchStatusPending {
				result = append(result, job)
				break
			}
		}
	}
	return result, nil
}

func (g *memGateway) GetStakedBalance(ctx context.Context, wallet string) (uint128.Uint128, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stakes[wallet], nil
}

func (g *memGateway) SetStakedBalance(ctx context.Context, wallet string, staked uint128.Uint128) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stakes[wallet] = staked
	return nil
}
