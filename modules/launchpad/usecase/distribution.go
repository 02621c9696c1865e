package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/datagateway"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
	"github.com/orbit-network/launchpad-engine/pkg/logger"
	"github.com/orbit-network/launchpad-engine/pkg/logger/slogx"
)

// CreateDistributionJob partitions the obligation list into batches and
// persists the job. A batchSize of zero falls back to the configured default.
func (u *Usecase) CreateDistributionJob(ctx context.Context, obligations []entity.Transfer, batchSize int, now time.Time) (int64, error) {
	if batchSize == 0 {
		batchSize = u.batchSize
	}
	return u.createDistributionJob(ctx, u.launchpadDg, obligations, batchSize, now)
}

func (u *Usecase) createDistributionJob(ctx context.Context, dg datagateway.LaunchpadDataGateway, obligations []entity.Transfer, batchSize int, now time.Time) (int64, error) {
	if len(obligations) == 0 {
		return 0, errors.Wrap(errs.InvalidArgument, "obligation list is empty")
	}
	totalAmount, batches, err := entity.PartitionObligations(obligations, batchSize)
	if err != nil {
		return 0, errors.Wrap(err, "failed to partition obligations")
	}
	job := entity.DistributionJob{
		TotalAmount: totalAmount,
		BatchSize:   batchSize,
		Status:      entity.JobStatusPending,
		CreatedAt:   now,
	}
	jobID, err := dg.CreateDistributionJob(ctx, job, batches)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create distribution job")
	}
	logger.InfoContext(ctx, "distribution job created",
		slogx.Int64("jobId", jobID),
		slogx.Int("recipients", len(obligations)),
		slogx.Int("batches", len(batches)),
		slogx.Stringer("totalAmount", totalAmount),
	)
	return jobID, nil
}

type JobStatusResult struct {
	Job      entity.DistributionJob
	Batches  []entity.DistributionBatch
	Progress entity.JobProgress
}

func (u *Usecase) JobStatus(ctx context.Context, jobID int64) (*JobStatusResult, error) {
	job, err := u.launchpadDg.GetDistributionJob(ctx, jobID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get distribution job")
	}
	batches, err := u.launchpadDg.GetDistributionBatches(ctx, jobID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get distribution batches")
	}
	return &JobStatusResult{
		Job:      *job,
		Batches:  batches,
		Progress: entity.ProgressOf(batches),
	}, nil
}
