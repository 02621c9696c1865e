package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/datagateway"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
)

func (r *Repository) CreateDistributionJob(ctx context.Context, job entity.DistributionJob, batches []entity.DistributionBatch) (int64, error) {
	totalAmount, err := numericFromUint128(job.TotalAmount)
	if err != nil {
		return 0, errors.Wrap(err, "invalid total amount")
	}
	var jobID int64
	err = r.queries.QueryRow(ctx, `
		INSERT INTO launchpad_distribution_jobs (total_amount, batch_size, status, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		totalAmount, int32(job.BatchSize), job.Status.String(), job.CreatedAt,
	).Scan(&jobID)
	if err != nil {
		return 0, errors.Wrap(err, "Cannot insert distribution job")
	}

	for _, batch := range batches {
		batchAmount, err := numericFromUint128(batch.Amount)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid amount for batch %d", batch.Index)
		}
		transfers, err := transfersToJSON(batch.Transfers)
		if err != nil {
			return 0, errors.Wrapf(err, "cannot encode transfers for batch %d", batch.Index)
		}
		_, err = r.queries.Exec(ctx, `
			INSERT INTO launchpad_distribution_batches (job_id, batch_index, transfers, amount, status, attempts, last_error)
			VALUES ($1, $2, $3, $4, $5, 0, '')`,
			jobID, int32(batch.Index), transfers, batchAmount, batch.Status.String(),
		)
		if err != nil {
			return 0, errors.Wrapf(err, "Cannot insert batch %d", batch.Index)
		}
	}
	return jobID, nil
}

func (r *Repository) GetDistributionJob(ctx context.Context, jobID int64) (*entity.DistributionJob, error) {
	var model distributionJobModel
	err := r.queries.QueryRow(ctx, `
		SELECT id, total_amount, batch_size, status, created_at
		FROM launchpad_distribution_jobs
		WHERE id = $1`,
		jobID,
	).Scan(&model.ID, &model.TotalAmount, &model.BatchSize, &model.Status, &model.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "distribution job %d not found", jobID)
		}
		return nil, errors.Wrap(err, "Cannot get distribution job")
	}
	job, err := mapDistributionJobModelToType(model)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &job, nil
}

func (r *Repository) GetDistributionBatches(ctx context.Context, jobID int64) ([]entity.DistributionBatch, error) {
	rows, err := r.queries.Query(ctx, `
		SELECT job_id, batch_index, transfers, amount, status, attempts, last_error
		FROM launchpad_distribution_batches
		WHERE job_id = $1
		ORDER BY batch_index`,
		jobID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "Cannot get distribution batches")
	}
	defer rows.Close()

	var batches []entity.DistributionBatch
	for rows.Next() {
		var model distributionBatchModel
		if err := rows.Scan(&model.JobID, &model.Index, &model.Transfers, &model.Amount, &model.Status, &model.Attempts, &model.LastError); err != nil {
			return nil, errors.Wrap(err, "Cannot scan batch")
		}
		batch, err := mapDistributionBatchModelToType(model)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "Cannot iterate batches")
	}
	return batches, nil
}

func (r *Repository) UpdateBatchStatus(ctx context.Context, arg datagateway.UpdateBatchStatusParams) error {
	_, err := r.queries.Exec(ctx, `
		UPDATE launchpad_distribution_batches
		SET status = $3, attempts = $4, last_error = $5
		WHERE job_id = $1 AND batch_index = $2`,
		arg.JobID, int32(arg.Index), arg.Status.String(), int32(arg.Attempts), arg.LastError,
	)
	if err != nil {
		return errors.Wrap(err, "Cannot update batch status")
	}
	return nil
}

func (r *Repository) UpdateJobStatus(ctx context.Context, jobID int64, status entity.JobStatus) error {
	_, err := r.queries.Exec(ctx, `
		UPDATE launchpad_distribution_jobs
		SET status = $2
		WHERE id = $1`,
		jobID, status.String(),
	)
	if err != nil {
		return errors.Wrap(err, "Cannot update job status")
	}
	return nil
}

func (r *Repository) GetRunnableJobs(ctx context.Context, limit int) ([]entity.DistributionJob, error) {
	rows, err := r.queries.Query(ctx, `
		SELECT j.id, j.total_amount, j.batch_size, j.status, j.created_at
		FROM launchpad_distribution_jobs j
		WHERE j.status IN ($1, $2)
		  AND EXISTS (
			SELECT 1 FROM launchpad_distribution_batches b
			WHERE b.job_id = j.id AND b.status = $3
		  )
		ORDER BY j.id
		LIMIT $4`,
		entity.JobStatusPending.String(), entity.JobStatusInProgress.String(), entity.BatchStatusPending.String(), limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "Cannot get runnable jobs")
	}
	defer rows.Close()

	var jobs []entity.DistributionJob
	for rows.Next() {
		var model distributionJobModel
		if err := rows.Scan(&model.ID, &model.TotalAmount, &model.BatchSize, &model.Status, &model.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "Cannot scan job")
		}
		job, err := mapDistributionJobModelToType(model)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "Cannot iterate jobs")
	}
	return jobs, nil
}
