package distributor

import (
	"context"
	"time"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/datagateway"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
	"github.com/orbit-network/launchpad-engine/pkg/logger"
	"github.com/orbit-network/launchpad-engine/pkg/logger/slogx"
	cstream "github.com/planxnx/concurrent-stream"
)

const (
	defaultMaxRetries  = 3
	defaultBackoffBase = 1 * time.Second
	defaultBackoffCap  = 30 * time.Second
	defaultParallelism = 8
)

type Config struct {
	MaxRetries  int
	BackoffBase time.Duration
	BackoffCap  time.Duration
	Parallelism int
}

// Engine drives distribution jobs to a terminal state through the transfer
// executor. Batch completion is durably recorded before the engine advances,
// so an interrupted run can be resumed and will skip finished batches.
// A job must not be run by two engines at once.
type Engine struct {
	launchpadDg datagateway.LaunchpadDataGateway
	executor    TransferExecutor
	maxRetries  int
	backoffBase time.Duration
	backoffCap  time.Duration
	parallelism int
}

func NewEngine(launchpadDg datagateway.LaunchpadDataGateway, executor TransferExecutor, config Config) *Engine {
	return &Engine{
		launchpadDg: launchpadDg,
		executor:    executor,
		maxRetries:  utils.Default(config.MaxRetries, defaultMaxRetries),
		backoffBase: utils.Default(config.BackoffBase, defaultBackoffBase),
		backoffCap:  utils.Default(config.BackoffCap, defaultBackoffCap),
		parallelism: utils.Default(config.Parallelism, defaultParallelism),
	}
}

type batchResult struct {
	index  int
	status entity.BatchStatus
	err    error
}

// RunJob executes all pending batches of the job with bounded parallelism
// and settles the job's terminal status. Already-completed batches are
// skipped. Cancellation takes effect between batches, never mid-batch.
func (e *Engine) RunJob(ctx context.Context, jobID int64) error {
	job, err := e.launchpadDg.GetDistributionJob(ctx, jobID)
	if err != nil {
		return errors.Wrap(err, "failed to get distribution job")
	}
	if job.Status.IsTerminal() {
		return nil
	}
	batches, err := e.launchpadDg.GetDistributionBatches(ctx, jobID)
	if err != nil {
		return errors.Wrap(err, "failed to get distribution batches")
	}

	pending := make([]entity.DistributionBatch, 0, len(batches))
	for _, batch := range batches {
		if batch.Status == entity.BatchStatusPending {
			pending = append(pending, batch)
		}
	}
	if len(pending) == 0 {
		return e.settleJob(ctx, jobID, batches)
	}

	if job.Status == entity.JobStatusPending {
		if err := e.launchpadDg.UpdateJobStatus(ctx, jobID, entity.JobStatusInProgress); err != nil {
			return errors.Wrap(err, "failed to mark job in progress")
		}
	}
	logger.InfoContext(ctx, "running distribution job",
		slogx.Int64("jobId", jobID),
		slogx.Int("pendingBatches", len(pending)),
		slogx.Int("totalBatches", len(batches)),
	)

	out := make(chan batchResult)
	stream := cstream.NewStream(ctx, e.parallelism, out)

	go func() {
		defer close(out)
		_ = stream.Wait()
	}()

	go func() {
		defer stream.Close()
		for _, batch := range pending {
			batch := batch
			select {
			case <-ctx.Done():
				return
			default:
			}
			stream.Go(func() batchResult {
				status, err := e.runBatch(ctx, batch)
				return batchResult{index: batch.Index, status: status, err: err}
			})
		}
	}()

	var runErr error
	for result := range out {
		if result.err != nil && runErr == nil {
			runErr = result.err
		}
	}
	if runErr != nil {
		return runErr
	}
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	batches, err = e.launchpadDg.GetDistributionBatches(ctx, jobID)
	if err != nil {
		return errors.Wrap(err, "failed to reload distribution batches")
	}
	return e.settleJob(ctx, jobID, batches)
}

// runBatch drives a single batch to Completed or Failed, persisting every
// attempt. Returns the final status. A context error aborts between
// attempts and leaves the batch pending for a later resume.
func (e *Engine) runBatch(ctx context.Context, batch entity.DistributionBatch) (entity.BatchStatus, error) {
	attempts := batch.Attempts
	for attempts < e.maxRetries {
		if err := ctx.Err(); err != nil {
			return batch.Status, errors.WithStack(err)
		}
		attempts++
		execErr := e.executor.Execute(ctx, batch.IdempotencyKey(), batch.Transfers)
		if execErr == nil {
			if err := e.updateBatch(ctx, batch, entity.BatchStatusCompleted, attempts, ""); err != nil {
				return batch.Status, err
			}
			logger.InfoContext(ctx, "distribution batch completed",
				slogx.Int64("jobId", batch.JobID),
				slogx.Int("batchIndex", batch.Index),
				slogx.Int("attempts", attempts),
			)
			return entity.BatchStatusCompleted, nil
		}

		fatal := IsFatal(execErr)
		exhausted := attempts >= e.maxRetries
		status := entity.BatchStatusPending
		if fatal || exhausted {
			status = entity.BatchStatusFailed
		}
		if err := e.updateBatch(ctx, batch, status, attempts, execErr.Error()); err != nil {
			return batch.Status, err
		}
		if status == entity.BatchStatusFailed {
			logger.ErrorContext(ctx, "distribution batch failed",
				slogx.Error(execErr),
				slogx.Int64("jobId", batch.JobID),
				slogx.Int("batchIndex", batch.Index),
				slogx.Int("attempts", attempts),
				slogx.Bool("fatal", fatal),
			)
			return entity.BatchStatusFailed, nil
		}

		delay := e.backoff(attempts)
		logger.WarnContext(ctx, "distribution batch attempt failed, backing off",
			slogx.Error(execErr),
			slogx.Int64("jobId", batch.JobID),
			slogx.Int("batchIndex", batch.Index),
			slogx.Int("attempts", attempts),
			slogx.Duration("backoff", delay),
		)
		select {
		case <-ctx.Done():
			return entity.BatchStatusPending, errors.WithStack(ctx.Err())
		case <-time.After(delay):
		}
	}
	return entity.BatchStatusFailed, nil
}

// RunNextBatchResult reports what a single engine step did.
type RunNextBatchResult struct {
	// BatchIndex is -1 when no batch was runnable.
	BatchIndex int
	Status     entity.BatchStatus
	JobStatus  entity.JobStatus
}

// RunNextBatch makes one executor attempt against the first pending batch.
// Completed batches are never re-executed. When no pending batch remains
// the job's terminal status is settled and reported.
func (e *Engine) RunNextBatch(ctx context.Context, jobID int64) (*RunNextBatchResult, error) {
	job, err := e.launchpadDg.GetDistributionJob(ctx, jobID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get distribution job")
	}
	batches, err := e.launchpadDg.GetDistributionBatches(ctx, jobID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get distribution batches")
	}

	var next *entity.DistributionBatch
	for i := range batches {
		if batches[i].Status == entity.BatchStatusPending {
			next = &batches[i]
			break
		}
	}
	if next == nil {
		if err := e.settleJob(ctx, jobID, batches); err != nil {
			return nil, err
		}
		status, _ := entity.TerminalStatus(batches)
		return &RunNextBatchResult{BatchIndex: -1, JobStatus: status}, nil
	}

	if job.Status == entity.JobStatusPending {
		if err := e.launchpadDg.UpdateJobStatus(ctx, jobID, entity.JobStatusInProgress); err != nil {
			return nil, errors.Wrap(err, "failed to mark job in progress")
		}
	}

	attempts := next.Attempts + 1
	status := entity.BatchStatusCompleted
	lastError := ""
	execErr := e.executor.Execute(ctx, next.IdempotencyKey(), next.Transfers)
	if execErr != nil {
		lastError = execErr.Error()
		if IsFatal(execErr) || attempts >= e.maxRetries {
			status = entity.BatchStatusFailed
		} else {
			status = entity.BatchStatusPending
		}
	}
	if err := e.updateBatch(ctx, *next, status, attempts, lastError); err != nil {
		return nil, err
	}
	next.Status = status
	next.Attempts = attempts

	jobStatus := entity.JobStatusInProgress
	if terminal, ok := entity.TerminalStatus(batches); ok {
		if err := e.launchpadDg.UpdateJobStatus(ctx, jobID, terminal); err != nil {
			return nil, errors.Wrap(err, "failed to settle job status")
		}
		jobStatus = terminal
	}
	return &RunNextBatchResult{BatchIndex: next.Index, Status: status, JobStatus: jobStatus}, nil
}

func (e *Engine) updateBatch(ctx context.Context, batch entity.DistributionBatch, status entity.BatchStatus, attempts int, lastError string) error {
	err := e.launchpadDg.UpdateBatchStatus(ctx, datagateway.UpdateBatchStatusParams{
		JobID:     batch.JobID,
		Index:     batch.Index,
		Status:    status,
		Attempts:  attempts,
		LastError: lastError,
	})
	if err != nil {
		return errors.Wrap(err, "failed to update batch status")
	}
	return nil
}

// settleJob writes the job's terminal status once every batch is terminal.
func (e *Engine) settleJob(ctx context.Context, jobID int64, batches []entity.DistributionBatch) error {
	status, ok := entity.TerminalStatus(batches)
	if !ok {
		return nil
	}
	if err := e.launchpadDg.UpdateJobStatus(ctx, jobID, status); err != nil {
		return errors.Wrap(err, "failed to settle job status")
	}
	progress := entity.ProgressOf(batches)
	logger.InfoContext(ctx, "distribution job settled",
		slogx.Int64("jobId", jobID),
		slogx.Stringer("status", status),
		slogx.Int("completedBatches", progress.CompletedBatches),
		slogx.Int("failedBatches", progress.FailedBatches),
		slogx.Int("totalBatches", progress.TotalBatches),
	)
	return nil
}

func (e *Engine) backoff(attempts int) time.Duration {
	delay := e.backoffBase << (attempts - 1)
	if delay > e.backoffCap || delay <= 0 {
		return e.backoffCap
	}
	return delay
}
