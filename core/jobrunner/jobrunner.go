package jobrunner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/pkg/logger"
	"github.com/orbit-network/launchpad-engine/pkg/logger/slogx"
	"golang.org/x/sync/errgroup"
)

const (
	// pollingInterval is the default polling interval for the runner polling worker
	pollingInterval = 15 * time.Second

	defaultJobLimit = 10

	defaultJobParallelism = 4
)

// Processor finds and executes runnable work each polling round.
type Processor interface {
	Name() string

	// RunnableJobs lists job ids with work remaining, oldest first.
	RunnableJobs(ctx context.Context, limit int) ([]int64, error)

	// RunJob drives one job. It must be safe to call again on the same
	// job after an interrupted run.
	RunJob(ctx context.Context, jobID int64) error

	Shutdown(ctx context.Context) error
}

// Runner polls the processor for runnable jobs and executes them with
// bounded parallelism. Distinct jobs never share state; job-internal
// parallelism belongs to the processor.
type Runner struct {
	Processor      Processor
	PollInterval   time.Duration
	JobLimit       int
	JobParallelism int

	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

func New(processor Processor, pollInterval time.Duration) *Runner {
	return &Runner{
		Processor:      processor,
		PollInterval:   utils.Default(pollInterval, pollingInterval),
		JobLimit:       defaultJobLimit,
		JobParallelism: defaultJobParallelism,

		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (r *Runner) Shutdown() error {
	return r.ShutdownWithContext(context.Background())
}

func (r *Runner) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return r.ShutdownWithContext(ctx)
}

func (r *Runner) ShutdownWithContext(ctx context.Context) (err error) {
	r.quitOnce.Do(func() {
		close(r.quit)
		select {
		case <-r.done:
		case <-time.After(180 * time.Second):
			err = errors.Wrap(errs.Timeout, "job runner shutdown timeout")
		case <-ctx.Done():
			err = errors.Wrap(ctx.Err(), "job runner shutdown context canceled")
		}
	})
	return
}

func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)

	ctx = logger.WithContext(ctx,
		slog.String("package", "jobrunner"),
		slog.String("processor", r.Processor.Name()),
	)

	ticker := time.NewTicker(r.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.quit:
			logger.InfoContext(ctx, "Got quit signal, stopping job runner")
			if err := r.Processor.Shutdown(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown processor", slogx.Error(err))
				return errors.Wrap(err, "processor shutdown failed")
			}
			return nil
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.process(ctx); err != nil {
				logger.ErrorContext(ctx, "Job runner failed while processing", slogx.Error(err))
				return errors.Wrap(err, "process failed")
			}
			logger.DebugContext(ctx, "Waiting for next polling interval")
		}
	}
}

func (r *Runner) process(ctx context.Context) error {
	jobIDs, err := r.Processor.RunnableJobs(ctx, r.JobLimit)
	if err != nil {
		return errors.Wrap(err, "failed to list runnable jobs")
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(utils.Default(r.JobParallelism, defaultJobParallelism))
	for _, jobID := range jobIDs {
		select {
		case <-r.quit:
			return group.Wait()
		case <-ctx.Done():
			return group.Wait()
		default:
		}

		jobID := jobID
		group.Go(func() error {
			startAt := time.Now()
			if err := r.Processor.RunJob(ctx, jobID); err != nil {
				// Canceled runs resume on a later round, everything else is
				// fatal for the runner.
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return errors.Wrapf(err, "failed to run job %d", jobID)
			}
			logger.InfoContext(ctx, "Job run finished",
				slogx.Int64("jobId", jobID),
				slogx.Duration("duration", time.Since(startAt)),
			)
			return nil
		})
	}
	return group.Wait()
}
