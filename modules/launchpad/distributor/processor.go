package distributor

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/datagateway"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
	"github.com/orbit-network/launchpad-engine/pkg/logger"
	"github.com/orbit-network/launchpad-engine/pkg/logger/slogx"
	"github.com/orbit-network/launchpad-engine/pkg/reportingclient"
)

// Processor adapts the engine to the jobrunner polling loop.
type Processor struct {
	launchpadDg  datagateway.LaunchpadDataGateway
	engine       *Engine
	reporting    *reportingclient.ReportingClient // optional, nil disables job reports
	cleanupFuncs []func(context.Context) error
}

func NewProcessor(launchpadDg datagateway.LaunchpadDataGateway, engine *Engine, cleanupFuncs ...func(context.Context) error) *Processor {
	return &Processor{
		launchpadDg:  launchpadDg,
		engine:       engine,
		cleanupFuncs: cleanupFuncs,
	}
}

func (p *Processor) WithReporting(reporting *reportingclient.ReportingClient) *Processor {
	p.reporting = reporting
	return p
}

func (p *Processor) Name() string {
	return "launchpad-distributor"
}

func (p *Processor) RunnableJobs(ctx context.Context, limit int) ([]int64, error) {
	jobs, err := p.launchpadDg.GetRunnableJobs(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get runnable jobs")
	}
	jobIDs := make([]int64, 0, len(jobs))
	for _, job := range jobs {
		jobIDs = append(jobIDs, job.ID)
	}
	return jobIDs, nil
}

func (p *Processor) RunJob(ctx context.Context, jobID int64) error {
	if err := p.engine.RunJob(ctx, jobID); err != nil {
		return errors.Wrap(err, "engine run failed")
	}
	p.reportIfTerminal(ctx, jobID)
	return nil
}

// reportIfTerminal submits a best-effort job report once the job will make
// no further progress.
func (p *Processor) reportIfTerminal(ctx context.Context, jobID int64) {
	if p.reporting == nil {
		return
	}
	job, err := p.launchpadDg.GetDistributionJob(ctx, jobID)
	if err != nil || !job.Status.IsTerminal() {
		return
	}
	batches, err := p.launchpadDg.GetDistributionBatches(ctx, jobID)
	if err != nil {
		return
	}
	progress := entity.ProgressOf(batches)
	if err := p.reporting.SubmitJobReport(ctx, reportingclient.SubmitJobReportPayload{
		Type:      "job_terminal",
		JobID:     jobID,
		Status:    string(job.Status),
		Completed: progress.CompletedBatches,
		Failed:    progress.FailedBatches,
		Total:     progress.TotalBatches,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to submit job report", slogx.Int64("jobId", jobID), slogx.Error(err))
	}
}

func (p *Processor) Shutdown(ctx context.Context) error {
	for _, cleanup := range p.cleanupFuncs {
		if err := cleanup(ctx); err != nil {
			return errors.Wrap(err, "cleanup failed")
		}
	}
	return nil
}
