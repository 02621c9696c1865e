package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
)

type createDistributionJobRequest struct {
	BatchSize   int `json:"batchSize"`
	Obligations []struct {
		Recipient string `json:"recipient"`
		Amount    string `json:"amount"`
	} `json:"obligations"`
}

func (r createDistributionJobRequest) Validate() error {
	var errList []error
	if len(r.Obligations) == 0 {
		errList = append(errList, errors.New("'obligations' is required"))
	}
	if r.BatchSize < 0 {
		errList = append(errList, errors.New("'batchSize' must not be negative"))
	}
	for _, obligation := range r.Obligations {
		if obligation.Recipient == "" {
			errList = append(errList, errors.New("'recipient' is required for every obligation"))
			break
		}
		if _, err := uint128.FromString(obligation.Amount); err != nil {
			errList = append(errList, errors.Errorf("'amount' is not a valid amount for recipient %s", obligation.Recipient))
			break
		}
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type createDistributionJobResult struct {
	JobID int64 `json:"jobId"`
}

type createDistributionJobResponse = HttpResponse[createDistributionJobResult]

func (h *HttpHandler) CreateDistributionJob(ctx *fiber.Ctx) error {
	var req createDistributionJobRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	obligations := make([]entity.Transfer, 0, len(req.Obligations))
	for _, obligation := range req.Obligations {
		amount, _ := uint128.FromString(obligation.Amount)
		obligations = append(obligations, entity.Transfer{
			Recipient: obligation.Recipient,
			Amount:    amount,
		})
	}

	jobID, err := h.usecase.CreateDistributionJob(ctx.UserContext(), obligations, req.BatchSize, time.Now().UTC())
	if err != nil {
		if errors.Is(err, errs.InvalidArgument) {
			return errs.WithPublicMessage(err, "invalid obligation list")
		}
		return errors.Wrap(err, "error during CreateDistributionJob")
	}

	result := createDistributionJobResult{JobID: jobID}
	return errors.WithStack(ctx.JSON(createDistributionJobResponse{Result: &result}))
}

type jobIDRequest struct {
	JobID int64 `params:"jobId"`
}

func (r jobIDRequest) Validate() error {
	var errList []error
	if r.JobID <= 0 {
		errList = append(errList, errors.New("'jobId' must be a positive integer"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getJobStatusResponse = HttpResponse[jobStatusResult]

func (h *HttpHandler) GetJobStatus(ctx *fiber.Ctx) error {
	var req jobIDRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	status, err := h.usecase.JobStatus(ctx.UserContext(), req.JobID)
	if err != nil {
		return errors.Wrap(err, "error during JobStatus")
	}

	batches := make([]batchResult, 0, len(status.Batches))
	for _, batch := range status.Batches {
		batches = append(batches, batchResult{
			Index:     batch.Index,
			Amount:    batch.Amount,
			Status:    batch.Status.String(),
			Attempts:  batch.Attempts,
			LastError: batch.LastError,
		})
	}
	result := jobStatusResult{
		ID:               status.Job.ID,
		TotalAmount:      status.Job.TotalAmount,
		BatchSize:        status.Job.BatchSize,
		Status:           status.Job.Status.String(),
		CompletedBatches: status.Progress.CompletedBatches,
		TotalBatches:     status.Progress.TotalBatches,
		FailedBatches:    status.Progress.FailedBatches,
		Batches:          batches,
		CreatedAt:        status.Job.CreatedAt,
	}
	return errors.WithStack(ctx.JSON(getJobStatusResponse{Result: &result}))
}

type runNextBatchResult struct {
	JobID      int64  `json:"jobId"`
	BatchIndex int    `json:"batchIndex"`
	Status     string `json:"status,omitempty"`
	JobStatus  string `json:"jobStatus,omitempty"`
}

type runNextBatchResponse = HttpResponse[runNextBatchResult]

// RunNextBatch is the operator's single-step escape hatch: it makes exactly
// one executor attempt against the first pending batch.
func (h *HttpHandler) RunNextBatch(ctx *fiber.Ctx) error {
	var req jobIDRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	stepResult, err := h.engine.RunNextBatch(ctx.UserContext(), req.JobID)
	if err != nil {
		return errors.Wrap(err, "error during RunNextBatch")
	}

	result := runNextBatchResult{
		JobID:      req.JobID,
		BatchIndex: stepResult.BatchIndex,
		Status:     stepResult.Status.String(),
		JobStatus:  stepResult.JobStatus.String(),
	}
	return errors.WithStack(ctx.JSON(runNextBatchResponse{Result: &result}))
}
