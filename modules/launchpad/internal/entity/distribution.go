package entity

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/samber/lo"
)

// Transfer is a single (recipient, amount) obligation.
type Transfer struct {
	Recipient string
	Amount    uint128.Uint128
}

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusDegraded   JobStatus = "degraded"
)

func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the job will make no further progress.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusDegraded:
		return true
	}
	return false
}

type BatchStatus string

const (
	BatchStatusPending   BatchStatus = "pending"
	BatchStatusCompleted BatchStatus = "completed"
	BatchStatusFailed    BatchStatus = "failed"
)

func (s BatchStatus) String() string {
	return string(s)
}

// DistributionJob disburses a fixed obligation list through the transfer
// executor in ordered batches. The obligation list is fixed at creation;
// only batch statuses and attempt counters change afterwards.
type DistributionJob struct {
	ID          int64
	TotalAmount uint128.Uint128
	BatchSize   int
	Status      JobStatus
	CreatedAt   time.Time
}

// DistributionBatch is one executor call's worth of transfers. Attempts and
// LastError form the append-only retry history that makes re-runs safe.
type DistributionBatch struct {
	JobID     int64
	Index     int
	Transfers []Transfer
	Amount    uint128.Uint128
	Status    BatchStatus
	Attempts  int
	LastError string
}

// IdempotencyKey returns the deterministic executor-side key for this
// batch. A retried call carries the same key so the executor can recognize
// it as the same attempt rather than a new transfer.
func (b DistributionBatch) IdempotencyKey() string {
	return fmt.Sprintf("job-%d-batch-%d", b.JobID, b.Index)
}

// PartitionObligations validates an obligation list and slices it into
// ordered batches of at most batchSize recipients. The returned batches
// carry no job id yet; the repository assigns it at persist time.
func PartitionObligations(obligations []Transfer, batchSize int) (uint128.Uint128, []DistributionBatch, error) {
	if len(obligations) == 0 {
		return uint128.Zero, nil, errors.Wrap(errs.InvalidArgument, "obligation list is empty")
	}
	if batchSize <= 0 {
		return uint128.Zero, nil, errors.Wrap(errs.InvalidArgument, "batch size must be positive")
	}

	total := uint128.Zero
	for _, o := range obligations {
		if o.Recipient == "" {
			return uint128.Zero, nil, errors.Wrap(errs.InvalidArgument, "obligation recipient is required")
		}
		sum, overflow := total.AddOverflow(o.Amount)
		if overflow {
			return uint128.Zero, nil, errors.WithStack(errs.OverflowUint128)
		}
		total = sum
	}
	if total.IsZero() {
		return uint128.Zero, nil, errors.Wrap(errs.InvalidArgument, "total obligation amount must be positive")
	}

	chunks := lo.Chunk(obligations, batchSize)
	batches := make([]DistributionBatch, 0, len(chunks))
	for i, chunk := range chunks {
		amount := uint128.Zero
		for _, o := range chunk {
			amount = amount.Add(o.Amount)
		}
		batches = append(batches, DistributionBatch{
			Index:     i,
			Transfers: chunk,
			Amount:    amount,
			Status:    BatchStatusPending,
		})
	}
	return total, batches, nil
}

// JobProgress is the progress contract reported to observers.
type JobProgress struct {
	CompletedBatches int
	TotalBatches     int
	FailedBatches    int
}

// ProgressOf derives job progress from its batches.
func ProgressOf(batches []DistributionBatch) JobProgress {
	progress := JobProgress{TotalBatches: len(batches)}
	for _, b := range batches {
		switch b.Status {
		case BatchStatusCompleted:
			progress.CompletedBatches++
		case BatchStatusFailed:
			progress.FailedBatches++
		}
	}
	return progress
}

// TerminalStatus derives the job's terminal status once no batch has work
// remaining. Returns false while any batch is still pending.
func TerminalStatus(batches []DistributionBatch) (JobStatus, bool) {
	progress := ProgressOf(batches)
	if progress.CompletedBatches+progress.FailedBatches < progress.TotalBatches {
		return "", false
	}
	switch {
	case progress.FailedBatches == 0:
		return JobStatusCompleted, true
	case progress.CompletedBatches == 0:
		return JobStatusFailed, true
	default:
		return JobStatusDegraded, true
	}
}
