package distributor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/datagateway"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJobGateway implements only the distribution methods the engine uses.
// The embedded nil interface panics on anything else.
type fakeJobGateway struct {
	datagateway.LaunchpadDataGateway

	mu      sync.Mutex
	jobs    map[int64]entity.DistributionJob
	batches map[int64][]entity.DistributionBatch
	nextID  int64
}

func newFakeJobGateway() *fakeJobGateway {
	return &fakeJobGateway{
		jobs:    make(map[int64]entity.DistributionJob),
		batches: make(map[int64][]entity.DistributionBatch),
	}
}

func (g *fakeJobGateway) CreateDistributionJob(ctx context.Context, job entity.DistributionJob, batches []entity.DistributionBatch) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	job.ID = g.nextID
	g.jobs[job.ID] = job
	stored := make([]entity.DistributionBatch, len(batches))
	copy(stored, batches)
	for i := range stored {
		stored[i].JobID = job.ID
	}
	g.batches[job.ID] = stored
	return job.ID, nil
}

func (g *fakeJobGateway) GetDistributionJob(ctx context.Context, jobID int64) (*entity.DistributionJob, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	job, ok := g.jobs[jobID]
	if !ok {
		return nil, errors.Errorf("job %d not found", jobID)
	}
	return &job, nil
}

func (g *fakeJobGateway) GetDistributionBatches(ctx context.Context, jobID int64) ([]entity.DistributionBatch, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	batches := make([]entity.DistributionBatch, len(g.batches[jobID]))
	copy(batches, g.batches[jobID])
	return batches, nil
}

func (g *fakeJobGateway) UpdateBatchStatus(ctx context.Context, arg datagateway.UpdateBatchStatusParams) error {
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
	return errors.Errorf("batch %d of job %d not found", arg.Index, arg.JobID)
}

func (g *fakeJobGateway) UpdateJobStatus(ctx context.Context, jobID int64, status entity.JobStatus) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	job, ok := g.jobs[jobID]
	if !ok {
		return errors.Errorf("job %d not found", jobID)
	}
	job.Status = status
	g.jobs[jobID] = job
	return nil
}

func (g *fakeJobGateway) GetRunnableJobs(ctx context.Context, limit int) ([]entity.DistributionJob, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	result := make([]entity.DistributionJob, 0)
	for id := int64(1); id <= g.nextID && len(result) < limit; id++ {
		job := g.jobs[id]
		if job.Status.IsTerminal() {
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

// scriptedExecutor fails according to a per-batch script and counts every
// call so tests can assert nobody is paid twice.
type scriptedExecutor struct {
	mu     sync.Mutex
	calls  map[string]int
	script func(batchID string, call int) error
}

func newScriptedExecutor(script func(batchID string, call int) error) *scriptedExecutor {
	return &scriptedExecutor{calls: make(map[string]int), script: script}
}

func (e *scriptedExecutor) Execute(ctx context.Context, batchID string, transfers []entity.Transfer) error {
	e.mu.Lock()
	e.calls[batchID]++
	call := e.calls[batchID]
	e.mu.Unlock()
	if e.script == nil {
		return nil
	}
	return e.script(batchID, call)
}

func (e *scriptedExecutor) callCount(batchID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[batchID]
}

func (e *scriptedExecutor) totalCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, n := range e.calls {
		total += n
	}
	return total
}

func seedJob(t *testing.T, dg *fakeJobGateway, recipients, batchSize int) int64 {
	t.Helper()
	obligations := make([]entity.Transfer, 0, recipients)
	for i := 0; i < recipients; i++ {
		obligations = append(obligations, entity.Transfer{
			Recipient: fmt.Sprintf("wallet-%d", i),
			Amount:    uint128.From64(1),
		})
	}
	total, batches, err := entity.PartitionObligations(obligations, batchSize)
	require.NoError(t, err)
	jobID, err := dg.CreateDistributionJob(context.Background(), entity.DistributionJob{
		TotalAmount: total,
		BatchSize:   batchSize,
		Status:      entity.JobStatusPending,
		CreatedAt:   time.Now().UTC(),
	}, batches)
	require.NoError(t, err)
	return jobID
}

func testEngine(dg *fakeJobGateway, executor TransferExecutor) *Engine {
	return NewEngine(dg, executor, Config{
		MaxRetries:  3,
		BackoffBase: time.Millisecond,
		BackoffCap:  2 * time.Millisecond,
		Parallelism: 4,
	})
}

func TestRunJobFlakyBatchRecovers(t *testing.T) {
	ctx := context.Background()
	dg := newFakeJobGateway()
	// batch 1 times out twice, succeeds on the third attempt
	executor := newScriptedExecutor(func(batchID string, call int) error {
		if batchID == "job-1-batch-1" && call <= 2 {
			return Retryable(errors.New("executor timeout"))
		}
		return nil
	})
	engine := testEngine(dg, executor)
	jobID := seedJob(t, dg, 250, 100)

	require.NoError(t, engine.RunJob(ctx, jobID))

	job, err := dg.GetDistributionJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, job.Status)

	batches, err := dg.GetDistributionBatches(ctx, jobID)
	require.NoError(t, err)
	progress := entity.ProgressOf(batches)
	assert.Equal(t, 3, progress.CompletedBatches)
	assert.Equal(t, 0, progress.FailedBatches)
	assert.Equal(t, 3, batches[1].Attempts)

	// each batch paid exactly once, retries reuse the same idempotency key
	assert.Equal(t, 1, executor.callCount("job-1-batch-0"))
	assert.Equal(t, 3, executor.callCount("job-1-batch-1"))
	assert.Equal(t, 1, executor.callCount("job-1-batch-2"))

	t.Run("re-run is a no-op", func(t *testing.T) {
		before := executor.totalCalls()
		require.NoError(t, engine.RunJob(ctx, jobID))
		assert.Equal(t, before, executor.totalCalls())
	})
}

func TestRunJobFatalBatchDegradesJob(t *testing.T) {
	ctx := context.Background()
	dg := newFakeJobGateway()
	executor := newScriptedExecutor(func(batchID string, call int) error {
		if batchID == "job-1-batch-1" {
			return Fatal(errors.New("recipient rejected"))
		}
		return nil
	})
	engine := testEngine(dg, executor)
	jobID := seedJob(t, dg, 250, 100)

	require.NoError(t, engine.RunJob(ctx, jobID))

	job, err := dg.GetDistributionJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusDegraded, job.Status)

	batches, err := dg.GetDistributionBatches(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusFailed, batches[1].Status)
	assert.Equal(t, "recipient rejected", batches[1].LastError)
	// fatal errors are not retried
	assert.Equal(t, 1, batches[1].Attempts)
}

func TestRunJobRetriesExhausted(t *testing.T) {
	ctx := context.Background()
	dg := newFakeJobGateway()
	executor := newScriptedExecutor(func(batchID string, call int) error {
		return Retryable(errors.New("executor timeout"))
	})
	engine := testEngine(dg, executor)
	jobID := seedJob(t, dg, 10, 100)

	require.NoError(t, engine.RunJob(ctx, jobID))

	job, err := dg.GetDistributionJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusFailed, job.Status)

	batches, err := dg.GetDistributionBatches(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusFailed, batches[0].Status)
	assert.Equal(t, 3, batches[0].Attempts)
}

func TestRunJobCancelledBeforeDispatch(t *testing.T) {
	dg := newFakeJobGateway()
	executor := newScriptedExecutor(nil)
	engine := testEngine(dg, executor)
	jobID := seedJob(t, dg, 250, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := engine.RunJob(ctx, jobID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	// batches stay pending for a later resume
	batches, err := dg.GetDistributionBatches(context.Background(), jobID)
	require.NoError(t, err)
	for _, batch := range batches {
		assert.Equal(t, entity.BatchStatusPending, batch.Status)
	}
}

func TestRunNextBatch(t *testing.T) {
	ctx := context.Background()
	dg := newFakeJobGateway()
	failFirst := true
	executor := newScriptedExecutor(func(batchID string, call int) error {
		if batchID == "job-1-batch-0" && call == 1 && failFirst {
			return Retryable(errors.New("executor timeout"))
		}
		return nil
	})
	engine := testEngine(dg, executor)
	jobID := seedJob(t, dg, 150, 100)

	t.Run("failed attempt leaves the batch pending", func(t *testing.T) {
		result, err := engine.RunNextBatch(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, 0, result.BatchIndex)
		assert.Equal(t, entity.BatchStatusPending, result.Status)
		assert.Equal(t, entity.JobStatusInProgress, result.JobStatus)
	})

	t.Run("next call retries the same batch", func(t *testing.T) {
		result, err := engine.RunNextBatch(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, 0, result.BatchIndex)
		assert.Equal(t, entity.BatchStatusCompleted, result.Status)
	})

	t.Run("then advances to the next pending batch", func(t *testing.T) {
		result, err := engine.RunNextBatch(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, 1, result.BatchIndex)
		assert.Equal(t, entity.BatchStatusCompleted, result.Status)
		assert.Equal(t, entity.JobStatusCompleted, result.JobStatus)
	})

	t.Run("no-op once every batch is terminal", func(t *testing.T) {
		before := executor.totalCalls()
		result, err := engine.RunNextBatch(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, -1, result.BatchIndex)
		assert.Equal(t, entity.JobStatusCompleted, result.JobStatus)
		assert.Equal(t, before, executor.totalCalls())
	})
}

func TestProcessor(t *testing.T) {
	ctx := context.Background()
	dg := newFakeJobGateway()
	executor := newScriptedExecutor(nil)
	engine := testEngine(dg, executor)
	jobID := seedJob(t, dg, 10, 100)

	cleanedUp := false
	processor := NewProcessor(dg, engine, func(ctx context.Context) error {
		cleanedUp = true
		return nil
	})

	jobIDs, err := processor.RunnableJobs(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []int64{jobID}, jobIDs)

	require.NoError(t, processor.RunJob(ctx, jobID))

	jobIDs, err = processor.RunnableJobs(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, jobIDs)

	require.NoError(t, processor.Shutdown(ctx))
	assert.True(t, cleanedUp)
}
