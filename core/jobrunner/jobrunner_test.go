package jobrunner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProcessor struct {
	mu       sync.Mutex
	runnable [][]int64
	ran      []int64
	runErr   error
	shutdown bool
}

func (p *stubProcessor) Name() string { return "stub" }

func (p *stubProcessor) RunnableJobs(_ context.Context, _ int) ([]int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.runnable) == 0 {
		return nil, nil
	}
	jobs := p.runnable[0]
	p.runnable = p.runnable[1:]
	return jobs, nil
}

func (p *stubProcessor) RunJob(_ context.Context, jobID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ran = append(p.ran, jobID)
	return p.runErr
}

func (p *stubProcessor) Shutdown(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shutdown = true
	return nil
}

func (p *stubProcessor) ranJobs() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int64(nil), p.ran...)
}

func TestProcess(t *testing.T) {
	t.Run("runs every listed job", func(t *testing.T) {
		processor := &stubProcessor{runnable: [][]int64{{3, 1, 2}}}
		runner := New(processor, time.Minute)

		err := runner.process(context.Background())
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{1, 2, 3}, processor.ranJobs())
	})

	t.Run("empty round is a no-op", func(t *testing.T) {
		processor := &stubProcessor{}
		runner := New(processor, time.Minute)

		err := runner.process(context.Background())
		require.NoError(t, err)
		assert.Empty(t, processor.ranJobs())
	})

	t.Run("job error stops the round", func(t *testing.T) {
		processor := &stubProcessor{
			runnable: [][]int64{{7}},
			runErr:   errors.New("boom"),
		}
		runner := New(processor, time.Minute)

		err := runner.process(context.Background())
		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to run job 7")
	})

	t.Run("canceled job is not fatal", func(t *testing.T) {
		processor := &stubProcessor{
			runnable: [][]int64{{7}},
			runErr:   context.Canceled,
		}
		runner := New(processor, time.Minute)

		err := runner.process(context.Background())
		require.NoError(t, err)
	})
}

func TestRunShutdown(t *testing.T) {
	t.Run("shutdown drains and calls processor shutdown", func(t *testing.T) {
		processor := &stubProcessor{runnable: [][]int64{{1}, {2}}}
		runner := New(processor, 10*time.Millisecond)

		runErr := make(chan error, 1)
		go func() {
			runErr <- runner.Run(context.Background())
		}()

		require.Eventually(t, func() bool {
			return len(processor.ranJobs()) >= 2
		}, 2*time.Second, 5*time.Millisecond)

		require.NoError(t, runner.ShutdownWithTimeout(time.Second))
		require.NoError(t, <-runErr)
		assert.True(t, processor.shutdown)
	})

	t.Run("context cancel stops the runner without processor shutdown", func(t *testing.T) {
		processor := &stubProcessor{}
		runner := New(processor, 10*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		runErr := make(chan error, 1)
		go func() {
			runErr <- runner.Run(ctx)
		}()

		cancel()
		require.NoError(t, <-runErr)
		assert.False(t, processor.shutdown)
	})

	t.Run("shutdown is idempotent", func(t *testing.T) {
		processor := &stubProcessor{}
		runner := New(processor, 10*time.Millisecond)

		go func() { _ = runner.Run(context.Background()) }()

		require.NoError(t, runner.ShutdownWithTimeout(time.Second))
		require.NoError(t, runner.Shutdown())
	})
}
