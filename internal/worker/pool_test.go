package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// stubResult implements Result.
type stubResult struct {
	err error
}

func (r *stubResult) GetError() error {
	return r.err
}

// stubJob implements Job and counts executions.
type stubJob struct {
	duration time.Duration
	fail     bool
	executed *int32
}

func (j *stubJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &stubResult{err: ctx.Err()}
		}
	}
	if j.fail {
		return &stubResult{err: errors.New("job failed")}
	}
	return &stubResult{}
}

func TestNewPoolWorkerCount(t *testing.T) {
	tests := []struct {
		requested int
		expected  int
	}{
		{requested: 5, expected: 5},
		{requested: 1, expected: 1},
		{requested: 0, expected: 1},
		{requested: -3, expected: 1},
	}

	for _, tt := range tests {
		p := NewPool(context.Background(), tt.requested)
		if p.workers != tt.expected {
			t.Errorf("NewPool(%d): expected %d workers, got %d", tt.requested, tt.expected, p.workers)
		}
	}
}

func TestNewPoolNilContext(t *testing.T) {
	pool := NewPool(nil, 1)
	pool.Start()
	pool.Submit(&stubJob{})

	results := pool.Wait()
	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
}

func TestPoolRunsEverySubmittedJob(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	var executed int32
	const count = 10
	for i := 0; i < count; i++ {
		pool.Submit(&stubJob{executed: &executed})
	}

	results := pool.Wait()
	if len(results) != count {
		t.Errorf("Expected %d results, got %d", count, len(results))
	}
	if got := atomic.LoadInt32(&executed); got != count {
		t.Errorf("Expected %d executions, got %d", count, got)
	}
}

// Submitting far more jobs than the queue and result capacity must not
// block: workers hand results to the collector, so the submit loop always
// progresses even when nothing reads results until Wait.
func TestPoolLargeBatchDoesNotBlockSubmit(t *testing.T) {
	pool := NewPool(context.Background(), 1)
	pool.Start()

	const count = 40
	var executed int32

	done := make(chan []Result, 1)
	go func() {
		for i := 0; i < count; i++ {
			pool.Submit(&stubJob{executed: &executed})
		}
		done <- pool.Wait()
	}()

	select {
	case results := <-done:
		if len(results) != count {
			t.Errorf("Expected %d results, got %d", count, len(results))
		}
		if got := atomic.LoadInt32(&executed); got != count {
			t.Errorf("Expected %d executions, got %d", count, got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Submitting 40 jobs to a 1-worker pool blocked")
	}
}

func TestPoolHonorsCallerContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 2)
	pool.Start()

	// Jobs that run until cancelled.
	for i := 0; i < 4; i++ {
		pool.Submit(&stubJob{duration: 10 * time.Second})
	}
	cancel()

	done := make(chan []Result, 1)
	go func() {
		done <- pool.Wait()
	}()

	select {
	case results := <-done:
		for _, res := range results {
			if err := res.GetError(); err != nil && !errors.Is(err, context.Canceled) {
				t.Errorf("Expected context.Canceled from aborted job, got %v", err)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after context cancellation")
	}

	// Submission after cancellation must not queue or block.
	pool.Submit(&stubJob{})
}

// gaugeJob records how many jobs run at once.
type gaugeJob struct {
	current  *int32
	peak     *int32
	duration time.Duration
}

func (j *gaugeJob) Execute(ctx context.Context) Result {
	cur := atomic.AddInt32(j.current, 1)
	for {
		prev := atomic.LoadInt32(j.peak)
		if cur <= prev || atomic.CompareAndSwapInt32(j.peak, prev, cur) {
			break
		}
	}
	time.Sleep(j.duration)
	atomic.AddInt32(j.current, -1)
	return &stubResult{}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const workers = 4
	pool := NewPool(context.Background(), workers)
	pool.Start()

	var current, peak int32
	const totalJobs = 32
	for i := 0; i < totalJobs; i++ {
		pool.Submit(&gaugeJob{current: &current, peak: &peak, duration: 10 * time.Millisecond})
	}

	results := pool.Wait()
	if len(results) != totalJobs {
		t.Fatalf("Expected %d results, got %d", totalJobs, len(results))
	}
	if got := atomic.LoadInt32(&peak); got > workers {
		t.Errorf("Peak concurrency %d exceeded %d workers", got, workers)
	}
}

func TestPoolCollectsPerJobErrors(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	pool.Submit(&stubJob{fail: true})
	pool.Submit(&stubJob{})
	pool.Submit(&stubJob{fail: true})

	results := pool.Wait()
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	failed := 0
	for _, res := range results {
		if res.GetError() != nil {
			failed++
		}
	}
	if failed != 2 {
		t.Errorf("Expected 2 failed results, got %d", failed)
	}
}

func TestResultCollector(t *testing.T) {
	c := NewResultCollector()
	c.Add(&stubResult{})
	c.Add(&stubResult{err: errors.New("boom")})

	results := c.Results()
	if len(results) != 2 {
		t.Errorf("Expected 2 collected results, got %d", len(results))
	}
}

func TestPoolSubmitAfterShutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	done := make(chan struct{})
	go func() {
		pool.Submit(&stubJob{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPoolShutdownAbortsInFlightJobs(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	var started int32
	pool.Submit(&stubJob{duration: 10 * time.Second, executed: &started})
	for atomic.LoadInt32(&started) == 0 {
		time.Sleep(time.Millisecond)
	}

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown did not return while a job was in flight")
	}
}
